// Package polygon provides read-only contract access to the Polygon chain and
// calldata encoding for the token contracts Polymarket trades against.
package polygon

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alanyoungcy/polyapprove/internal/domain"
)

// ContractCaller is the subset of the go-ethereum client used for read calls.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ClientConfig holds connection parameters for the RPC client.
type ClientConfig struct {
	RPCURL  string
	ChainID int64
}

// Client performs eth_call reads against contracts.
type Client struct {
	caller ContractCaller
	closer func()
}

// NewClient wraps an existing ContractCaller.
func NewClient(caller ContractCaller) *Client {
	return &Client{caller: caller}
}

// Dial connects to the RPC endpoint and verifies that it serves the
// configured chain.
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("polygon: dial: %w", err)
	}

	if cfg.ChainID > 0 {
		id, err := ec.ChainID(ctx)
		if err != nil {
			ec.Close()
			return nil, fmt.Errorf("polygon: chain id: %w", err)
		}
		if id.Int64() != cfg.ChainID {
			ec.Close()
			return nil, fmt.Errorf("polygon: %w: endpoint reports %s, want %d", domain.ErrChainMismatch, id, cfg.ChainID)
		}
	}

	return &Client{caller: ec, closer: ec.Close}, nil
}

// ReadContract packs method with args, executes an eth_call against the
// latest block and returns the unpacked outputs.
func (c *Client) ReadContract(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("polygon: pack %s: %w", method, err)
	}

	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("polygon: call %s on %s: %w", method, to.Hex(), err)
	}

	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("polygon: unpack %s: %w", method, err)
	}
	return values, nil
}

// Allowance returns the ERC20 allowance granted by owner to spender.
func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	values, err := c.ReadContract(ctx, token, ERC20ABI, MethodAllowance, owner, spender)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("polygon: allowance: expected 1 output, got %d", len(values))
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("polygon: allowance: unexpected output type %T", values[0])
	}
	return amount, nil
}

// IsApprovedForAll reports whether operator may move all of account's ERC1155
// tokens on the given contract.
func (c *Client) IsApprovedForAll(ctx context.Context, token, account, operator common.Address) (bool, error) {
	values, err := c.ReadContract(ctx, token, ERC1155ABI, MethodIsApprovedForAll, account, operator)
	if err != nil {
		return false, err
	}
	if len(values) != 1 {
		return false, fmt.Errorf("polygon: isApprovedForAll: expected 1 output, got %d", len(values))
	}
	approved, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("polygon: isApprovedForAll: unexpected output type %T", values[0])
	}
	return approved, nil
}

// Close releases the underlying RPC connection if Dial created it.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}
