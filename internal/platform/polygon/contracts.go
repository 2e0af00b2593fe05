package polygon

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Polymarket contract addresses on Polygon mainnet.
const (
	// USDCeAddress is the bridged USDC.e collateral token.
	USDCeAddress = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	// ConditionalTokensAddress is the CTF (ERC1155) outcome token contract.
	ConditionalTokensAddress = "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"

	CTFExchangeAddress        = "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"
	NegRiskCTFExchangeAddress = "0xC5d563A36AE78145C45a50134d48A1215220f80a"
	NegRiskAdapterAddress     = "0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"

	// PolygonChainID is the chain id of Polygon PoS mainnet.
	PolygonChainID = 137
	// DefaultRPCURL is a public Polygon RPC endpoint.
	DefaultRPCURL = "https://polygon-rpc.com"
)

const erc20ABIJSON = `[
	{
		"constant": true,
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_spender", "type": "address"},
			{"name": "_value", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"payable": false,
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

const erc1155ABIJSON = `[
	{
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "operator", "type": "address"}
		],
		"name": "isApprovedForAll",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_operator", "type": "address"},
			{"name": "_approved", "type": "bool"}
		],
		"name": "setApprovalForAll",
		"outputs": [],
		"payable": false,
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// ABI method names.
const (
	MethodAllowance         = "allowance"
	MethodApprove           = "approve"
	MethodIsApprovedForAll  = "isApprovedForAll"
	MethodSetApprovalForAll = "setApprovalForAll"
)

var (
	// ERC20ABI holds the allowance and approve fragments of the ERC20 standard.
	ERC20ABI = mustParseABI(erc20ABIJSON)
	// ERC1155ABI holds the operator approval fragments of the ERC1155 standard.
	ERC1155ABI = mustParseABI(erc1155ABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("polygon: parse static abi: %v", err))
	}
	return parsed
}

// MaxUint256 returns a fresh copy of 2^256 - 1.
func MaxUint256() *big.Int {
	return new(big.Int).Set(math.MaxBig256)
}

// EncodeApprove returns calldata for ERC20 approve(spender, amount).
func EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	data, err := ERC20ABI.Pack(MethodApprove, spender, amount)
	if err != nil {
		return nil, fmt.Errorf("polygon: encode approve: %w", err)
	}
	return data, nil
}

// EncodeSetApprovalForAll returns calldata for ERC1155
// setApprovalForAll(operator, approved).
func EncodeSetApprovalForAll(operator common.Address, approved bool) ([]byte, error) {
	data, err := ERC1155ABI.Pack(MethodSetApprovalForAll, operator, approved)
	if err != nil {
		return nil, fmt.Errorf("polygon: encode setApprovalForAll: %w", err)
	}
	return data, nil
}
