package domain

import (
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Spender is a contract that must be allowed to move the Safe's collateral or
// outcome tokens before the Safe can trade.
type Spender struct {
	Address common.Address
	Name    string
}

// ApprovalStatus is the result of checking every known spender for a wallet.
// Each map holds exactly one entry per configured spender name.
type ApprovalStatus struct {
	AllApproved           bool            `json:"allApproved"`
	USDCApprovals         map[string]bool `json:"usdcApprovals"`
	OutcomeTokenApprovals map[string]bool `json:"outcomeTokenApprovals"`
}

// NewApprovalStatus builds an ApprovalStatus from the two per-spender maps and
// derives AllApproved from them.
func NewApprovalStatus(usdc, outcome map[string]bool) ApprovalStatus {
	all := true
	for _, ok := range usdc {
		all = all && ok
	}
	for _, ok := range outcome {
		all = all && ok
	}
	return ApprovalStatus{
		AllApproved:           all,
		USDCApprovals:         usdc,
		OutcomeTokenApprovals: outcome,
	}
}

// Missing returns the names of spenders that are not approved, prefixed with
// the asset class ("usdc:" or "outcome:"), sorted for stable output.
func (s ApprovalStatus) Missing() []string {
	var out []string
	for name, ok := range s.USDCApprovals {
		if !ok {
			out = append(out, "usdc:"+name)
		}
	}
	for name, ok := range s.OutcomeTokenApprovals {
		if !ok {
			out = append(out, "outcome:"+name)
		}
	}
	sort.Strings(out)
	return out
}

// OperationType distinguishes a plain call from a delegate call inside a Safe
// transaction.
type OperationType uint8

const (
	OperationCall         OperationType = 0
	OperationDelegateCall OperationType = 1
)

// String returns the lowercase operation name.
func (o OperationType) String() string {
	switch o {
	case OperationCall:
		return "call"
	case OperationDelegateCall:
		return "delegatecall"
	default:
		return "unknown"
	}
}

// SafeTransaction is an unsigned transaction to be executed by a Safe wallet,
// typically submitted as part of a relayer batch.
type SafeTransaction struct {
	To        common.Address
	Operation OperationType
	Data      []byte
	Value     string
}

type safeTransactionJSON struct {
	To        common.Address `json:"to"`
	Operation OperationType  `json:"operation"`
	Data      hexutil.Bytes  `json:"data"`
	Value     string         `json:"value"`
}

// MarshalJSON encodes the transaction in the relayer wire form with
// hex-encoded calldata.
func (t SafeTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(safeTransactionJSON{
		To:        t.To,
		Operation: t.Operation,
		Data:      t.Data,
		Value:     t.Value,
	})
}

// UnmarshalJSON decodes the relayer wire form.
func (t *SafeTransaction) UnmarshalJSON(b []byte) error {
	var v safeTransactionJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	t.To = v.To
	t.Operation = v.Operation
	t.Data = v.Data
	t.Value = v.Value
	return nil
}
