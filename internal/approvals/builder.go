package approvals

import (
	"fmt"

	"github.com/alanyoungcy/polyapprove/internal/domain"
	"github.com/alanyoungcy/polyapprove/internal/platform/polygon"
)

// BuildApprovalTxs returns the Safe transactions granting every known spender
// unlimited USDC allowance followed by CTF operator approval. The output
// depends only on contracts.
func BuildApprovalTxs(contracts Contracts) []domain.SafeTransaction {
	usdc := contracts.USDCSpenders()
	outcome := contracts.OutcomeTokenSpenders()

	txs := make([]domain.SafeTransaction, 0, len(usdc)+len(outcome))
	for _, sp := range usdc {
		txs = append(txs, usdcApprovalTx(contracts, sp))
	}
	for _, sp := range outcome {
		txs = append(txs, outcomeApprovalTx(contracts, sp))
	}
	return txs
}

// PendingApprovalTxs returns only the transactions for spenders that status
// reports as not approved, in BuildApprovalTxs order.
func PendingApprovalTxs(contracts Contracts, status domain.ApprovalStatus) []domain.SafeTransaction {
	var txs []domain.SafeTransaction
	for _, sp := range contracts.USDCSpenders() {
		if !status.USDCApprovals[sp.Name] {
			txs = append(txs, usdcApprovalTx(contracts, sp))
		}
	}
	for _, sp := range contracts.OutcomeTokenSpenders() {
		if !status.OutcomeTokenApprovals[sp.Name] {
			txs = append(txs, outcomeApprovalTx(contracts, sp))
		}
	}
	return txs
}

func usdcApprovalTx(contracts Contracts, sp domain.Spender) domain.SafeTransaction {
	data, err := polygon.EncodeApprove(sp.Address, polygon.MaxUint256())
	if err != nil {
		// Static ABI with well-typed arguments.
		panic(fmt.Sprintf("approvals: %v", err))
	}
	return domain.SafeTransaction{
		To:        contracts.USDC,
		Operation: domain.OperationCall,
		Data:      data,
		Value:     "0",
	}
}

func outcomeApprovalTx(contracts Contracts, sp domain.Spender) domain.SafeTransaction {
	data, err := polygon.EncodeSetApprovalForAll(sp.Address, true)
	if err != nil {
		panic(fmt.Sprintf("approvals: %v", err))
	}
	return domain.SafeTransaction{
		To:        contracts.CTF,
		Operation: domain.OperationCall,
		Data:      data,
		Value:     "0",
	}
}
