package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polyapprove/internal/approvals"
	"github.com/alanyoungcy/polyapprove/internal/domain"
)

// ApprovalChecker is the subset of approvals.Checker the handler needs.
type ApprovalChecker interface {
	CheckAll(ctx context.Context, safe common.Address) domain.ApprovalStatus
	Contracts() approvals.Contracts
}

// ApprovalHandler serves approval status and approval transaction batches.
type ApprovalHandler struct {
	checker ApprovalChecker
	logger  *slog.Logger
}

// NewApprovalHandler creates an ApprovalHandler.
func NewApprovalHandler(checker ApprovalChecker, logger *slog.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		checker: checker,
		logger:  logHandler(logger, "approvals"),
	}
}

type pendingResponse struct {
	Status       domain.ApprovalStatus    `json:"status"`
	Transactions []domain.SafeTransaction `json:"transactions"`
}

// GetStatus reports which spenders the Safe has approved.
// GET /api/approvals/{safe}
func (h *ApprovalHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	safe, ok := h.safeParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.checker.CheckAll(r.Context(), safe))
}

// GetPending reports the approval status and the transactions that would
// grant the missing approvals.
// GET /api/approvals/{safe}/pending
func (h *ApprovalHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	safe, ok := h.safeParam(w, r)
	if !ok {
		return
	}
	status := h.checker.CheckAll(r.Context(), safe)
	txs := approvals.PendingApprovalTxs(h.checker.Contracts(), status)
	if txs == nil {
		txs = []domain.SafeTransaction{}
	}
	writeJSON(w, http.StatusOK, pendingResponse{Status: status, Transactions: txs})
}

// ListTransactions returns the full approval batch.
// GET /api/approvals/txs
func (h *ApprovalHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, approvals.BuildApprovalTxs(h.checker.Contracts()))
}

func (h *ApprovalHandler) safeParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	safe, err := domain.ParseAddress(r.PathValue("safe"))
	if err != nil {
		h.logger.DebugContext(r.Context(), "rejected safe address", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
		return common.Address{}, false
	}
	return safe, true
}
