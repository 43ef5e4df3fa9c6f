package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type contributeRequest struct {
	Contributor string `json:"contributor"`
	Amount      int64  `json:"amount"`
}

// handleContribute escrows funds for the contributor.
func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	contributor, err := parseAddress(req.Contributor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	receiptID, err := h.svc.Contribute(r.Context(), id, contributor, req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("contribution escrowed",
		slog.Int64("campaign_id", id),
		slog.String("contributor", contributor.Hex()),
		slog.Int64("amount", req.Amount))
	resp := map[string]any{"amount": req.Amount}
	if receiptID != uuid.Nil {
		resp["receipt_id"] = receiptID.String()
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (h *Handler) callerFromBody(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return common.Address{}, false
	}
	parsed, err := parseAddress(req.Caller)
	if err != nil {
		h.writeError(w, r, err)
		return common.Address{}, false
	}
	return parsed, true
}

// handleWithdraw releases a live contribution before the deadline.
func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	contributor, ok := h.callerFromBody(w, r)
	if !ok {
		return
	}
	amount, err := h.svc.Withdraw(r.Context(), id, contributor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("contribution withdrawn",
		slog.Int64("campaign_id", id),
		slog.Int64("amount", amount))
	h.writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}

// handleEmergencyWithdraw refunds a contribution after a failed campaign.
func (h *Handler) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	contributor, ok := h.callerFromBody(w, r)
	if !ok {
		return
	}
	amount, err := h.svc.EmergencyWithdraw(r.Context(), id, contributor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("contribution refunded",
		slog.Int64("campaign_id", id),
		slog.Int64("amount", amount))
	h.writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}

// handleClaim settles a succeeded campaign to its admin.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	caller, ok := h.callerFromBody(w, r)
	if !ok {
		return
	}
	paid, err := h.svc.ClaimFunds(r.Context(), id, caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("campaign funds claimed",
		slog.Int64("campaign_id", id),
		slog.Int64("amount", paid))
	h.writeJSON(w, http.StatusOK, map[string]int64{"amount": paid})
}
