package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createCampaignRequest struct {
	Admin   string    `json:"admin"`
	MinGoal int64     `json:"min_goal"`
	EndTime time.Time `json:"end_time"`
}

type campaignResponse struct {
	ID                   int64     `json:"id"`
	Admin                string    `json:"admin"`
	MinGoal              int64     `json:"min_goal"`
	EndTime              time.Time `json:"end_time"`
	CollectedFunds       int64     `json:"collected_funds"`
	NumberOfContributors int64     `json:"number_of_contributors"`
	FundsClaimed         bool      `json:"funds_claimed"`
	Phase                string    `json:"phase"`
}

// handleCreateCampaign registers a new campaign and returns its id.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	admin, err := parseAddress(req.Admin)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.svc.CreateCampaign(r.Context(), admin, req.MinGoal, req.EndTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleGetCampaign returns the campaign snapshot with its derived phase.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	status, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c := status.Campaign
	h.writeJSON(w, http.StatusOK, campaignResponse{
		ID:                   c.ID,
		Admin:                c.Admin.Hex(),
		MinGoal:              c.MinGoal,
		EndTime:              c.EndTime,
		CollectedFunds:       c.CollectedFunds,
		NumberOfContributors: c.NumberOfContributors,
		FundsClaimed:         c.FundsClaimed,
		Phase:                string(status.Phase),
	})
}

type eventResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Actor     string    `json:"actor"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// handleListEvents returns the campaign's audit log in append order.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	events, err := h.svc.ListEvents(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, eventResponse{
			ID:        e.ID.String(),
			Kind:      string(e.Kind),
			Actor:     e.Actor.Hex(),
			Amount:    e.Amount,
			CreatedAt: e.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type contributionResponse struct {
	Contributor string `json:"contributor"`
	Amount      int64  `json:"amount"`
	ReceiptID   string `json:"receipt_id,omitempty"`
}

// handleGetContribution returns the ledger entry for a contributor. An
// identity that never contributed yields 404; a withdrawn contribution is
// returned with amount 0.
func (h *Handler) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	contributor, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	contrib, err := h.svc.GetContribution(r.Context(), id, contributor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if contrib == nil {
		http.NotFound(w, r)
		return
	}
	resp := contributionResponse{
		Contributor: contrib.Contributor.Hex(),
		Amount:      contrib.Amount,
	}
	if contrib.ReceiptID != uuid.Nil {
		resp.ReceiptID = contrib.ReceiptID.String()
	}
	h.writeJSON(w, http.StatusOK, resp)
}
