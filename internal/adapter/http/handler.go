package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"stablefund/internal/core/domain"
	"stablefund/internal/core/port"
)

// Handler is the inbound HTTP adapter. It holds the escrow usecase and a
// structured logger, and registers one route per escrow operation on a
// chi.Router. The caller identity is taken from the request body; the
// service trusts its invoker the way the original execution environment
// trusts transaction senders.
type Handler struct {
	svc    port.EscrowUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.EscrowUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Post("/", h.handleCreateCampaign)
		r.Get("/{id}", h.handleGetCampaign)
		r.Get("/{id}/events", h.handleListEvents)
		r.Get("/{id}/contributions/{address}", h.handleGetContribution)
		r.Post("/{id}/contribute", h.handleContribute)
		r.Post("/{id}/withdraw", h.handleWithdraw)
		r.Post("/{id}/emergency-withdraw", h.handleEmergencyWithdraw)
		r.Post("/{id}/claim", h.handleClaim)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// campaignID parses the {id} path parameter. A malformed id is reported as
// not found: identifiers are opaque registry handles, not user input with a
// recoverable shape.
func campaignID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, domain.ErrZeroAddress
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, domain.ErrZeroAddress
	}
	return addr, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses so clients
// can branch the same way test code does on the sentinels.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrCampaignNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidGoal),
		errors.Is(err, domain.ErrPastEndTime),
		errors.Is(err, domain.ErrZeroAddress),
		errors.Is(err, domain.ErrAmountOverflow):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCampaignEnded),
		errors.Is(err, domain.ErrCampaignNotEnded),
		errors.Is(err, domain.ErrAlreadyContributed),
		errors.Is(err, domain.ErrNoContribution),
		errors.Is(err, domain.ErrGoalReached),
		errors.Is(err, domain.ErrGoalNotReached),
		errors.Is(err, domain.ErrFundsAlreadyClaimed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTransferFailed):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("escrow operation error", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
