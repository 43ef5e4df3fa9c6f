package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"stablefund/internal/adapter/bank"
	"stablefund/internal/adapter/memory"
	"stablefund/internal/adapter/usecase"
)

var (
	asset      = common.HexToAddress("0x0000000000000000000000000000000000000aaa")
	escrowAcct = common.HexToAddress("0x000000000000000000000000000000000000e5c0")
	admin      = "0xA11CE00000000000000000000000000000000001"
	alice      = "0x1111111111111111111111111111111111111111"
)

func newServer(t *testing.T) (*httptest.Server, *bank.Bank) {
	t.Helper()
	b := bank.New(asset, escrowAcct)
	engine := usecase.NewEscrowUseCase(memory.NewEscrowRepository(), usecase.NewRawCustody(b, escrowAcct))
	h := NewHandler(engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, b
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	srv, b := newServer(t)
	b.Fund(common.HexToAddress(alice), 1000)

	resp := postJSON(t, srv.URL+"/api/v1/campaigns", map[string]any{
		"admin":    admin,
		"min_goal": 1000,
		"end_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, resp, &created)

	base := fmt.Sprintf("%s/api/v1/campaigns/%d", srv.URL, created.ID)

	resp = postJSON(t, base+"/contribute", map[string]any{"contributor": alice, "amount": 600})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// A live contribution blocks a second one.
	resp = postJSON(t, base+"/contribute", map[string]any{"contributor": alice, "amount": 1})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	getResp, err := http.Get(base)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var campaign struct {
		CollectedFunds       int64  `json:"collected_funds"`
		NumberOfContributors int64  `json:"number_of_contributors"`
		Phase                string `json:"phase"`
	}
	decode(t, getResp, &campaign)
	require.Equal(t, int64(600), campaign.CollectedFunds)
	require.Equal(t, int64(1), campaign.NumberOfContributors)
	require.Equal(t, "active", campaign.Phase)

	resp = postJSON(t, base+"/withdraw", map[string]any{"caller": alice})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var withdrawn struct {
		Amount int64 `json:"amount"`
	}
	decode(t, resp, &withdrawn)
	require.Equal(t, int64(600), withdrawn.Amount)
}

func TestErrorMapping(t *testing.T) {
	srv, _ := newServer(t)

	// Unknown campaign.
	resp := postJSON(t, srv.URL+"/api/v1/campaigns/99/contribute", map[string]any{
		"contributor": alice, "amount": 100,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Invalid goal.
	resp = postJSON(t, srv.URL+"/api/v1/campaigns", map[string]any{
		"admin":    admin,
		"min_goal": 0,
		"end_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Claim by a non-admin on a fresh campaign: still active, reported as a
	// lifecycle conflict only after the authorization check.
	resp = postJSON(t, srv.URL+"/api/v1/campaigns", map[string]any{
		"admin":    admin,
		"min_goal": 100,
		"end_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, resp, &created)

	resp = postJSON(t, fmt.Sprintf("%s/api/v1/campaigns/%d/claim", srv.URL, created.ID),
		map[string]any{"caller": alice})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Transfer failure surfaces as a gateway error: contributor has no
	// funds in the bank.
	resp = postJSON(t, fmt.Sprintf("%s/api/v1/campaigns/%d/contribute", srv.URL, created.ID),
		map[string]any{"contributor": alice, "amount": 100})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
