package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "bookbid/internal/auctionEngine"
	"bookbid/internal/clock"
	escrow "bookbid/internal/escrowEngine"
	"bookbid/internal/events"
	"bookbid/internal/payments"
	"bookbid/internal/repository"
	"bookbid/internal/server"

	"github.com/gin-gonic/gin"
)

var testBase = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// TestEnv wires the full stack against an in-memory store and a manual
// clock so tests can drive deadlines deterministically.
type TestEnv struct {
	Router     *gin.Engine
	Store      *repository.MemoryStore
	Clock      *clock.Manual
	AuctionEng *auction.Engine
	EscrowEng  *escrow.Engine
}

// SetupTestEnv initializes the router with the in-memory repository and
// production default settlement rules.
func SetupTestEnv() *TestEnv {
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	pub := events.NewPublisher()
	clk := clock.NewManual(testBase)

	auctionEng := auction.NewEngine(store, pub, clk, auction.Config{
		AntiSnipeWindow: 2 * time.Minute,
	})
	escrowEng := escrow.NewEngine(store, payments.NewLogGateway(), pub, clk, escrow.Config{
		FeeBps:           300,
		ProtectionWindow: 7 * 24 * time.Hour,
	}, auctionEng)
	auctionEng.SetSettlement(escrowEng)

	return &TestEnv{
		Router:     server.SetupRouter(auctionEng, escrowEng),
		Store:      store,
		Clock:      clk,
		AuctionEng: auctionEng,
		EscrowEng:  escrowEng,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the env's router and
// parses the JSON response envelope.
func (env *TestEnv) ExecuteRequestAndParse(t *testing.T, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	env.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// Data unwraps the data object of a response envelope.
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}
