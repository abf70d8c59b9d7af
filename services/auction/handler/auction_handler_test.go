package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auction "bookbid/internal/auctionEngine"
	"bookbid/internal/auctionerrors"
	model "bookbid/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func setupAuctionTest(t *testing.T) (*gin.Engine, *MockAuctionServiceInterface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	mockService := NewMockAuctionServiceInterface(ctrl)
	h := NewAuctionHandler(mockService)

	router := gin.New()
	router.POST("/auctions", h.CreateAuctionHandler)
	router.GET("/auctions/:auction_id", h.GetAuctionStateHandler)
	router.POST("/auctions/:auction_id/bids", h.PlaceBidHandler)
	router.GET("/auctions/:auction_id/bids", h.ListBidsHandler)
	router.POST("/auctions/:auction_id/cancel", h.CancelAuctionHandler)
	return router, mockService
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateAuctionHandler(t *testing.T) {
	deadline := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		router, mockService := setupAuctionTest(t)

		mockService.EXPECT().
			CreateAuction(gomock.AssignableToTypeOf(auction.CreateParams{})).
			DoAndReturn(func(p auction.CreateParams) (model.Auction, error) {
				require.Equal(t, "seller1", p.SellerID)
				require.Equal(t, int64(500), p.StartingPrice)
				return model.Auction{
					AuctionID:     "a1",
					SellerID:      p.SellerID,
					Title:         p.Title,
					StartingPrice: p.StartingPrice,
					MinIncrement:  p.MinIncrement,
					CurrentPrice:  p.StartingPrice,
					Phase:         model.PhaseActive,
					Deadline:      p.Deadline,
				}, nil
			})

		w := doJSON(t, router, http.MethodPost, "/auctions", gin.H{
			"seller_id":      "seller1",
			"title":          "Linear Algebra Done Right",
			"starting_price": 500,
			"min_increment":  50,
			"deadline":       deadline,
		})

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		require.Equal(t, "auction created successfully", body["message"])
		data := body["data"].(map[string]any)
		require.Equal(t, "a1", data["auction_id"])
	})

	t.Run("missing required fields", func(t *testing.T) {
		router, _ := setupAuctionTest(t)

		w := doJSON(t, router, http.MethodPost, "/auctions", gin.H{"seller_id": "seller1"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		require.Equal(t, "invalid request payload", body["message"])
	})

	t.Run("engine rejects parameters", func(t *testing.T) {
		router, mockService := setupAuctionTest(t)

		mockService.EXPECT().
			CreateAuction(gomock.Any()).
			Return(model.Auction{}, fmt.Errorf("engine: %w - deadline must be in the future", auctionerrors.ErrInvalidAuction))

		w := doJSON(t, router, http.MethodPost, "/auctions", gin.H{
			"seller_id":      "seller1",
			"title":          "Linear Algebra Done Right",
			"starting_price": 500,
			"min_increment":  50,
			"deadline":       deadline,
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		require.Equal(t, "invalid auction parameters", body["message"])
	})
}

func TestPlaceBidHandler(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		router, mockService := setupAuctionTest(t)

		mockService.EXPECT().
			PlaceBid("a1", "bidder1", int64(600), int64(900)).
			Return(model.BidResult{
				Sequence:     3,
				Accepted:     true,
				CurrentPrice: 650,
				WinnerID:     "bidder1",
				Phase:        model.PhaseActive,
				Deadline:     time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC),
			}, nil)

		w := doJSON(t, router, http.MethodPost, "/auctions/a1/bids", gin.H{
			"bidder_id":    "bidder1",
			"amount":       600,
			"declared_max": 900,
		})

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]any)
		require.Equal(t, float64(3), data["sequence"])
		require.Equal(t, float64(650), data["current_price"])
		require.Equal(t, "bidder1", data["winner_id"])
		require.Equal(t, "2026-09-02T12:00:00Z", data["deadline"])
	})

	t.Run("rejections map to conflict", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantMsg    string
		}{
			{"too low", auctionerrors.ErrBidTooLow, http.StatusConflict, "bid amount too low"},
			{"lowered max", auctionerrors.ErrMaxBidCannotDecrease, http.StatusConflict, "standing max bid cannot be lowered"},
			{"not started", auctionerrors.ErrAuctionNotOpen, http.StatusConflict, "auction has not started"},
			{"closed", auctionerrors.ErrStaleAuction, http.StatusConflict, "auction already closed"},
			{"unknown auction", auctionerrors.ErrAuctionNotFound, http.StatusNotFound, "auction not found"},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				router, mockService := setupAuctionTest(t)
				mockService.EXPECT().
					PlaceBid("a1", "bidder1", int64(600), int64(0)).
					Return(model.BidResult{}, fmt.Errorf("engine: %w", tc.err))

				w := doJSON(t, router, http.MethodPost, "/auctions/a1/bids", gin.H{
					"bidder_id": "bidder1",
					"amount":    600,
				})

				require.Equal(t, tc.wantStatus, w.Code)
				body := decodeBody(t, w)
				require.Equal(t, tc.wantMsg, body["message"])
			})
		}
	})

	t.Run("invalid payload", func(t *testing.T) {
		router, _ := setupAuctionTest(t)

		w := doJSON(t, router, http.MethodPost, "/auctions/a1/bids", gin.H{
			"bidder_id": "bidder1",
			"amount":    -5,
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetAuctionStateHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, mockService := setupAuctionTest(t)

		mockService.EXPECT().
			GetAuction("a1").
			Return(model.Auction{
				AuctionID:      "a1",
				CurrentPrice:   850,
				WinnerID:       "A",
				Phase:          model.PhaseExtended,
				Deadline:       time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC),
				ExtensionCount: 1,
			}, nil)

		w := doJSON(t, router, http.MethodGet, "/auctions/a1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]any)
		require.Equal(t, float64(850), data["current_price"])
		require.Equal(t, "extended", data["phase"])
		require.Equal(t, float64(1), data["extension_count"])
	})

	t.Run("not found", func(t *testing.T) {
		router, mockService := setupAuctionTest(t)

		mockService.EXPECT().
			GetAuction("missing").
			Return(model.Auction{}, fmt.Errorf("engine: %w", auctionerrors.ErrAuctionNotFound))

		w := doJSON(t, router, http.MethodGet, "/auctions/missing", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListBidsHandler(t *testing.T) {
	router, mockService := setupAuctionTest(t)

	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mockService.EXPECT().
		ListBids("a1").
		Return([]model.Bid{
			{BidID: "b1", AuctionID: "a1", BidderID: "A", Amount: 500, DeclaredMax: 900, Sequence: 1, CreatedAt: created},
			{BidID: "b2", AuctionID: "a1", BidderID: "A", Amount: 550, DeclaredMax: 550, Sequence: 2, IsAutoGenerated: true, CreatedAt: created},
		}, nil)

	w := doJSON(t, router, http.MethodGet, "/auctions/a1/bids", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]any)
	require.Len(t, data, 2)
	second := data[1].(map[string]any)
	require.Equal(t, true, second["is_auto_generated"])
	require.Equal(t, "2026-09-01T12:00:00Z", second["created_at"])
}

func TestCancelAuctionHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, mockService := setupAuctionTest(t)

		mockService.EXPECT().
			CancelAuction("a1").
			Return(model.Auction{AuctionID: "a1", Phase: model.PhaseCancelled}, nil)

		w := doJSON(t, router, http.MethodPost, "/auctions/a1/cancel", nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]any)
		require.Equal(t, "cancelled", data["phase"])
	})

	t.Run("refused with bids", func(t *testing.T) {
		router, mockService := setupAuctionTest(t)

		mockService.EXPECT().
			CancelAuction("a1").
			Return(model.Auction{}, fmt.Errorf("engine: %w", auctionerrors.ErrAuctionHasBids))

		w := doJSON(t, router, http.MethodPost, "/auctions/a1/cancel", nil)
		require.Equal(t, http.StatusConflict, w.Code)
	})
}
