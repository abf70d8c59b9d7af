package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookbid/internal/auctionerrors"
	model "bookbid/internal/models"
	"bookbid/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps escrow errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrEscrowNotFound):
		return http.StatusNotFound, "escrow record not found"
	case errors.Is(err, auctionerrors.ErrNotBuyer):
		return http.StatusForbidden, "caller is not the escrow buyer"
	case errors.Is(err, auctionerrors.ErrEscrowAlreadyTerminal):
		return http.StatusConflict, "escrow record is in a terminal state"
	case errors.Is(err, auctionerrors.ErrEscrowNotHeld):
		return http.StatusConflict, "escrow funds are not held yet"
	case errors.Is(err, auctionerrors.ErrEscrowNotDisputed):
		return http.StatusConflict, "escrow record is not under dispute"
	case errors.Is(err, auctionerrors.ErrDisputeWindowExpired):
		return http.StatusConflict, "dispute window has expired"
	case errors.Is(err, auctionerrors.ErrCaptureFailed):
		return http.StatusUnprocessableEntity, "payment capture failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ToEscrowResponse converts a record to its HTTP representation
func ToEscrowResponse(rec model.EscrowRecord) EscrowResponse {
	resp := EscrowResponse{
		EscrowID:      rec.EscrowID,
		AuctionID:     rec.AuctionID,
		BuyerID:       rec.BuyerID,
		SellerID:      rec.SellerID,
		Amount:        rec.Amount,
		Fee:           rec.Fee,
		Payout:        rec.Payout(),
		State:         string(rec.State),
		DisputeReason: rec.DisputeReason,
	}
	if !rec.ReleaseDeadline.IsZero() {
		resp.ReleaseDeadline = rec.ReleaseDeadline.UTC().Format(time.RFC3339)
	}
	return resp
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
