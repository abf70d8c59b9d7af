package handler

import (
	"errors"
	"fmt"
	"net/http"

	"bookbid/internal/auctionerrors"
	model "bookbid/internal/models"
	"bookbid/services/escrow/helpers"
	"bookbid/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=escrow_handler.go -destination=mock_escrow_service.go -package=handler

type EscrowServiceInterface interface {
	GetEscrow(escrowID string) (model.EscrowRecord, error)
	HandleCaptureResult(escrowID string, captured bool) (model.EscrowRecord, error)
	ConfirmReceipt(escrowID, buyerID string) (model.EscrowRecord, error)
	RaiseDispute(escrowID, buyerID, reason string) (model.EscrowRecord, error)
	ResolveDispute(escrowID string, releaseToSeller bool) (model.EscrowRecord, error)
}

type EscrowHandler struct {
	service EscrowServiceInterface
}

func NewEscrowHandler(service EscrowServiceInterface) *EscrowHandler {
	return &EscrowHandler{service: service}
}

// GetEscrowHandler handles GET /escrows/:escrow_id
func (h *EscrowHandler) GetEscrowHandler(c *gin.Context) {
	escrowID := c.Param("escrow_id")

	rec, err := h.service.GetEscrow(escrowID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetEscrowHandler: error retrieving escrow", map[string]any{
			"escrow_id": escrowID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(rec), "escrow retrieved successfully")
}

// CaptureCallbackHandler handles POST /escrows/:escrow_id/capture, the
// payment collaborator's asynchronous capture result keyed by escrow id.
func (h *EscrowHandler) CaptureCallbackHandler(c *gin.Context) {
	escrowID := c.Param("escrow_id")

	var req helpers.CaptureCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CaptureCallbackHandler", err)
		return
	}

	rec, err := h.service.HandleCaptureResult(escrowID, *req.Captured)
	if err != nil && !errors.Is(err, auctionerrors.ErrCaptureFailed) {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CaptureCallbackHandler: callback processing failed", map[string]any{
			"escrow_id": escrowID,
			"error":     err.Error(),
		})
		return
	}

	// A failed capture is an accepted callback: the record is terminal and
	// the auction has been reopened.
	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(rec), "capture result recorded")
	helpers.LogSuccess("CaptureCallbackHandler", "capture result recorded", map[string]any{
		"escrow_id": escrowID,
		"state":     string(rec.State),
	})
}

// ConfirmReceiptHandler handles POST /escrows/:escrow_id/confirm
func (h *EscrowHandler) ConfirmReceiptHandler(c *gin.Context) {
	escrowID := c.Param("escrow_id")

	var req helpers.ConfirmReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ConfirmReceiptHandler", err)
		return
	}

	rec, err := h.service.ConfirmReceipt(escrowID, req.BuyerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ConfirmReceiptHandler: confirmation rejected", map[string]any{
			"escrow_id": escrowID,
			"buyer_id":  req.BuyerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(rec), "receipt confirmed")
	helpers.LogSuccess("ConfirmReceiptHandler", "receipt confirmed", map[string]any{
		"escrow_id": rec.EscrowID,
		"state":     string(rec.State),
		"payout":    rec.Payout(),
	})
}

// RaiseDisputeHandler handles POST /escrows/:escrow_id/dispute
func (h *EscrowHandler) RaiseDisputeHandler(c *gin.Context) {
	escrowID := c.Param("escrow_id")

	var req helpers.RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RaiseDisputeHandler", err)
		return
	}

	rec, err := h.service.RaiseDispute(escrowID, req.BuyerID, req.Reason)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RaiseDisputeHandler: dispute rejected", map[string]any{
			"escrow_id": escrowID,
			"buyer_id":  req.BuyerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(rec), "dispute raised")
	helpers.LogSuccess("RaiseDisputeHandler", "dispute raised", map[string]any{
		"escrow_id": rec.EscrowID,
	})
}

// ResolveDisputeHandler handles POST /escrows/:escrow_id/resolve
func (h *EscrowHandler) ResolveDisputeHandler(c *gin.Context) {
	escrowID := c.Param("escrow_id")

	var req helpers.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ResolveDisputeHandler", err)
		return
	}

	rec, err := h.service.ResolveDispute(escrowID, *req.ReleaseToSeller)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ResolveDisputeHandler: resolution rejected", map[string]any{
			"escrow_id": escrowID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToEscrowResponse(rec), "dispute resolved")
	helpers.LogSuccess("ResolveDisputeHandler", "dispute resolved", map[string]any{
		"escrow_id": rec.EscrowID,
		"state":     string(rec.State),
	})
}
