package helpers

// Request/Response DTOs
type CaptureCallbackRequest struct {
	Captured *bool `json:"captured" binding:"required"`
}

type ConfirmReceiptRequest struct {
	BuyerID string `json:"buyer_id" binding:"required"`
}

type RaiseDisputeRequest struct {
	BuyerID string `json:"buyer_id" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
}

type ResolveDisputeRequest struct {
	ReleaseToSeller *bool `json:"release_to_seller" binding:"required"`
}

type EscrowResponse struct {
	EscrowID        string `json:"escrow_id"`
	AuctionID       string `json:"auction_id"`
	BuyerID         string `json:"buyer_id"`
	SellerID        string `json:"seller_id"`
	Amount          int64  `json:"amount"`
	Fee             int64  `json:"fee"`
	Payout          int64  `json:"payout"`
	State           string `json:"state"`
	DisputeReason   string `json:"dispute_reason,omitempty"`
	ReleaseDeadline string `json:"release_deadline,omitempty"`
}
