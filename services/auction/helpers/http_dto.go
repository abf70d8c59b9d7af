package helpers

import "time"

// Request/Response DTOs
type CreateAuctionRequest struct {
	SellerID      string    `json:"seller_id" binding:"required"`
	Title         string    `json:"title" binding:"required"`
	StartingPrice int64     `json:"starting_price" binding:"required,gt=0"`
	MinIncrement  int64     `json:"min_increment" binding:"required,gt=0"`
	BuyNowPrice   int64     `json:"buy_now_price" binding:"omitempty,gt=0"`
	StartTime     time.Time `json:"start_time"`
	Deadline      time.Time `json:"deadline" binding:"required"`
}

type PlaceBidRequest struct {
	BidderID    string `json:"bidder_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	DeclaredMax int64  `json:"declared_max" binding:"omitempty,gt=0"`
}

type BidResultResponse struct {
	Sequence     uint64 `json:"sequence"`
	Accepted     bool   `json:"accepted"`
	CurrentPrice int64  `json:"current_price"`
	WinnerID     string `json:"winner_id,omitempty"`
	Phase        string `json:"phase"`
	Deadline     string `json:"deadline"`
}

type AuctionStateResponse struct {
	AuctionID      string `json:"auction_id"`
	CurrentPrice   int64  `json:"current_price"`
	WinnerID       string `json:"winner_id,omitempty"`
	Phase          string `json:"phase"`
	Deadline       string `json:"deadline"`
	ExtensionCount int    `json:"extension_count"`
}

type BidResponse struct {
	BidID           string `json:"bid_id"`
	AuctionID       string `json:"auction_id"`
	BidderID        string `json:"bidder_id"`
	Amount          int64  `json:"amount"`
	DeclaredMax     int64  `json:"declared_max"`
	Sequence        uint64 `json:"sequence"`
	IsAutoGenerated bool   `json:"is_auto_generated"`
	CreatedAt       string `json:"created_at"`
}
