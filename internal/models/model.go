package models

import "time"

// AuctionPhase is the lifecycle phase of an auction. Transitions are
// monotonic except for the capture-failure reopen path.
type AuctionPhase string

const (
	PhaseScheduled         AuctionPhase = "scheduled"
	PhaseActive            AuctionPhase = "active"
	PhaseExtended          AuctionPhase = "extended"
	PhaseClosedSold        AuctionPhase = "closed_sold"
	PhaseClosedUnsold      AuctionPhase = "closed_unsold"
	PhaseCancelled         AuctionPhase = "cancelled"
	PhaseSettlementPending AuctionPhase = "settlement_pending"
	PhaseSettled           AuctionPhase = "settled"
	PhaseDisputed          AuctionPhase = "disputed"
	PhaseRefunded          AuctionPhase = "refunded"
)

// BiddingOpen reports whether the auction still accepts bids.
func (p AuctionPhase) BiddingOpen() bool {
	return p == PhaseActive || p == PhaseExtended
}

// Closed reports whether bidding has ended, for any reason.
func (p AuctionPhase) Closed() bool {
	return !(p == PhaseScheduled || p.BiddingOpen())
}

// Terminal reports whether the auction can never change again.
func (p AuctionPhase) Terminal() bool {
	switch p {
	case PhaseClosedUnsold, PhaseCancelled, PhaseSettled, PhaseRefunded:
		return true
	}
	return false
}

// Auction is one listed textbook up for bidding. All money fields are
// integer minor-currency units (fils).
type Auction struct {
	AuctionID      string       `json:"auction_id"`
	SellerID       string       `json:"seller_id"`
	Title          string       `json:"title"`
	StartingPrice  int64        `json:"starting_price"`
	MinIncrement   int64        `json:"min_increment"`
	BuyNowPrice    int64        `json:"buy_now_price,omitempty"` // 0 means no buy-now
	StartTime      time.Time    `json:"start_time"`
	Deadline       time.Time    `json:"deadline"` // never decreases
	ExtensionCount int          `json:"extension_count"`
	Phase          AuctionPhase `json:"phase"`
	WinnerID       string       `json:"winner_id,omitempty"`
	CurrentPrice   int64        `json:"current_price"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Bid is one immutable ledger entry. Sequence, not CreatedAt, is the
// ordering authority: client clocks are not trustworthy.
type Bid struct {
	BidID           string    `json:"bid_id"`
	AuctionID       string    `json:"auction_id"`
	BidderID        string    `json:"bidder_id"`
	Amount          int64     `json:"amount"`
	DeclaredMax     int64     `json:"declared_max"`
	Sequence        uint64    `json:"sequence"`
	IsAutoGenerated bool      `json:"is_auto_generated"`
	CreatedAt       time.Time `json:"created_at"`
}

// StandingMax is the derived highest live proxy ceiling for one bidder in
// one auction. Sequence records when the current ceiling was set and is
// the tie-break between equal maxes (earliest wins).
type StandingMax struct {
	BidderID string `json:"bidder_id"`
	Max      int64  `json:"max"`
	Sequence uint64 `json:"sequence"`
}

// BidResult is what placeBid returns to the caller.
type BidResult struct {
	Sequence     uint64       `json:"sequence"`
	Accepted     bool         `json:"accepted"`
	CurrentPrice int64        `json:"current_price"`
	WinnerID     string       `json:"winner_id,omitempty"`
	Phase        AuctionPhase `json:"phase"`
	Deadline     time.Time    `json:"deadline"`
}

// EscrowState is the settlement lifecycle of the funds held for a sold
// auction.
type EscrowState string

const (
	EscrowAuthorized   EscrowState = "authorized"
	EscrowCaptured     EscrowState = "captured"
	EscrowHeldInEscrow EscrowState = "held_in_escrow"
	EscrowReleased     EscrowState = "released"
	EscrowRefunded     EscrowState = "refunded"
	EscrowDisputed     EscrowState = "disputed"
	EscrowFailed       EscrowState = "failed" // payment capture failed, auction reopened
)

// Terminal reports whether the escrow record is final.
func (s EscrowState) Terminal() bool {
	return s == EscrowReleased || s == EscrowRefunded || s == EscrowFailed
}

// EscrowRecord holds funds between buyer and seller until delivery is
// confirmed. EscrowID doubles as the idempotency token toward the payment
// collaborator.
type EscrowRecord struct {
	EscrowID        string      `json:"escrow_id"`
	AuctionID       string      `json:"auction_id"`
	BuyerID         string      `json:"buyer_id"`
	SellerID        string      `json:"seller_id"`
	Amount          int64       `json:"amount"`
	Fee             int64       `json:"fee"`
	State           EscrowState `json:"state"`
	DisputeReason   string      `json:"dispute_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	ReleaseDeadline time.Time   `json:"release_deadline,omitempty"` // zero until funds are held
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Payout is the amount made payable to the seller on release.
func (r EscrowRecord) Payout() int64 {
	return r.Amount - r.Fee
}
