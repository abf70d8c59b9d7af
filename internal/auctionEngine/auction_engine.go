package auction

import (
	"fmt"
	"sync"
	"time"

	"bookbid/internal/auctionerrors"
	"bookbid/internal/clock"
	"bookbid/internal/events"
	model "bookbid/internal/models"
	"bookbid/internal/repository"
	"bookbid/utils"
)

// Settlement is the escrow collaborator invoked when an auction closes
// sold. Open must store the record before issuing any external call.
type Settlement interface {
	Open(a model.Auction) (model.EscrowRecord, error)
}

// Config carries the bidding fairness knobs.
type Config struct {
	AntiSnipeWindow time.Duration // late-bid window that triggers a deadline extension
	MaxExtensions   int           // 0 means unlimited
}

// Engine owns all auction state transitions. Every operation on one
// auction runs under that auction's lock; auctions are independent of
// each other.
type Engine struct {
	store      repository.AuctionStore
	pub        *events.Publisher
	clk        clock.Clock
	cfg        Config
	settlement Settlement

	locks keyedMutex
}

// NewEngine creates a new auction Engine instance. The settlement
// collaborator is attached afterwards via SetSettlement because the two
// engines reference each other.
func NewEngine(store repository.AuctionStore, pub *events.Publisher, clk clock.Clock, cfg Config) *Engine {
	return &Engine{
		store: store,
		pub:   pub,
		clk:   clk,
		cfg:   cfg,
	}
}

// SetSettlement attaches the escrow collaborator.
func (e *Engine) SetSettlement(s Settlement) {
	e.settlement = s
}

// keyedMutex hands out one mutex per auction id. The unit of
// serialization is the auction: bids, extension checks and phase
// transitions for one auction never interleave.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(id string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// CreateParams are the auction creation inputs supplied by the listing
// collaborator. Money values are integer minor units.
type CreateParams struct {
	SellerID      string
	Title         string
	StartingPrice int64
	MinIncrement  int64
	BuyNowPrice   int64     // 0 disables buy-now
	StartTime     time.Time // zero means start immediately
	Deadline      time.Time
}

// CreateAuction validates the listing parameters and stores a new auction
func (e *Engine) CreateAuction(p CreateParams) (model.Auction, error) {
	if p.SellerID == "" {
		return model.Auction{}, fmt.Errorf("engine: %w - missing sellerID", auctionerrors.ErrInvalidAuction)
	}
	if p.StartingPrice <= 0 || p.MinIncrement <= 0 {
		return model.Auction{}, fmt.Errorf("engine: %w - starting price and increment must be positive", auctionerrors.ErrInvalidAuction)
	}
	if p.BuyNowPrice != 0 && p.BuyNowPrice < p.StartingPrice {
		return model.Auction{}, fmt.Errorf("engine: %w - buy-now price below starting price", auctionerrors.ErrInvalidAuction)
	}

	now := e.clk.Now()
	start := p.StartTime
	if start.IsZero() {
		start = now
	}
	if !p.Deadline.After(start) || !p.Deadline.After(now) {
		return model.Auction{}, fmt.Errorf("engine: %w - deadline must be in the future", auctionerrors.ErrInvalidAuction)
	}

	phase := model.PhaseActive
	if start.After(now) {
		phase = model.PhaseScheduled
	}

	a := model.Auction{
		AuctionID:     utils.GenerateID(),
		SellerID:      p.SellerID,
		Title:         p.Title,
		StartingPrice: p.StartingPrice,
		MinIncrement:  p.MinIncrement,
		BuyNowPrice:   p.BuyNowPrice,
		StartTime:     start,
		Deadline:      p.Deadline,
		Phase:         phase,
		CurrentPrice:  p.StartingPrice,
		CreatedAt:     now,
	}

	if err := e.store.AddAuction(a); err != nil {
		return model.Auction{}, fmt.Errorf("engine: failed to store auction: %w", err)
	}
	return a, nil
}

// PlaceBid appends a bid to the auction's ledger and resolves the proxy
// auction outcome. declaredMax of 0 means a plain bid (the ceiling equals
// the amount). Rejections come back as wrapped sentinel errors.
func (e *Engine) PlaceBid(auctionID, bidderID string, amount, declaredMax int64) (model.BidResult, error) {
	if auctionID == "" || bidderID == "" {
		return model.BidResult{}, fmt.Errorf("engine: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return model.BidResult{}, fmt.Errorf("engine: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	if declaredMax == 0 {
		declaredMax = amount
	}
	if declaredMax < amount {
		return model.BidResult{}, fmt.Errorf("engine: %w - declared max below bid amount", auctionerrors.ErrInvalidBid)
	}

	unlock := e.locks.lock(auctionID)
	defer unlock()

	a, err := e.store.GetAuction(auctionID)
	if err != nil {
		return model.BidResult{}, fmt.Errorf("engine: %w", err)
	}

	now := e.clk.Now()
	e.progressLocked(&a, now)

	if a.Phase == model.PhaseScheduled {
		return model.BidResult{}, fmt.Errorf("engine: %w - starts at %s", auctionerrors.ErrAuctionNotOpen, a.StartTime.Format(time.RFC3339))
	}
	if !a.Phase.BiddingOpen() {
		return model.BidResult{}, fmt.Errorf("engine: %w - phase is %s", auctionerrors.ErrStaleAuction, a.Phase)
	}

	maxes, err := e.store.StandingMaxes(auctionID)
	if err != nil {
		return model.BidResult{}, fmt.Errorf("engine: failed to load standing maxes: %w", err)
	}
	for _, sm := range maxes {
		if sm.BidderID == bidderID && declaredMax < sm.Max {
			return model.BidResult{}, fmt.Errorf("engine: %w - standing max is %d", auctionerrors.ErrMaxBidCannotDecrease, sm.Max)
		}
	}

	if a.WinnerID != bidderID {
		floor := a.StartingPrice
		if a.WinnerID != "" {
			floor = a.CurrentPrice + a.MinIncrement
		}
		if declaredMax < floor {
			return model.BidResult{}, fmt.Errorf("engine: %w - minimum is %d", auctionerrors.ErrBidTooLow, floor)
		}
	}

	bid, err := e.store.AppendBid(model.Bid{
		BidID:       utils.GenerateID(),
		AuctionID:   auctionID,
		BidderID:    bidderID,
		Amount:      amount,
		DeclaredMax: declaredMax,
		CreatedAt:   now,
	})
	if err != nil {
		return model.BidResult{}, fmt.Errorf("engine: failed to append bid: %w", err)
	}

	maxes, err = e.store.StandingMaxes(auctionID)
	if err != nil {
		return model.BidResult{}, fmt.Errorf("engine: failed to reload standing maxes: %w", err)
	}
	winner, price := resolveOutcome(maxes, a.StartingPrice, a.MinIncrement)

	// Buy-now pre-empts further bidding: any ceiling at or above the
	// buy-now price closes the auction immediately at that price.
	if a.BuyNowPrice > 0 && winner.Max >= a.BuyNowPrice {
		a.WinnerID = winner.BidderID
		a.CurrentPrice = a.BuyNowPrice
		if err := e.appendClearingBid(&a, now); err != nil {
			return model.BidResult{}, err
		}
		e.publishPriceChanged(a)
		e.closeLocked(&a, now)
		return bidResult(bid.Sequence, a), nil
	}

	prevWinner, prevPrice := a.WinnerID, a.CurrentPrice
	a.WinnerID = winner.BidderID
	a.CurrentPrice = price

	if price != prevPrice {
		if err := e.appendClearingBid(&a, now); err != nil {
			return model.BidResult{}, err
		}
		e.publishPriceChanged(a)
	}
	if prevWinner != "" && prevWinner != a.WinnerID {
		e.pub.Publish(events.Event{
			AuctionID: a.AuctionID,
			Type:      events.EventOutbid,
			Payload:   map[string]any{"bidder_id": prevWinner, "current_price": a.CurrentPrice},
			At:        now,
		})
	}

	e.maybeExtendLocked(&a, now)

	if err := e.store.UpdateAuction(a); err != nil {
		return model.BidResult{}, fmt.Errorf("engine: failed to update auction: %w", err)
	}
	return bidResult(bid.Sequence, a), nil
}

// GetAuction returns the authoritative auction snapshot, progressing any
// due lifecycle transition first so callers never observe an expired
// deadline on an open auction.
func (e *Engine) GetAuction(auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("engine: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	unlock := e.locks.lock(auctionID)
	defer unlock()

	a, err := e.store.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("engine: %w", err)
	}
	e.progressLocked(&a, e.clk.Now())
	return a, nil
}

// ListBids returns the full bid ledger for an auction in sequence order
func (e *Engine) ListBids(auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("engine: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	bids, err := e.store.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return bids, nil
}

// CancelAuction force-cancels an auction. Allowed only from Scheduled, or
// from Active before any bid has been accepted.
func (e *Engine) CancelAuction(auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("engine: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	unlock := e.locks.lock(auctionID)
	defer unlock()

	a, err := e.store.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("engine: %w", err)
	}

	switch {
	case a.Phase == model.PhaseScheduled:
		// always cancellable before start
	case a.Phase.BiddingOpen():
		bids, err := e.store.GetBidsByAuction(auctionID)
		if err != nil {
			return model.Auction{}, fmt.Errorf("engine: %w", err)
		}
		if len(bids) > 0 {
			return model.Auction{}, fmt.Errorf("engine: %w", auctionerrors.ErrAuctionHasBids)
		}
	default:
		return model.Auction{}, fmt.Errorf("engine: %w - phase is %s", auctionerrors.ErrStaleAuction, a.Phase)
	}

	a.Phase = model.PhaseCancelled
	if err := e.store.UpdateAuction(a); err != nil {
		return model.Auction{}, fmt.Errorf("engine: failed to update auction: %w", err)
	}
	e.pub.Publish(events.Event{
		AuctionID: a.AuctionID,
		Type:      events.EventAuctionClosed,
		Payload:   map[string]any{"phase": string(a.Phase)},
		At:        e.clk.Now(),
	})
	return a, nil
}

func bidResult(seq uint64, a model.Auction) model.BidResult {
	return model.BidResult{
		Sequence:     seq,
		Accepted:     true,
		CurrentPrice: a.CurrentPrice,
		WinnerID:     a.WinnerID,
		Phase:        a.Phase,
		Deadline:     a.Deadline,
	}
}

// appendClearingBid records the engine-generated proxy response at the new
// clearing price under the winner's identity.
func (e *Engine) appendClearingBid(a *model.Auction, now time.Time) error {
	_, err := e.store.AppendBid(model.Bid{
		BidID:           utils.GenerateID(),
		AuctionID:       a.AuctionID,
		BidderID:        a.WinnerID,
		Amount:          a.CurrentPrice,
		DeclaredMax:     a.CurrentPrice,
		IsAutoGenerated: true,
		CreatedAt:       now,
	})
	if err != nil {
		return fmt.Errorf("engine: failed to append clearing bid: %w", err)
	}
	return nil
}

func (e *Engine) publishPriceChanged(a model.Auction) {
	e.pub.Publish(events.Event{
		AuctionID: a.AuctionID,
		Type:      events.EventPriceChanged,
		Payload:   map[string]any{"current_price": a.CurrentPrice, "winner_id": a.WinnerID},
		At:        e.clk.Now(),
	})
}
