package escrow

import (
	"fmt"
	"sync"
	"time"

	"bookbid/internal/auctionerrors"
	"bookbid/internal/clock"
	"bookbid/internal/events"
	model "bookbid/internal/models"
	"bookbid/internal/payments"
	"bookbid/internal/repository"
	"bookbid/utils"
)

// AuctionControl is the slice of the auction engine the settlement side
// needs: reflecting escrow outcomes on the auction phase and the
// capture-failure reopen compensation.
type AuctionControl interface {
	CompleteSettlement(auctionID string, phase model.AuctionPhase) error
	ReopenAfterCaptureFailure(auctionID, failedBidderID string) error
}

// Config carries the settlement knobs.
type Config struct {
	FeeBps           int64         // marketplace fee in basis points of the final price
	ProtectionWindow time.Duration // buyer protection window after funds are held
}

// Engine owns the escrow settlement state machine. Transitions for one
// record are serialized on the record id, which is also the idempotency
// token toward the payment collaborator, so replayed callbacks and
// repeated buyer actions are harmless.
type Engine struct {
	store    repository.AuctionStore
	gateway  payments.Gateway
	pub      *events.Publisher
	clk      clock.Clock
	cfg      Config
	auctions AuctionControl

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a new escrow Engine instance
func NewEngine(store repository.AuctionStore, gateway payments.Gateway, pub *events.Publisher, clk clock.Clock, cfg Config, auctions AuctionControl) *Engine {
	return &Engine{
		store:    store,
		gateway:  gateway,
		pub:      pub,
		clk:      clk,
		cfg:      cfg,
		auctions: auctions,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lock(escrowID string) func() {
	e.mu.Lock()
	m, ok := e.locks[escrowID]
	if !ok {
		m = &sync.Mutex{}
		e.locks[escrowID] = m
	}
	e.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Fee computes the marketplace fee for a final price: a fixed percentage
// rounded down to the nearest minor unit.
func (e *Engine) Fee(amount int64) int64 {
	return amount * e.cfg.FeeBps / 10000
}

// Open creates the escrow record for a sold auction in state Authorized
// and asks the payment collaborator for an authorization. The record is
// durably stored before the external call is issued, and the call itself
// happens off the caller's lock path.
func (e *Engine) Open(a model.Auction) (model.EscrowRecord, error) {
	if a.WinnerID == "" {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - auction has no winner", auctionerrors.ErrInvalidAuction)
	}

	now := e.clk.Now()
	rec := model.EscrowRecord{
		EscrowID:  utils.GenerateID(),
		AuctionID: a.AuctionID,
		BuyerID:   a.WinnerID,
		SellerID:  a.SellerID,
		Amount:    a.CurrentPrice,
		Fee:       e.Fee(a.CurrentPrice),
		State:     model.EscrowAuthorized,
		CreatedAt: now,
		UpdatedAt: now,
	}

	unlock := e.lock(rec.EscrowID)
	defer unlock()

	if err := e.store.AddEscrow(rec); err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: failed to store record: %w", err)
	}
	e.publishState(rec, now)

	go func() {
		err := e.gateway.CreateAuthorization(rec.EscrowID, rec.Amount, rec.BuyerID, map[string]string{
			"auction_id": rec.AuctionID,
			"seller_id":  rec.SellerID,
		})
		if err != nil {
			utils.Error("escrow: payment authorization request failed", map[string]any{
				"escrow_id": rec.EscrowID,
				"error":     err.Error(),
			})
		}
	}()

	return rec, nil
}

// HandleCaptureResult processes the payment collaborator's asynchronous
// capture callback. Success moves the record through Captured into
// HeldInEscrow and starts the protection window. Failure terminates the
// record and reopens the auction with the failed bidder invalidated.
// Replays on a settled record are no-ops.
func (e *Engine) HandleCaptureResult(escrowID string, captured bool) (model.EscrowRecord, error) {
	unlock := e.lock(escrowID)

	rec, err := e.store.GetEscrow(escrowID)
	if err != nil {
		unlock()
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", err)
	}

	if rec.State != model.EscrowAuthorized {
		unlock()
		return rec, nil // duplicate or late callback
	}

	now := e.clk.Now()
	if captured {
		rec.State = model.EscrowCaptured
		rec.UpdatedAt = now
		if err := e.store.UpdateEscrow(rec); err != nil {
			unlock()
			return model.EscrowRecord{}, fmt.Errorf("escrow: failed to update record: %w", err)
		}
		e.publishState(rec, now)

		rec.State = model.EscrowHeldInEscrow
		rec.ReleaseDeadline = now.Add(e.cfg.ProtectionWindow)
		rec.UpdatedAt = now
		if err := e.store.UpdateEscrow(rec); err != nil {
			unlock()
			return model.EscrowRecord{}, fmt.Errorf("escrow: failed to update record: %w", err)
		}
		e.publishState(rec, now)
		unlock()
		return rec, nil
	}

	rec.State = model.EscrowFailed
	rec.UpdatedAt = now
	if err := e.store.UpdateEscrow(rec); err != nil {
		unlock()
		return model.EscrowRecord{}, fmt.Errorf("escrow: failed to update record: %w", err)
	}
	e.publishState(rec, now)
	unlock()

	// Compensating action, taken after the escrow outcome is recorded and
	// outside the record's lock: the auction reopens with the next-highest
	// standing max promoted.
	if err := e.auctions.ReopenAfterCaptureFailure(rec.AuctionID, rec.BuyerID); err != nil {
		utils.Error("escrow: failed to reopen auction after capture failure", map[string]any{
			"escrow_id":  rec.EscrowID,
			"auction_id": rec.AuctionID,
			"error":      err.Error(),
		})
	}

	return rec, fmt.Errorf("escrow: %w", auctionerrors.ErrCaptureFailed)
}

// ConfirmReceipt releases the held funds to the seller after the buyer
// confirms delivery. Re-confirming an already-released record is a no-op.
func (e *Engine) ConfirmReceipt(escrowID, buyerID string) (model.EscrowRecord, error) {
	unlock := e.lock(escrowID)
	defer unlock()

	rec, err := e.store.GetEscrow(escrowID)
	if err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", err)
	}
	if buyerID != rec.BuyerID {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", auctionerrors.ErrNotBuyer)
	}

	switch rec.State {
	case model.EscrowReleased:
		return rec, nil // idempotent, no double-release
	case model.EscrowRefunded, model.EscrowFailed:
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - state is %s", auctionerrors.ErrEscrowAlreadyTerminal, rec.State)
	case model.EscrowDisputed:
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - record is under dispute", auctionerrors.ErrEscrowNotHeld)
	case model.EscrowAuthorized, model.EscrowCaptured:
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", auctionerrors.ErrEscrowNotHeld)
	}

	return e.releaseLocked(rec, model.PhaseSettled)
}

// RaiseDispute freezes the held funds pending administrative resolution.
// Allowed only within the protection window; raising an already-raised
// dispute is a no-op.
func (e *Engine) RaiseDispute(escrowID, buyerID, reason string) (model.EscrowRecord, error) {
	unlock := e.lock(escrowID)
	defer unlock()

	rec, err := e.store.GetEscrow(escrowID)
	if err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", err)
	}
	if buyerID != rec.BuyerID {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", auctionerrors.ErrNotBuyer)
	}

	switch rec.State {
	case model.EscrowDisputed:
		return rec, nil
	case model.EscrowReleased, model.EscrowRefunded, model.EscrowFailed:
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - state is %s", auctionerrors.ErrEscrowAlreadyTerminal, rec.State)
	case model.EscrowAuthorized, model.EscrowCaptured:
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", auctionerrors.ErrEscrowNotHeld)
	}

	now := e.clk.Now()
	if now.After(rec.ReleaseDeadline) {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - window closed at %s",
			auctionerrors.ErrDisputeWindowExpired, rec.ReleaseDeadline.Format(time.RFC3339))
	}

	rec.State = model.EscrowDisputed
	rec.DisputeReason = reason
	rec.UpdatedAt = now
	if err := e.store.UpdateEscrow(rec); err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: failed to update record: %w", err)
	}
	e.publishState(rec, now)

	if err := e.auctions.CompleteSettlement(rec.AuctionID, model.PhaseDisputed); err != nil {
		utils.Warn("escrow: failed to reflect dispute on auction", map[string]any{
			"escrow_id":  rec.EscrowID,
			"auction_id": rec.AuctionID,
			"error":      err.Error(),
		})
	}
	return rec, nil
}

// ResolveDispute is the administrative resolution of a disputed record,
// either releasing to the seller or refunding the buyer.
func (e *Engine) ResolveDispute(escrowID string, releaseToSeller bool) (model.EscrowRecord, error) {
	unlock := e.lock(escrowID)
	defer unlock()

	rec, err := e.store.GetEscrow(escrowID)
	if err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", err)
	}

	switch rec.State {
	case model.EscrowDisputed:
		// resolvable
	case model.EscrowReleased:
		if releaseToSeller {
			return rec, nil
		}
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - already released", auctionerrors.ErrEscrowAlreadyTerminal)
	case model.EscrowRefunded:
		if !releaseToSeller {
			return rec, nil
		}
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - already refunded", auctionerrors.ErrEscrowAlreadyTerminal)
	default:
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - state is %s", auctionerrors.ErrEscrowNotDisputed, rec.State)
	}

	if releaseToSeller {
		return e.releaseLocked(rec, model.PhaseSettled)
	}

	now := e.clk.Now()
	rec.State = model.EscrowRefunded
	rec.UpdatedAt = now
	if err := e.store.UpdateEscrow(rec); err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: failed to update record: %w", err)
	}
	e.publishState(rec, now)

	if err := e.auctions.CompleteSettlement(rec.AuctionID, model.PhaseRefunded); err != nil {
		utils.Warn("escrow: failed to reflect refund on auction", map[string]any{
			"escrow_id":  rec.EscrowID,
			"auction_id": rec.AuctionID,
			"error":      err.Error(),
		})
	}
	return rec, nil
}

// GetEscrow returns a snapshot of one escrow record
func (e *Engine) GetEscrow(escrowID string) (model.EscrowRecord, error) {
	if escrowID == "" {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w - empty escrow ID", auctionerrors.ErrEscrowNotFound)
	}
	rec, err := e.store.GetEscrow(escrowID)
	if err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: %w", err)
	}
	return rec, nil
}

// SweepReleases auto-releases every held record whose protection window
// has elapsed with no buyer action: silence implies acceptance, and the
// buyer has no reason to come back, so this must be sweep-driven. Returns
// the number of records released.
func (e *Engine) SweepReleases() int {
	released := 0
	now := e.clk.Now()
	for _, snapshot := range e.store.ListEscrows() {
		if snapshot.State != model.EscrowHeldInEscrow || now.Before(snapshot.ReleaseDeadline) {
			continue
		}

		unlock := e.lock(snapshot.EscrowID)
		rec, err := e.store.GetEscrow(snapshot.EscrowID)
		if err == nil && rec.State == model.EscrowHeldInEscrow && !now.Before(rec.ReleaseDeadline) {
			if _, err := e.releaseLocked(rec, model.PhaseSettled); err != nil {
				utils.Error("escrow: auto-release failed", map[string]any{
					"escrow_id": rec.EscrowID,
					"error":     err.Error(),
				})
			} else {
				released++
			}
		}
		unlock()
	}
	return released
}

// releaseLocked moves a held record to Released and reflects the outcome
// on the auction. Caller must hold the record's lock.
func (e *Engine) releaseLocked(rec model.EscrowRecord, auctionPhase model.AuctionPhase) (model.EscrowRecord, error) {
	now := e.clk.Now()
	rec.State = model.EscrowReleased
	rec.UpdatedAt = now
	if err := e.store.UpdateEscrow(rec); err != nil {
		return model.EscrowRecord{}, fmt.Errorf("escrow: failed to update record: %w", err)
	}
	e.publishState(rec, now)

	utils.Info("escrow: funds released to seller", map[string]any{
		"escrow_id": rec.EscrowID,
		"seller_id": rec.SellerID,
		"payout":    rec.Payout(),
		"fee":       rec.Fee,
	})

	if err := e.auctions.CompleteSettlement(rec.AuctionID, auctionPhase); err != nil {
		utils.Warn("escrow: failed to reflect release on auction", map[string]any{
			"escrow_id":  rec.EscrowID,
			"auction_id": rec.AuctionID,
			"error":      err.Error(),
		})
	}
	return rec, nil
}

func (e *Engine) publishState(rec model.EscrowRecord, now time.Time) {
	e.pub.Publish(events.Event{
		AuctionID: rec.AuctionID,
		Type:      events.EventEscrowStateChanged,
		Payload: map[string]any{
			"escrow_id": rec.EscrowID,
			"state":     string(rec.State),
		},
		At: now,
	})
}
