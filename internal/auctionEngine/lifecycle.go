package auction

import (
	"fmt"
	"time"

	"bookbid/internal/auctionerrors"
	"bookbid/internal/events"
	model "bookbid/internal/models"
	"bookbid/utils"
)

// progressLocked applies any due time-driven transition to the auction.
// Caller must hold the auction's lock.
func (e *Engine) progressLocked(a *model.Auction, now time.Time) {
	if a.Phase == model.PhaseScheduled && !now.Before(a.StartTime) {
		a.Phase = model.PhaseActive
		if err := e.store.UpdateAuction(*a); err != nil {
			utils.Error("engine: failed to activate auction", map[string]any{
				"auction_id": a.AuctionID,
				"error":      err.Error(),
			})
			return
		}
	}
	if a.Phase.BiddingOpen() && !now.Before(a.Deadline) {
		e.closeLocked(a, now)
	}
}

// closeLocked transitions an open auction to its terminal bidding outcome
// and, on a sale, opens escrow settlement. The phase transition is
// recorded before any external side effect. Caller must hold the
// auction's lock.
func (e *Engine) closeLocked(a *model.Auction, now time.Time) {
	if a.WinnerID != "" && a.CurrentPrice >= a.StartingPrice {
		a.Phase = model.PhaseClosedSold
	} else {
		a.Phase = model.PhaseClosedUnsold
	}
	if err := e.store.UpdateAuction(*a); err != nil {
		utils.Error("engine: failed to close auction", map[string]any{
			"auction_id": a.AuctionID,
			"error":      err.Error(),
		})
		return
	}

	e.pub.Publish(events.Event{
		AuctionID: a.AuctionID,
		Type:      events.EventAuctionClosed,
		Payload: map[string]any{
			"phase":         string(a.Phase),
			"current_price": a.CurrentPrice,
			"winner_id":     a.WinnerID,
		},
		At: now,
	})

	if a.Phase != model.PhaseClosedSold || e.settlement == nil {
		return
	}
	if _, err := e.settlement.Open(*a); err != nil {
		utils.Error("engine: failed to open escrow for sold auction", map[string]any{
			"auction_id": a.AuctionID,
			"error":      err.Error(),
		})
		return
	}
	a.Phase = model.PhaseSettlementPending
	if err := e.store.UpdateAuction(*a); err != nil {
		utils.Error("engine: failed to mark settlement pending", map[string]any{
			"auction_id": a.AuctionID,
			"error":      err.Error(),
		})
	}
}

// maybeExtendLocked applies anti-snipe protection: an accepted bid inside
// the window pushes the deadline out so competitors get a fair chance to
// respond. Re-entering Extended only moves the deadline and count.
func (e *Engine) maybeExtendLocked(a *model.Auction, now time.Time) {
	if e.cfg.AntiSnipeWindow <= 0 {
		return
	}
	if a.Deadline.Sub(now) >= e.cfg.AntiSnipeWindow {
		return
	}
	if e.cfg.MaxExtensions > 0 && a.ExtensionCount >= e.cfg.MaxExtensions {
		return
	}

	a.Deadline = now.Add(e.cfg.AntiSnipeWindow)
	a.ExtensionCount++
	a.Phase = model.PhaseExtended

	e.pub.Publish(events.Event{
		AuctionID: a.AuctionID,
		Type:      events.EventAuctionExtended,
		Payload: map[string]any{
			"deadline":        a.Deadline,
			"extension_count": a.ExtensionCount,
		},
		At: now,
	})
}

// SweepDeadlines activates due scheduled auctions and closes auctions
// whose deadline has passed. It acquires each auction's lock, so a bid
// racing the sweep is either accepted before closure or rejected as
// stale - never both. Returns the number of auctions closed.
func (e *Engine) SweepDeadlines() int {
	closed := 0
	for _, snapshot := range e.store.ListAuctions() {
		if snapshot.Phase != model.PhaseScheduled && !snapshot.Phase.BiddingOpen() {
			continue
		}

		unlock := e.locks.lock(snapshot.AuctionID)
		a, err := e.store.GetAuction(snapshot.AuctionID)
		if err != nil {
			unlock()
			continue
		}
		wasOpen := a.Phase == model.PhaseScheduled || a.Phase.BiddingOpen()
		e.progressLocked(&a, e.clk.Now())
		if wasOpen && a.Phase.Closed() {
			closed++
		}
		unlock()
	}
	return closed
}

// CompleteSettlement reflects an escrow outcome on the auction phase.
// Called by the escrow engine once a record reaches Released, Disputed or
// Refunded.
func (e *Engine) CompleteSettlement(auctionID string, phase model.AuctionPhase) error {
	unlock := e.locks.lock(auctionID)
	defer unlock()

	a, err := e.store.GetAuction(auctionID)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	switch a.Phase {
	case model.PhaseClosedSold, model.PhaseSettlementPending, model.PhaseDisputed:
		a.Phase = phase
	case phase:
		return nil // already there, settlement retries are no-ops
	default:
		return fmt.Errorf("engine: %w - cannot settle from phase %s", auctionerrors.ErrStaleAuction, a.Phase)
	}

	if err := e.store.UpdateAuction(a); err != nil {
		return fmt.Errorf("engine: failed to update auction: %w", err)
	}
	return nil
}

// ReopenAfterCaptureFailure is the single compensating transition in the
// auction lifecycle: when the payment collaborator cannot capture the
// winner's funds, the sold auction goes back to Active with the failed
// bidder's standing max invalidated and the next-highest ceiling
// promoted. The reopened auction gets at least one anti-snipe window of
// fresh bidding time; the deadline still never decreases.
func (e *Engine) ReopenAfterCaptureFailure(auctionID, failedBidderID string) error {
	unlock := e.locks.lock(auctionID)
	defer unlock()

	a, err := e.store.GetAuction(auctionID)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if a.Phase != model.PhaseClosedSold && a.Phase != model.PhaseSettlementPending {
		return fmt.Errorf("engine: %w - cannot reopen from phase %s", auctionerrors.ErrStaleAuction, a.Phase)
	}

	if err := e.store.RemoveStandingMax(auctionID, failedBidderID); err != nil {
		return fmt.Errorf("engine: failed to invalidate standing max: %w", err)
	}

	now := e.clk.Now()
	maxes, err := e.store.StandingMaxes(auctionID)
	if err != nil {
		return fmt.Errorf("engine: failed to load standing maxes: %w", err)
	}

	if len(maxes) == 0 {
		a.WinnerID = ""
		a.CurrentPrice = a.StartingPrice
	} else {
		winner, price := resolveOutcome(maxes, a.StartingPrice, a.MinIncrement)
		a.WinnerID = winner.BidderID
		a.CurrentPrice = price
	}

	a.Phase = model.PhaseActive
	if d := now.Add(e.cfg.AntiSnipeWindow); d.After(a.Deadline) {
		a.Deadline = d
	}

	if a.WinnerID != "" {
		if err := e.appendClearingBid(&a, now); err != nil {
			return err
		}
	}
	if err := e.store.UpdateAuction(a); err != nil {
		return fmt.Errorf("engine: failed to update auction: %w", err)
	}

	e.pub.Publish(events.Event{
		AuctionID: a.AuctionID,
		Type:      events.EventAuctionReopened,
		Payload: map[string]any{
			"failed_bidder_id": failedBidderID,
			"deadline":         a.Deadline,
		},
		At: now,
	})
	e.publishPriceChanged(a)
	return nil
}
