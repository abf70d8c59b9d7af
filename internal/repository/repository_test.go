package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bookbid/internal/auctionerrors"
	model "bookbid/internal/models"

	"github.com/stretchr/testify/require"
)

func seedAuction(t *testing.T, s *MemoryStore, id string) model.Auction {
	t.Helper()
	a := model.Auction{
		AuctionID:     id,
		SellerID:      "seller1",
		StartingPrice: 500,
		MinIncrement:  50,
		Phase:         model.PhaseActive,
		CurrentPrice:  500,
		CreatedAt:     time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.AddAuction(a))
	return a
}

func TestAddAuction_DuplicateID(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	err := s.AddAuction(model.Auction{AuctionID: "a1"})
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidAuction))
}

func TestGetAuction_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetAuction("missing")
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))

	err = s.UpdateAuction(model.Auction{AuctionID: "missing"})
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}

func TestAppendBid_AssignsMonotonicSequences(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	for i := 1; i <= 5; i++ {
		bid, err := s.AppendBid(model.Bid{
			BidID:       fmt.Sprintf("b%d", i),
			AuctionID:   "a1",
			BidderID:    "A",
			Amount:      int64(500 + 50*i),
			DeclaredMax: int64(500 + 50*i),
		})
		require.NoError(t, err)
		require.Equal(t, uint64(i), bid.Sequence)
	}

	bids, err := s.GetBidsByAuction("a1")
	require.NoError(t, err)
	require.Len(t, bids, 5)
	for i, b := range bids {
		require.Equal(t, uint64(i+1), b.Sequence)
	}
}

func TestAppendBid_UnknownAuction(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.AppendBid(model.Bid{BidID: "b1", AuctionID: "missing", BidderID: "A"})
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}

// The standing-max cache only moves up: a later bid with a lower declared
// max leaves the recorded ceiling (and its commitment sequence) alone.
func TestAppendBid_StandingMaxRaiseOnly(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	_, err := s.AppendBid(model.Bid{BidID: "b1", AuctionID: "a1", BidderID: "A", Amount: 500, DeclaredMax: 900})
	require.NoError(t, err)
	_, err = s.AppendBid(model.Bid{BidID: "b2", AuctionID: "a1", BidderID: "A", Amount: 600, DeclaredMax: 600})
	require.NoError(t, err)

	maxes, err := s.StandingMaxes("a1")
	require.NoError(t, err)
	require.Len(t, maxes, 1)
	require.Equal(t, int64(900), maxes[0].Max)
	require.Equal(t, uint64(1), maxes[0].Sequence)

	// a genuine raise replaces the ceiling and stamps the new sequence
	_, err = s.AppendBid(model.Bid{BidID: "b3", AuctionID: "a1", BidderID: "A", Amount: 600, DeclaredMax: 1000})
	require.NoError(t, err)

	maxes, err = s.StandingMaxes("a1")
	require.NoError(t, err)
	require.Equal(t, int64(1000), maxes[0].Max)
	require.Equal(t, uint64(3), maxes[0].Sequence)
}

func TestStandingMaxes_Order(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	_, err := s.AppendBid(model.Bid{BidID: "b1", AuctionID: "a1", BidderID: "A", Amount: 500, DeclaredMax: 900})
	require.NoError(t, err)
	_, err = s.AppendBid(model.Bid{BidID: "b2", AuctionID: "a1", BidderID: "B", Amount: 500, DeclaredMax: 900})
	require.NoError(t, err)
	_, err = s.AppendBid(model.Bid{BidID: "b3", AuctionID: "a1", BidderID: "C", Amount: 500, DeclaredMax: 950})
	require.NoError(t, err)

	maxes, err := s.StandingMaxes("a1")
	require.NoError(t, err)
	require.Len(t, maxes, 3)
	require.Equal(t, "C", maxes[0].BidderID, "highest ceiling first")
	require.Equal(t, "A", maxes[1].BidderID, "earliest sequence first among equals")
	require.Equal(t, "B", maxes[2].BidderID)
}

func TestRemoveStandingMax(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	_, err := s.AppendBid(model.Bid{BidID: "b1", AuctionID: "a1", BidderID: "A", Amount: 500, DeclaredMax: 900})
	require.NoError(t, err)

	require.NoError(t, s.RemoveStandingMax("a1", "A"))
	maxes, err := s.StandingMaxes("a1")
	require.NoError(t, err)
	require.Empty(t, maxes)

	// the ledger is untouched: bids are never removed
	bids, err := s.GetBidsByAuction("a1")
	require.NoError(t, err)
	require.Len(t, bids, 1)

	require.True(t, errors.Is(s.RemoveStandingMax("missing", "A"), auctionerrors.ErrAuctionNotFound))
}

func TestAddEscrow_OneNonTerminalPerAuction(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	first := model.EscrowRecord{EscrowID: "e1", AuctionID: "a1", State: model.EscrowAuthorized}
	require.NoError(t, s.AddEscrow(first))

	err := s.AddEscrow(model.EscrowRecord{EscrowID: "e2", AuctionID: "a1", State: model.EscrowAuthorized})
	require.True(t, errors.Is(err, auctionerrors.ErrEscrowExists))

	// once the first record is terminal a replacement is allowed
	first.State = model.EscrowFailed
	require.NoError(t, s.UpdateEscrow(first))
	require.NoError(t, s.AddEscrow(model.EscrowRecord{EscrowID: "e2", AuctionID: "a1", State: model.EscrowAuthorized}))
}

func TestGetEscrowByAuction_PrefersNonTerminal(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AddEscrow(model.EscrowRecord{
		EscrowID: "e1", AuctionID: "a1", State: model.EscrowFailed, CreatedAt: base,
	}))
	require.NoError(t, s.AddEscrow(model.EscrowRecord{
		EscrowID: "e2", AuctionID: "a1", State: model.EscrowHeldInEscrow, CreatedAt: base.Add(time.Minute),
	}))

	rec, err := s.GetEscrowByAuction("a1")
	require.NoError(t, err)
	require.Equal(t, "e2", rec.EscrowID)

	_, err = s.GetEscrowByAuction("missing")
	require.True(t, errors.Is(err, auctionerrors.ErrEscrowNotFound))
}

func TestGetEscrowByAuction_AllTerminalReturnsLatest(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AddEscrow(model.EscrowRecord{
		EscrowID: "e1", AuctionID: "a1", State: model.EscrowFailed, CreatedAt: base,
	}))
	require.NoError(t, s.AddEscrow(model.EscrowRecord{
		EscrowID: "e2", AuctionID: "a1", State: model.EscrowReleased, CreatedAt: base.Add(time.Minute),
	}))

	rec, err := s.GetEscrowByAuction("a1")
	require.NoError(t, err)
	require.Equal(t, "e2", rec.EscrowID)
}

// Reads hand out snapshots: mutating a returned value must not leak back
// into the store.
func TestSnapshotIsolation(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")
	_, err := s.AppendBid(model.Bid{BidID: "b1", AuctionID: "a1", BidderID: "A", Amount: 500, DeclaredMax: 900})
	require.NoError(t, err)

	bids, err := s.GetBidsByAuction("a1")
	require.NoError(t, err)
	bids[0].Amount = 1

	bids, err = s.GetBidsByAuction("a1")
	require.NoError(t, err)
	require.Equal(t, int64(500), bids[0].Amount)

	auctions := s.ListAuctions()
	auctions[0].CurrentPrice = 1

	got, err := s.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, int64(500), got.CurrentPrice)
}

func TestAppendBid_ConcurrentAppendsKeepLedgerConsistent(t *testing.T) {
	s := NewMemoryStore()
	seedAuction(t, s, "a1")

	const writers = 8
	const perWriter = 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := s.AppendBid(model.Bid{
					BidID:       fmt.Sprintf("w%d_b%d", w, i),
					AuctionID:   "a1",
					BidderID:    fmt.Sprintf("bidder_%d", w),
					Amount:      600,
					DeclaredMax: 600,
				})
				require.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	bids, err := s.GetBidsByAuction("a1")
	require.NoError(t, err)
	require.Len(t, bids, writers*perWriter)
	for i, b := range bids {
		require.Equal(t, uint64(i+1), b.Sequence)
	}
}
