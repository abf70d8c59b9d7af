package repository

import (
	"fmt"
	"sort"
	"sync"

	"bookbid/internal/auctionerrors"
	model "bookbid/internal/models"
)

// AuctionStore defines the storage interface for auctions, bid ledgers and
// escrow records
type AuctionStore interface {
	AddAuction(a model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	UpdateAuction(a model.Auction) error
	ListAuctions() []model.Auction

	AppendBid(bid model.Bid) (model.Bid, error)
	GetBidsByAuction(auctionID string) ([]model.Bid, error)
	StandingMaxes(auctionID string) ([]model.StandingMax, error)
	RemoveStandingMax(auctionID, bidderID string) error

	AddEscrow(rec model.EscrowRecord) error
	GetEscrow(escrowID string) (model.EscrowRecord, error)
	GetEscrowByAuction(auctionID string) (model.EscrowRecord, error)
	UpdateEscrow(rec model.EscrowRecord) error
	ListEscrows() []model.EscrowRecord
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore
type MemoryStore struct {
	mu        sync.RWMutex
	auctions  map[string]model.Auction                // key: auctionID
	ledgers   map[string][]model.Bid                  // key: auctionID -> append-only bid ledger
	sequences map[string]uint64                       // key: auctionID -> last assigned sequence number
	standing  map[string]map[string]model.StandingMax // key: auctionID -> bidderID -> live max
	escrows   map[string]model.EscrowRecord           // key: escrowID
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions:  make(map[string]model.Auction),
		ledgers:   make(map[string][]model.Bid),
		sequences: make(map[string]uint64),
		standing:  make(map[string]map[string]model.StandingMax),
		escrows:   make(map[string]model.EscrowRecord),
	}
}

// AddAuction stores a newly created auction
func (s *MemoryStore) AddAuction(a model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[a.AuctionID]; ok {
		return fmt.Errorf("add auction %s: %w", a.AuctionID, auctionerrors.ErrInvalidAuction)
	}
	s.auctions[a.AuctionID] = a
	return nil
}

// GetAuction returns a snapshot of one auction
func (s *MemoryStore) GetAuction(auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// UpdateAuction overwrites the stored auction record
func (s *MemoryStore) UpdateAuction(a model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[a.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", a.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	s.auctions[a.AuctionID] = a
	return nil
}

// ListAuctions returns a snapshot of all auctions
func (s *MemoryStore) ListAuctions() []model.Auction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AuctionID < out[j].AuctionID })
	return out
}

// AppendBid assigns the next sequence number, appends the bid to the
// auction's ledger and maintains the standing-max cache. A bid is never
// mutated or removed after this point.
func (s *MemoryStore) AppendBid(bid model.Bid) (model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[bid.AuctionID]; !ok {
		return model.Bid{}, fmt.Errorf("append bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	seq := s.sequences[bid.AuctionID] + 1
	if ledger := s.ledgers[bid.AuctionID]; len(ledger) > 0 && ledger[len(ledger)-1].Sequence >= seq {
		// A collision here means the ledger invariant is broken; continuing
		// would corrupt ordering for every later bid.
		panic(fmt.Sprintf("sequence collision on auction %s: next=%d last=%d",
			bid.AuctionID, seq, ledger[len(ledger)-1].Sequence))
	}
	s.sequences[bid.AuctionID] = seq
	bid.Sequence = seq
	s.ledgers[bid.AuctionID] = append(s.ledgers[bid.AuctionID], bid)

	maxes, ok := s.standing[bid.AuctionID]
	if !ok {
		maxes = make(map[string]model.StandingMax)
		s.standing[bid.AuctionID] = maxes
	}
	if cur, ok := maxes[bid.BidderID]; !ok || bid.DeclaredMax > cur.Max {
		maxes[bid.BidderID] = model.StandingMax{
			BidderID: bid.BidderID,
			Max:      bid.DeclaredMax,
			Sequence: seq,
		}
	}

	return bid, nil
}

// GetBidsByAuction returns the full ledger for an auction in sequence order
func (s *MemoryStore) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return append([]model.Bid(nil), s.ledgers[auctionID]...), nil
}

// StandingMaxes returns the live proxy ceilings for an auction, highest
// max first and earliest sequence first among equals
func (s *MemoryStore) StandingMaxes(auctionID string) ([]model.StandingMax, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get standing maxes for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	out := make([]model.StandingMax, 0, len(s.standing[auctionID]))
	for _, sm := range s.standing[auctionID] {
		out = append(out, sm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Max != out[j].Max {
			return out[i].Max > out[j].Max
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

// RemoveStandingMax invalidates one bidder's live ceiling. Used only by
// the capture-failure compensation path.
func (s *MemoryStore) RemoveStandingMax(auctionID, bidderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return fmt.Errorf("remove standing max for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	delete(s.standing[auctionID], bidderID)
	return nil
}

// AddEscrow stores a new escrow record, enforcing that at most one
// non-terminal record exists per auction
func (s *MemoryStore) AddEscrow(rec model.EscrowRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.escrows {
		if existing.AuctionID == rec.AuctionID && !existing.State.Terminal() {
			return fmt.Errorf("add escrow for auction %s: %w", rec.AuctionID, auctionerrors.ErrEscrowExists)
		}
	}
	s.escrows[rec.EscrowID] = rec
	return nil
}

// GetEscrow returns a snapshot of one escrow record
func (s *MemoryStore) GetEscrow(escrowID string) (model.EscrowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.escrows[escrowID]
	if !ok {
		return model.EscrowRecord{}, fmt.Errorf("get escrow %s: %w", escrowID, auctionerrors.ErrEscrowNotFound)
	}
	return rec, nil
}

// GetEscrowByAuction returns the most recent escrow record for an auction,
// preferring the non-terminal one if it exists
func (s *MemoryStore) GetEscrowByAuction(auctionID string) (model.EscrowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found model.EscrowRecord
	var ok bool
	for _, rec := range s.escrows {
		if rec.AuctionID != auctionID {
			continue
		}
		if !rec.State.Terminal() {
			return rec, nil
		}
		if !ok || rec.CreatedAt.After(found.CreatedAt) {
			found = rec
			ok = true
		}
	}
	if !ok {
		return model.EscrowRecord{}, fmt.Errorf("get escrow for auction %s: %w", auctionID, auctionerrors.ErrEscrowNotFound)
	}
	return found, nil
}

// UpdateEscrow overwrites the stored escrow record
func (s *MemoryStore) UpdateEscrow(rec model.EscrowRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.escrows[rec.EscrowID]; !ok {
		return fmt.Errorf("update escrow %s: %w", rec.EscrowID, auctionerrors.ErrEscrowNotFound)
	}
	s.escrows[rec.EscrowID] = rec
	return nil
}

// ListEscrows returns a snapshot of all escrow records
func (s *MemoryStore) ListEscrows() []model.EscrowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.EscrowRecord, 0, len(s.escrows))
	for _, rec := range s.escrows {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EscrowID < out[j].EscrowID })
	return out
}
