package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrEscrowNotFound  = errors.New("escrow record not found")
	ErrEscrowExists    = errors.New("auction already has a live escrow record")
)

// Bidding errors
var (
	ErrInvalidAuction       = errors.New("invalid auction parameters")
	ErrInvalidBid           = errors.New("invalid bid")
	ErrBidTooLow            = errors.New("bid amount too low")
	ErrMaxBidCannotDecrease = errors.New("standing max bid cannot be lowered")
	ErrAuctionNotOpen       = errors.New("auction has not started")
	ErrStaleAuction         = errors.New("auction already closed")
	ErrAuctionHasBids       = errors.New("auction has accepted bids and cannot be cancelled")
)

// Escrow errors
var (
	ErrEscrowAlreadyTerminal = errors.New("escrow record is in a terminal state")
	ErrEscrowNotHeld         = errors.New("escrow funds are not held yet")
	ErrEscrowNotDisputed     = errors.New("escrow record is not under dispute")
	ErrNotBuyer              = errors.New("caller is not the escrow buyer")
	ErrCaptureFailed         = errors.New("payment capture failed")
	ErrDisputeWindowExpired  = errors.New("dispute window has expired")
)
