package market

import "errors"

// Every failure aborts the whole call: no state is committed and no
// instructions are emitted. Storage failures are propagated unchanged.
var (
	// ErrUnauthorized indicates the caller is not the required principal.
	ErrUnauthorized = errors.New("market: unauthorized")
	// ErrUnknownCollection indicates the collection has no registered config.
	ErrUnknownCollection = errors.New("market: unknown collection")
	// ErrUnknownDenom indicates the denomination is not a registered coin.
	ErrUnknownDenom = errors.New("market: unknown denom")
	// ErrTokenDenomMismatch indicates the token contract is unregistered or
	// registered under a different denomination than the one supplied.
	ErrTokenDenomMismatch = errors.New("market: token denom mismatch")
	// ErrNoSuchAsk indicates no active ask exists for the item.
	ErrNoSuchAsk = errors.New("market: no such ask")
	// ErrAskExpired indicates the ask's expiry has passed.
	ErrAskExpired = errors.New("market: ask expired")
	// ErrBidExpired indicates the bid's expiry has passed.
	ErrBidExpired = errors.New("market: bid expired")
	// ErrBidCountExceeded indicates the item already carries bidLimit bids.
	ErrBidCountExceeded = errors.New("market: bid count exceeded")
	// ErrNotEnoughFunds indicates the presented amount or denomination does
	// not match what the call requires.
	ErrNotEnoughFunds = errors.New("market: not enough funds")
	// ErrTooMuchFunds indicates payment was attached to a non-payable call.
	ErrTooMuchFunds = errors.New("market: too much funds")
	// ErrWrongPortion indicates royalty member portions do not sum to one.
	ErrWrongPortion = errors.New("market: royalty portions do not sum to one")
	// ErrWrongConfig indicates a structurally inconsistent request, such as a
	// token id supplied where none is expected.
	ErrWrongConfig = errors.New("market: wrong config")
	// ErrNotFound indicates the referenced bid or record does not exist.
	ErrNotFound = errors.New("market: not found")
)
