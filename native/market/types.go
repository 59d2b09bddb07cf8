package market

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// SaleType selects how a funded purchase call is interpreted.
type SaleType string

const (
	SaleTypeFixedPrice    SaleType = "fixed_price"
	SaleTypeAuction       SaleType = "auction"
	SaleTypeCollectionBid SaleType = "collection_bid"
)

// Asset is a priced amount in a single denomination. Whether it is a native
// coin or a fungible-token balance is decided by the token contract attached
// to the surrounding record, not by the asset itself.
type Asset struct {
	Denom  string
	Amount *big.Int
}

// Copy returns a deep copy so callers cannot mutate stored amounts.
func (a Asset) Copy() Asset {
	out := Asset{Denom: a.Denom, Amount: big.NewInt(0)}
	if a.Amount != nil {
		out.Amount = new(big.Int).Set(a.Amount)
	}
	return out
}

// Order is implemented by every record that can lapse. Expiry is evaluated
// against a caller-supplied clock; lapsed records stay in storage until an
// operation removes them.
type Order interface {
	ExpiresAt() uint64
}

// expired treats expiresAt == now as already expired.
func expired(o Order, now int64) bool {
	if now < 0 {
		return true
	}
	return o.ExpiresAt() <= uint64(now)
}

// Ask is an active sale listing for one NFT. At most one ask exists per
// (collection, token id).
type Ask struct {
	Collection string
	TokenID    string
	Seller     string
	ListPrice  Asset
	Expiry     uint64
}

func (a *Ask) ExpiresAt() uint64 { return a.Expiry }

func (a *Ask) Copy() *Ask {
	if a == nil {
		return nil
	}
	clone := *a
	clone.ListPrice = a.ListPrice.Copy()
	return &clone
}

// Bid is a per-item offer, keyed (collection, token id, bidder). The seller
// field snapshots the ask's seller at bid time. An empty TokenContract means
// the bid escrowed native coins; otherwise it escrowed fungible tokens held
// by that contract.
type Bid struct {
	Collection    string
	TokenID       string
	Bidder        string
	ListPrice     Asset
	Expiry        uint64
	TokenContract string
	Seller        string
}

func (b *Bid) ExpiresAt() uint64 { return b.Expiry }

func (b *Bid) Copy() *Bid {
	if b == nil {
		return nil
	}
	clone := *b
	clone.ListPrice = b.ListPrice.Copy()
	return &clone
}

// CollectionBid is a standing offer on any item in a collection, keyed
// (collection, bidder).
type CollectionBid struct {
	Collection    string
	Bidder        string
	ListPrice     Asset
	Expiry        uint64
	TokenContract string
}

func (b *CollectionBid) ExpiresAt() uint64 { return b.Expiry }

func (b *CollectionBid) Copy() *CollectionBid {
	if b == nil {
		return nil
	}
	clone := *b
	clone.ListPrice = b.ListPrice.Copy()
	return &clone
}

// SaleRecord is an immutable entry of the settled-sale history, keyed
// (collection, token id, time).
type SaleRecord struct {
	Collection string
	TokenID    string
	From       string
	To         string
	Denom      string
	Amount     *big.Int
	Time       uint64
}

func (s *SaleRecord) Copy() *SaleRecord {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Amount != nil {
		clone.Amount = new(big.Int).Set(s.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// TvlRecord accumulates settled volume per (collection, denom). The amount
// only ever grows outside of privileged backfills.
type TvlRecord struct {
	Collection string
	Denom      string
	Amount     *big.Int
}

func (t *TvlRecord) Copy() *TvlRecord {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Amount != nil {
		clone.Amount = new(big.Int).Set(t.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// RoyaltyMember receives a share of the royalty cut. Portions are persisted
// as decimal strings because the record codec only handles unsigned values.
type RoyaltyMember struct {
	Address string
	Portion string
}

// PortionDecimal parses the stored portion.
func (m RoyaltyMember) PortionDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(m.Portion)
}

// CollectionConfig is the per-collection royalty configuration. Members are
// stored alongside it under their own key.
type CollectionConfig struct {
	Collection     string
	RoyaltyPortion string
}

// Royalty parses the stored royalty portion.
func (c CollectionConfig) Royalty() (decimal.Decimal, error) {
	return decimal.NewFromString(c.RoyaltyPortion)
}

// Config is the marketplace singleton. The owner performs privileged writes;
// the admin may rotate owner and admin.
type Config struct {
	Owner    string
	Admin    string
	BidLimit uint32
}

// DefaultBidLimit caps open bids per item until the owner overrides it.
const DefaultBidLimit uint32 = 10

// Offering is a restorable ask used by the privileged bulk-restore operation.
type Offering struct {
	TokenID   string
	Seller    string
	ListPrice Asset
}
