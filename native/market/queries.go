package market

import "math/big"

// Pagination cursors. Every cursor is an exclusive start bound; a nil cursor
// starts from the beginning of the range.

// CollectionOffset resumes a scan after a (collection, token id) pair.
type CollectionOffset struct {
	Collection string
	TokenID    string
}

// CollectionOffsetBid resumes a seller-indexed bid scan.
type CollectionOffsetBid struct {
	Collection string
	TokenID    string
	Bidder     string
}

// CollectionBidOffset resumes an expiry-sorted collection-bid scan; it names
// the bid whose stored expiry seeds the bound.
type CollectionBidOffset struct {
	Collection string
	Bidder     string
}

// SaleHistoryOffset resumes a collection sale-history scan.
type SaleHistoryOffset struct {
	TokenID string
	Time    uint64
}

// SaleHistoryUserOffset resumes a buyer- or seller-indexed sale-history scan.
type SaleHistoryUserOffset struct {
	Collection string
	TokenID    string
	Time       uint64
}

// The read-only query surface. Queries never mutate state; absence is
// reported through the boolean, not an error.

func (e *Engine) GetConfig() (*Config, error) {
	return e.config()
}

func (e *Engine) GetCollection(collection string) (*CollectionConfig, bool, error) {
	return e.store.getCollection(collection)
}

func (e *Engine) GetMembers(collection string) ([]RoyaltyMember, bool, error) {
	return e.store.getMembers(collection)
}

func (e *Engine) GetAsk(collection, tokenID string) (*Ask, bool, error) {
	return e.store.getAsk(collection, tokenID)
}

func (e *Engine) Asks(collection, startAfterToken string, limit uint32) ([]*Ask, error) {
	return e.store.asksByCollection(collection, startAfterToken, limit)
}

func (e *Engine) ReverseAsks(collection, startBeforeToken string, limit uint32) ([]*Ask, error) {
	return e.store.reverseAsksByCollection(collection, startBeforeToken, limit)
}

func (e *Engine) AskCount(collection string) (int, error) {
	return e.store.askCount(collection)
}

func (e *Engine) AsksBySeller(seller string, startAfter *CollectionOffset, limit uint32) ([]*Ask, error) {
	return e.store.asksBySeller(seller, startAfter, limit)
}

func (e *Engine) GetBid(collection, tokenID, bidder string) (*Bid, bool, error) {
	return e.store.getBid(collection, tokenID, bidder)
}

func (e *Engine) Bids(collection, tokenID, startAfterBidder string, limit uint32) ([]*Bid, error) {
	return e.store.bidsForItem(collection, tokenID, startAfterBidder, limit)
}

func (e *Engine) BidsByBidder(bidder string, startAfter *CollectionOffset, limit uint32) ([]*Bid, error) {
	return e.store.bidsByBidder(bidder, startAfter, limit)
}

func (e *Engine) BidsBySeller(seller string, startAfter *CollectionOffsetBid, limit uint32) ([]*Bid, error) {
	return e.store.bidsBySeller(seller, startAfter, limit)
}

func (e *Engine) BidsByBidderSortedByExpiry(bidder string, startAfter *CollectionOffset, limit uint32) ([]*Bid, error) {
	return e.store.bidsByBidderExpiry(bidder, startAfter, limit)
}

func (e *Engine) GetCollectionBid(collection, bidder string) (*CollectionBid, bool, error) {
	return e.store.getCollectionBid(collection, bidder)
}

func (e *Engine) CollectionBidsByCollection(collection, startAfterBidder string, limit uint32) ([]*CollectionBid, error) {
	return e.store.collectionBidsByCollection(collection, startAfterBidder, limit)
}

func (e *Engine) CollectionBidsByBidder(bidder, startAfterCollection string, limit uint32) ([]*CollectionBid, error) {
	return e.store.collectionBidsByBidder(bidder, startAfterCollection, limit)
}

func (e *Engine) CollectionBidsByBidderSortedByExpiry(bidder string, startAfter *CollectionBidOffset, limit uint32) ([]*CollectionBid, error) {
	return e.store.collectionBidsByBidderExpiry(bidder, startAfter, limit)
}

func (e *Engine) SaleHistoryByCollection(collection string, startAfter *SaleHistoryOffset, limit uint32) ([]*SaleRecord, error) {
	return e.store.salesByCollection(collection, startAfter, limit)
}

func (e *Engine) SaleHistoryByItem(collection, tokenID string, startAfterTime uint64, limit uint32) ([]*SaleRecord, error) {
	return e.store.salesByItem(collection, tokenID, startAfterTime, limit)
}

func (e *Engine) SaleHistoryByBuyer(buyer string, startAfter *SaleHistoryUserOffset, limit uint32) ([]*SaleRecord, error) {
	return e.store.salesByBuyer(buyer, startAfter, limit)
}

func (e *Engine) SaleHistoryBySeller(seller string, startAfter *SaleHistoryUserOffset, limit uint32) ([]*SaleRecord, error) {
	return e.store.salesBySeller(seller, startAfter, limit)
}

func (e *Engine) TvlByCollection(collection, startAfterDenom string, limit uint32) ([]*TvlRecord, error) {
	return e.store.tvlByCollection(collection, startAfterDenom, limit)
}

func (e *Engine) TvlByDenom(denom, startAfterCollection string, limit uint32) ([]*TvlRecord, error) {
	return e.store.tvlByDenom(denom, startAfterCollection, limit)
}

// Tvl returns the aggregate for one (collection, denom) pair, zero when
// nothing has settled yet.
func (e *Engine) Tvl(collection, denom string) (*TvlRecord, error) {
	rec, ok, err := e.store.getTvl(collection, denom)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &TvlRecord{Collection: collection, Denom: denom, Amount: big.NewInt(0)}, nil
	}
	return rec, nil
}
