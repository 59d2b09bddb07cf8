package market

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"hopemarket/storage"
)

// Page sizes for every range query. Callers asking for more than the ceiling
// are silently clamped; zero means the default.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 30
)

func clampLimit(limit uint32) int {
	if limit == 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return int(limit)
}

// Store is the indexed record store for the marketplace. Every mutating
// helper stages its primary write together with its index rows into the same
// batch, so index maintenance commits or fails with the record itself.
type Store struct {
	db storage.Database
}

// NewStore wraps a key-value database.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) get(key []byte, out interface{}) (bool, error) {
	raw, ok, err := s.db.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("market store: decode %q: %w", key, err)
	}
	return true, nil
}

func put(b *storage.Batch, key []byte, value interface{}) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("market store: encode %q: %w", key, err)
	}
	b.Put(key, raw)
	return nil
}

// scan walks keys under prefix in the requested direction, skipping past the
// exclusive start bound, and hands each entry to fn until fn returns false or
// limit entries have been visited. A limit <= 0 means unbounded.
func (s *Store) scan(prefix, start []byte, reverse bool, limit int, fn func(key, value []byte) (bool, error)) error {
	it := s.db.NewIterator(prefix, reverse)
	defer it.Release()
	seen := 0
	for it.Next() {
		key := it.Key()
		if len(start) > 0 {
			if !reverse && bytes.Compare(key, start) <= 0 {
				continue
			}
			if reverse && bytes.Compare(key, start) >= 0 {
				continue
			}
		}
		ok, err := fn(key, it.Value())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
	return nil
}

// --- config singleton ---

func (s *Store) getConfig() (*Config, bool, error) {
	cfg := new(Config)
	ok, err := s.get(configKey, cfg)
	if err != nil || !ok {
		return nil, ok, err
	}
	return cfg, true, nil
}

func (s *Store) setConfig(b *storage.Batch, cfg *Config) error {
	return put(b, configKey, cfg)
}

// --- registries ---

func (s *Store) getCollection(collection string) (*CollectionConfig, bool, error) {
	cfg := new(CollectionConfig)
	ok, err := s.get(collectionKey(collection), cfg)
	if err != nil || !ok {
		return nil, ok, err
	}
	return cfg, true, nil
}

func (s *Store) setCollection(b *storage.Batch, cfg *CollectionConfig) error {
	return put(b, collectionKey(cfg.Collection), cfg)
}

func (s *Store) getMembers(collection string) ([]RoyaltyMember, bool, error) {
	var members []RoyaltyMember
	ok, err := s.get(memberKey(collection), &members)
	if err != nil || !ok {
		return nil, ok, err
	}
	return members, true, nil
}

func (s *Store) setMembers(b *storage.Batch, collection string, members []RoyaltyMember) error {
	return put(b, memberKey(collection), members)
}

func (s *Store) tokenDenom(address string) (string, bool, error) {
	var denom string
	ok, err := s.get(tokenContractKey(address), &denom)
	if err != nil || !ok {
		return "", ok, err
	}
	return denom, true, nil
}

func (s *Store) setTokenDenom(b *storage.Batch, address, denom string) error {
	return put(b, tokenContractKey(address), denom)
}

func (s *Store) hasCoinDenom(denom string) (bool, error) {
	var registered bool
	ok, err := s.get(coinDenomKey(denom), &registered)
	if err != nil {
		return false, err
	}
	return ok && registered, nil
}

func (s *Store) setCoinDenom(b *storage.Batch, denom string) error {
	return put(b, coinDenomKey(denom), true)
}

// --- asks ---

func (s *Store) getAsk(collection, tokenID string) (*Ask, bool, error) {
	ask := new(Ask)
	ok, err := s.get(askKey(collection, tokenID), ask)
	if err != nil || !ok {
		return nil, ok, err
	}
	return ask, true, nil
}

// setAsk upserts an ask, replacing the seller index row when the previous
// listing for the item belonged to another seller.
func (s *Store) setAsk(b *storage.Batch, ask *Ask) error {
	prev, ok, err := s.getAsk(ask.Collection, ask.TokenID)
	if err != nil {
		return err
	}
	if ok && prev.Seller != ask.Seller {
		b.Delete(askSellerIdxKey(prev.Seller, prev.Collection, prev.TokenID))
	}
	primary := askKey(ask.Collection, ask.TokenID)
	if err := put(b, primary, ask); err != nil {
		return err
	}
	b.Put(askSellerIdxKey(ask.Seller, ask.Collection, ask.TokenID), primary)
	return nil
}

func (s *Store) removeAsk(b *storage.Batch, ask *Ask) {
	b.Delete(askKey(ask.Collection, ask.TokenID))
	b.Delete(askSellerIdxKey(ask.Seller, ask.Collection, ask.TokenID))
}

func (s *Store) asksByCollection(collection, startAfterToken string, limit uint32) ([]*Ask, error) {
	var start []byte
	if startAfterToken != "" {
		start = askKey(collection, startAfterToken)
	}
	return s.collectAsks(askCollectionScanPrefix(collection), start, false, clampLimit(limit))
}

// reverseAsksByCollection walks descending token-id order. An empty
// startBeforeToken means "from the end".
func (s *Store) reverseAsksByCollection(collection, startBeforeToken string, limit uint32) ([]*Ask, error) {
	var start []byte
	if startBeforeToken != "" {
		start = askKey(collection, startBeforeToken)
	}
	return s.collectAsks(askCollectionScanPrefix(collection), start, true, clampLimit(limit))
}

func (s *Store) collectAsks(prefix, start []byte, reverse bool, limit int) ([]*Ask, error) {
	asks := make([]*Ask, 0, limit)
	err := s.scan(prefix, start, reverse, limit, func(_, value []byte) (bool, error) {
		ask := new(Ask)
		if err := rlp.DecodeBytes(value, ask); err != nil {
			return false, err
		}
		asks = append(asks, ask)
		return true, nil
	})
	return asks, err
}

func (s *Store) askCount(collection string) (int, error) {
	count := 0
	err := s.scan(askCollectionScanPrefix(collection), nil, false, 0, func(_, _ []byte) (bool, error) {
		count++
		return true, nil
	})
	return count, err
}

func (s *Store) asksBySeller(seller string, startAfter *CollectionOffset, limit uint32) ([]*Ask, error) {
	var start []byte
	if startAfter != nil {
		start = askSellerIdxKey(seller, startAfter.Collection, startAfter.TokenID)
	}
	asks := make([]*Ask, 0)
	err := s.scan(joinKey(askSellerIdxPrefix, seller, ""), start, false, clampLimit(limit), func(_, primary []byte) (bool, error) {
		ask := new(Ask)
		ok, err := s.get(primary, ask)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("market store: dangling ask index %q", primary)
		}
		asks = append(asks, ask)
		return true, nil
	})
	return asks, err
}

// --- bids ---

func (s *Store) getBid(collection, tokenID, bidder string) (*Bid, bool, error) {
	bid := new(Bid)
	ok, err := s.get(bidKey(collection, tokenID, bidder), bid)
	if err != nil || !ok {
		return nil, ok, err
	}
	return bid, true, nil
}

func (s *Store) setBid(b *storage.Batch, bid *Bid) error {
	prev, ok, err := s.getBid(bid.Collection, bid.TokenID, bid.Bidder)
	if err != nil {
		return err
	}
	if ok {
		s.dropBidIndexes(b, prev)
	}
	primary := bidKey(bid.Collection, bid.TokenID, bid.Bidder)
	if err := put(b, primary, bid); err != nil {
		return err
	}
	b.Put(bidBidderIdxKey(bid.Bidder, bid.Collection, bid.TokenID), primary)
	b.Put(bidSellerIdxKey(bid.Seller, bid.Collection, bid.TokenID, bid.Bidder), primary)
	b.Put(bidExpiryIdxKey(bid.Bidder, bid.Expiry, bid.Collection, bid.TokenID), primary)
	return nil
}

func (s *Store) removeBid(b *storage.Batch, bid *Bid) {
	b.Delete(bidKey(bid.Collection, bid.TokenID, bid.Bidder))
	s.dropBidIndexes(b, bid)
}

func (s *Store) dropBidIndexes(b *storage.Batch, bid *Bid) {
	b.Delete(bidBidderIdxKey(bid.Bidder, bid.Collection, bid.TokenID))
	b.Delete(bidSellerIdxKey(bid.Seller, bid.Collection, bid.TokenID, bid.Bidder))
	b.Delete(bidExpiryIdxKey(bid.Bidder, bid.Expiry, bid.Collection, bid.TokenID))
}

// bidsForItem pages through an item's bids in ascending bidder order.
func (s *Store) bidsForItem(collection, tokenID, startAfterBidder string, limit uint32) ([]*Bid, error) {
	var start []byte
	if startAfterBidder != "" {
		start = bidKey(collection, tokenID, startAfterBidder)
	}
	return s.collectBids(bidItemScanPrefix(collection, tokenID), start, clampLimit(limit))
}

// allBidsForItem enumerates every bid on an item, in ascending bidder order.
// Settlement sweeps rely on this order for the emitted refund sequence.
func (s *Store) allBidsForItem(collection, tokenID string) ([]*Bid, error) {
	return s.collectBids(bidItemScanPrefix(collection, tokenID), nil, 0)
}

func (s *Store) collectBids(prefix, start []byte, limit int) ([]*Bid, error) {
	bids := make([]*Bid, 0)
	err := s.scan(prefix, start, false, limit, func(_, value []byte) (bool, error) {
		bid := new(Bid)
		if err := rlp.DecodeBytes(value, bid); err != nil {
			return false, err
		}
		bids = append(bids, bid)
		return true, nil
	})
	return bids, err
}

func (s *Store) collectBidsByIndex(prefix, start []byte, limit int) ([]*Bid, error) {
	bids := make([]*Bid, 0)
	err := s.scan(prefix, start, false, limit, func(_, primary []byte) (bool, error) {
		bid := new(Bid)
		ok, err := s.get(primary, bid)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("market store: dangling bid index %q", primary)
		}
		bids = append(bids, bid)
		return true, nil
	})
	return bids, err
}

func (s *Store) bidsByBidder(bidder string, startAfter *CollectionOffset, limit uint32) ([]*Bid, error) {
	var start []byte
	if startAfter != nil {
		start = bidBidderIdxKey(bidder, startAfter.Collection, startAfter.TokenID)
	}
	return s.collectBidsByIndex(joinKey(bidBidderIdxPrefix, bidder, ""), start, clampLimit(limit))
}

func (s *Store) bidsBySeller(seller string, startAfter *CollectionOffsetBid, limit uint32) ([]*Bid, error) {
	var start []byte
	if startAfter != nil {
		start = bidSellerIdxKey(seller, startAfter.Collection, startAfter.TokenID, startAfter.Bidder)
	}
	return s.collectBidsByIndex(joinKey(bidSellerIdxPrefix, seller, ""), start, clampLimit(limit))
}

// bidsByBidderExpiry orders a bidder's bids by expiry. The cursor names a bid
// whose stored expiry seeds the exclusive bound; a missing cursor bid starts
// from the beginning, mirroring the query contract.
func (s *Store) bidsByBidderExpiry(bidder string, startAfter *CollectionOffset, limit uint32) ([]*Bid, error) {
	var start []byte
	if startAfter != nil {
		anchor, ok, err := s.getBid(startAfter.Collection, startAfter.TokenID, bidder)
		if err != nil {
			return nil, err
		}
		if ok {
			start = bidExpiryIdxKey(bidder, anchor.Expiry, anchor.Collection, anchor.TokenID)
		}
	}
	return s.collectBidsByIndex(joinKey(bidExpiryIdxPrefix, bidder, ""), start, clampLimit(limit))
}

// --- collection bids ---

func (s *Store) getCollectionBid(collection, bidder string) (*CollectionBid, bool, error) {
	bid := new(CollectionBid)
	ok, err := s.get(collectionBidKey(collection, bidder), bid)
	if err != nil || !ok {
		return nil, ok, err
	}
	return bid, true, nil
}

func (s *Store) setCollectionBid(b *storage.Batch, bid *CollectionBid) error {
	prev, ok, err := s.getCollectionBid(bid.Collection, bid.Bidder)
	if err != nil {
		return err
	}
	if ok {
		s.dropCollectionBidIndexes(b, prev)
	}
	primary := collectionBidKey(bid.Collection, bid.Bidder)
	if err := put(b, primary, bid); err != nil {
		return err
	}
	b.Put(colBidBidderIdxKey(bid.Bidder, bid.Collection), primary)
	b.Put(colBidExpiryIdxKey(bid.Bidder, bid.Expiry, bid.Collection), primary)
	return nil
}

func (s *Store) removeCollectionBid(b *storage.Batch, bid *CollectionBid) {
	b.Delete(collectionBidKey(bid.Collection, bid.Bidder))
	s.dropCollectionBidIndexes(b, bid)
}

func (s *Store) dropCollectionBidIndexes(b *storage.Batch, bid *CollectionBid) {
	b.Delete(colBidBidderIdxKey(bid.Bidder, bid.Collection))
	b.Delete(colBidExpiryIdxKey(bid.Bidder, bid.Expiry, bid.Collection))
}

func (s *Store) collectionBidsByCollection(collection, startAfterBidder string, limit uint32) ([]*CollectionBid, error) {
	var start []byte
	if startAfterBidder != "" {
		start = collectionBidKey(collection, startAfterBidder)
	}
	bids := make([]*CollectionBid, 0)
	err := s.scan(collectionBidScanPrefix(collection), start, false, clampLimit(limit), func(_, value []byte) (bool, error) {
		bid := new(CollectionBid)
		if err := rlp.DecodeBytes(value, bid); err != nil {
			return false, err
		}
		bids = append(bids, bid)
		return true, nil
	})
	return bids, err
}

func (s *Store) collectCollectionBidsByIndex(prefix, start []byte, limit int) ([]*CollectionBid, error) {
	bids := make([]*CollectionBid, 0)
	err := s.scan(prefix, start, false, limit, func(_, primary []byte) (bool, error) {
		bid := new(CollectionBid)
		ok, err := s.get(primary, bid)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("market store: dangling collection bid index %q", primary)
		}
		bids = append(bids, bid)
		return true, nil
	})
	return bids, err
}

func (s *Store) collectionBidsByBidder(bidder, startAfterCollection string, limit uint32) ([]*CollectionBid, error) {
	var start []byte
	if startAfterCollection != "" {
		start = colBidBidderIdxKey(bidder, startAfterCollection)
	}
	return s.collectCollectionBidsByIndex(joinKey(colBidBidderIdxPrefix, bidder, ""), start, clampLimit(limit))
}

func (s *Store) collectionBidsByBidderExpiry(bidder string, startAfter *CollectionBidOffset, limit uint32) ([]*CollectionBid, error) {
	var start []byte
	if startAfter != nil {
		anchor, ok, err := s.getCollectionBid(startAfter.Collection, startAfter.Bidder)
		if err != nil {
			return nil, err
		}
		if ok {
			start = colBidExpiryIdxKey(bidder, anchor.Expiry, anchor.Collection)
		}
	}
	return s.collectCollectionBidsByIndex(joinKey(colBidExpiryIdxPrefix, bidder, ""), start, clampLimit(limit))
}

// --- sale history ---

func (s *Store) setSale(b *storage.Batch, sale *SaleRecord) error {
	primary := saleKey(sale.Collection, sale.TokenID, sale.Time)
	if err := put(b, primary, sale); err != nil {
		return err
	}
	b.Put(saleBuyerIdxKey(sale.To, sale.Collection, sale.TokenID, sale.Time), primary)
	b.Put(saleSellerIdxKey(sale.From, sale.Collection, sale.TokenID, sale.Time), primary)
	return nil
}

func (s *Store) collectSales(prefix, start []byte, limit int) ([]*SaleRecord, error) {
	sales := make([]*SaleRecord, 0)
	err := s.scan(prefix, start, false, limit, func(_, value []byte) (bool, error) {
		sale := new(SaleRecord)
		if err := rlp.DecodeBytes(value, sale); err != nil {
			return false, err
		}
		sales = append(sales, sale)
		return true, nil
	})
	return sales, err
}

func (s *Store) collectSalesByIndex(prefix, start []byte, limit int) ([]*SaleRecord, error) {
	sales := make([]*SaleRecord, 0)
	err := s.scan(prefix, start, false, limit, func(_, primary []byte) (bool, error) {
		sale := new(SaleRecord)
		ok, err := s.get(primary, sale)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("market store: dangling sale index %q", primary)
		}
		sales = append(sales, sale)
		return true, nil
	})
	return sales, err
}

func (s *Store) salesByCollection(collection string, startAfter *SaleHistoryOffset, limit uint32) ([]*SaleRecord, error) {
	var start []byte
	if startAfter != nil {
		start = saleKey(collection, startAfter.TokenID, startAfter.Time)
	}
	return s.collectSales(saleCollectionScanPrefix(collection), start, clampLimit(limit))
}

func (s *Store) salesByItem(collection, tokenID string, startAfterTime uint64, limit uint32) ([]*SaleRecord, error) {
	var start []byte
	if startAfterTime > 0 {
		start = saleKey(collection, tokenID, startAfterTime)
	}
	return s.collectSales(saleItemScanPrefix(collection, tokenID), start, clampLimit(limit))
}

func (s *Store) salesByBuyer(buyer string, startAfter *SaleHistoryUserOffset, limit uint32) ([]*SaleRecord, error) {
	var start []byte
	if startAfter != nil {
		start = saleBuyerIdxKey(buyer, startAfter.Collection, startAfter.TokenID, startAfter.Time)
	}
	return s.collectSalesByIndex(joinKey(saleBuyerIdxPrefix, buyer, ""), start, clampLimit(limit))
}

func (s *Store) salesBySeller(seller string, startAfter *SaleHistoryUserOffset, limit uint32) ([]*SaleRecord, error) {
	var start []byte
	if startAfter != nil {
		start = saleSellerIdxKey(seller, startAfter.Collection, startAfter.TokenID, startAfter.Time)
	}
	return s.collectSalesByIndex(joinKey(saleSellerIdxPrefix, seller, ""), start, clampLimit(limit))
}

// --- tvl ---

func (s *Store) getTvl(collection, denom string) (*TvlRecord, bool, error) {
	rec := new(TvlRecord)
	ok, err := s.get(tvlKey(collection, denom), rec)
	if err != nil || !ok {
		return nil, ok, err
	}
	return rec, true, nil
}

func (s *Store) setTvl(b *storage.Batch, rec *TvlRecord) error {
	primary := tvlKey(rec.Collection, rec.Denom)
	if err := put(b, primary, rec); err != nil {
		return err
	}
	b.Put(tvlDenomIdxKey(rec.Denom, rec.Collection), primary)
	return nil
}

func (s *Store) tvlByCollection(collection, startAfterDenom string, limit uint32) ([]*TvlRecord, error) {
	var start []byte
	if startAfterDenom != "" {
		start = tvlKey(collection, startAfterDenom)
	}
	recs := make([]*TvlRecord, 0)
	err := s.scan(tvlCollectionScanPrefix(collection), start, false, clampLimit(limit), func(_, value []byte) (bool, error) {
		rec := new(TvlRecord)
		if err := rlp.DecodeBytes(value, rec); err != nil {
			return false, err
		}
		recs = append(recs, rec)
		return true, nil
	})
	return recs, err
}

func (s *Store) tvlByDenom(denom, startAfterCollection string, limit uint32) ([]*TvlRecord, error) {
	var start []byte
	if startAfterCollection != "" {
		start = tvlDenomIdxKey(denom, startAfterCollection)
	}
	recs := make([]*TvlRecord, 0)
	err := s.scan(joinKey(tvlDenomIdxPrefix, denom, ""), start, false, clampLimit(limit), func(_, primary []byte) (bool, error) {
		rec := new(TvlRecord)
		ok, err := s.get(primary, rec)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("market store: dangling tvl index %q", primary)
		}
		recs = append(recs, rec)
		return true, nil
	})
	return recs, err
}
