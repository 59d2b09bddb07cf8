package market

import (
	"math/big"

	"hopemarket/storage"
)

// PlaceBid handles a coin-funded purchase call. The presented funds must sum
// to exactly the stated list price in the price's denomination; coins in any
// other denomination are ignored. Auction and collection-bid sale types store
// an offer, the fixed-price sale type settles immediately.
func (e *Engine) PlaceBid(bidder, collection, tokenID string, saleType SaleType, listPrice Asset, expiresAt uint64, funds []Asset) ([]Instruction, error) {
	collectionCfg, err := e.requireCollection(collection)
	if err != nil {
		return nil, err
	}
	ok, err := e.store.hasCoinDenom(listPrice.Denom)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownDenom
	}
	if listPrice.Amount == nil {
		return nil, ErrWrongConfig
	}
	if paidAmount(funds, listPrice.Denom).Cmp(listPrice.Amount) != 0 {
		return nil, ErrNotEnoughFunds
	}
	return e.routeBid(collectionCfg, bidder, collection, tokenID, saleType, listPrice, expiresAt, "")
}

// PlaceTokenBid handles a token-funded purchase call. The caller must be a
// registered token contract; the transfer amount it reports becomes the bid
// amount under the contract's registered denomination.
func (e *Engine) PlaceTokenBid(bidder, tokenContract, collection, tokenID string, saleType SaleType, expiresAt uint64, amount *big.Int) ([]Instruction, error) {
	denom, ok, err := e.store.tokenDenom(tokenContract)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenDenomMismatch
	}
	collectionCfg, err := e.requireCollection(collection)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return nil, ErrWrongConfig
	}
	listPrice := Asset{Denom: denom, Amount: new(big.Int).Set(amount)}
	return e.routeBid(collectionCfg, bidder, collection, tokenID, saleType, listPrice, expiresAt, tokenContract)
}

func (e *Engine) routeBid(collectionCfg *CollectionConfig, bidder, collection, tokenID string, saleType SaleType, listPrice Asset, expiresAt uint64, tokenContract string) ([]Instruction, error) {
	switch saleType {
	case SaleTypeAuction:
		if tokenID == "" {
			return nil, ErrWrongConfig
		}
		return e.placeAuctionBid(bidder, collection, tokenID, listPrice, expiresAt, tokenContract)
	case SaleTypeCollectionBid:
		if tokenID != "" {
			return nil, ErrWrongConfig
		}
		return e.placeCollectionBid(bidder, collection, listPrice, expiresAt, tokenContract)
	case SaleTypeFixedPrice:
		if tokenID == "" {
			return nil, ErrWrongConfig
		}
		return e.buyFixedPrice(collectionCfg, bidder, collection, tokenID, listPrice, tokenContract)
	default:
		return nil, ErrWrongConfig
	}
}

func (e *Engine) placeAuctionBid(bidder, collection, tokenID string, listPrice Asset, expiresAt uint64, tokenContract string) ([]Instruction, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	ask, ok, err := e.store.getAsk(collection, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSuchAsk
	}
	if expired(ask, e.now()) {
		return nil, ErrAskExpired
	}

	existing, err := e.store.allBidsForItem(collection, tokenID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= int(cfg.BidLimit) {
		return nil, ErrBidCountExceeded
	}

	b := new(storage.Batch)
	instructions := make([]Instruction, 0, 1)
	// A re-bid refunds and replaces the bidder's previous offer in the same
	// call. The refund stays staged with the rest of the batch: if the new
	// bid fails validation below, neither the refund nor the removal lands.
	prev, ok, err := e.store.getBid(collection, tokenID, bidder)
	if err != nil {
		return nil, err
	}
	if ok {
		e.store.removeBid(b, prev)
		instructions = append(instructions, refundInstruction(prev.Bidder, prev.ListPrice.Denom, prev.TokenContract, prev.ListPrice.Amount))
	}

	bid := &Bid{
		Collection:    collection,
		TokenID:       tokenID,
		Bidder:        bidder,
		ListPrice:     listPrice.Copy(),
		Expiry:        expiresAt,
		TokenContract: tokenContract,
		Seller:        ask.Seller,
	}
	if expired(bid, e.now()) {
		return nil, ErrBidExpired
	}
	if err := e.store.setBid(b, bid); err != nil {
		return nil, err
	}
	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(BidPlaced{Bid: *bid.Copy()})
	return instructions, nil
}

func (e *Engine) placeCollectionBid(bidder, collection string, listPrice Asset, expiresAt uint64, tokenContract string) ([]Instruction, error) {
	b := new(storage.Batch)
	instructions := make([]Instruction, 0, 1)
	prev, ok, err := e.store.getCollectionBid(collection, bidder)
	if err != nil {
		return nil, err
	}
	if ok {
		e.store.removeCollectionBid(b, prev)
		instructions = append(instructions, refundInstruction(prev.Bidder, prev.ListPrice.Denom, prev.TokenContract, prev.ListPrice.Amount))
	}

	bid := &CollectionBid{
		Collection:    collection,
		Bidder:        bidder,
		ListPrice:     listPrice.Copy(),
		Expiry:        expiresAt,
		TokenContract: tokenContract,
	}
	if expired(bid, e.now()) {
		return nil, ErrBidExpired
	}
	if err := e.store.setCollectionBid(b, bid); err != nil {
		return nil, err
	}
	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(CollectionBidPlaced{Bid: *bid.Copy()})
	return instructions, nil
}

// RemoveBid withdraws the caller's own bid and refunds it. Nothing may be
// paid into this call.
func (e *Engine) RemoveBid(bidder, collection, tokenID string, funds []Asset) ([]Instruction, error) {
	if err := nonpayable(funds); err != nil {
		return nil, err
	}
	bid, ok, err := e.store.getBid(collection, tokenID, bidder)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	b := new(storage.Batch)
	e.store.removeBid(b, bid)
	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(BidRemoved{Bid: *bid.Copy()})
	return []Instruction{refundInstruction(bid.Bidder, bid.ListPrice.Denom, bid.TokenContract, bid.ListPrice.Amount)}, nil
}

// RemoveCollectionBid withdraws the caller's standing collection bid.
func (e *Engine) RemoveCollectionBid(bidder, collection string, funds []Asset) ([]Instruction, error) {
	if err := nonpayable(funds); err != nil {
		return nil, err
	}
	bid, ok, err := e.store.getCollectionBid(collection, bidder)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	b := new(storage.Batch)
	e.store.removeCollectionBid(b, bid)
	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(CollectionBidRemoved{Bid: *bid.Copy()})
	return []Instruction{refundInstruction(bid.Bidder, bid.ListPrice.Denom, bid.TokenContract, bid.ListPrice.Amount)}, nil
}
