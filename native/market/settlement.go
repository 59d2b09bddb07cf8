package market

import (
	"math/big"

	"github.com/shopspring/decimal"

	"hopemarket/storage"
)

// distribute splits a sale's proceeds. Each royalty member receives
// amount x royaltyPortion x memberPortion truncated toward zero; the seller
// receives everything left after the member payments, so the split always
// conserves the input amount and truncation dust lands with the seller. The
// final instruction moves the NFT to the recipient. All payments follow the
// price's funding kind: native transfers without a token contract, token
// transfers with one.
func distribute(collection, tokenID string, royalty decimal.Decimal, members []RoyaltyMember, price Asset, tokenContract, seller, recipient string) ([]Instruction, error) {
	amount := decimal.NewFromBigInt(price.Amount, 0)
	cut := amount.Mul(royalty)

	pay := func(to string, value *big.Int) Instruction {
		if tokenContract == "" {
			return nativeTransfer(to, price.Denom, value)
		}
		return tokenTransfer(tokenContract, to, value)
	}

	instructions := make([]Instruction, 0, len(members)+2)
	residual := new(big.Int).Set(price.Amount)
	for _, member := range members {
		portion, err := member.PortionDecimal()
		if err != nil {
			return nil, err
		}
		share := cut.Mul(portion).Truncate(0).BigInt()
		residual.Sub(residual, share)
		instructions = append(instructions, pay(member.Address, share))
	}
	instructions = append(instructions, pay(seller, residual))
	instructions = append(instructions, nftTransfer(collection, tokenID, recipient))
	return instructions, nil
}

// recordSale appends the sale history entry and folds the amount into the
// (collection, denom) TVL aggregate, creating it when absent.
func (e *Engine) recordSale(b *storage.Batch, collection, tokenID, seller, buyer string, price Asset) (*SaleRecord, error) {
	sale := &SaleRecord{
		Collection: collection,
		TokenID:    tokenID,
		From:       seller,
		To:         buyer,
		Denom:      price.Denom,
		Amount:     new(big.Int).Set(price.Amount),
		Time:       uint64(e.now()),
	}
	if err := e.store.setSale(b, sale); err != nil {
		return nil, err
	}

	tvl, ok, err := e.store.getTvl(collection, price.Denom)
	if err != nil {
		return nil, err
	}
	if !ok {
		tvl = &TvlRecord{Collection: collection, Denom: price.Denom, Amount: big.NewInt(0)}
	}
	tvl.Amount = new(big.Int).Add(tvl.Amount, price.Amount)
	if err := e.store.setTvl(b, tvl); err != nil {
		return nil, err
	}
	return sale, nil
}

// sweepItemBids removes every bid on an item, staging one refund instruction
// per bid except for skipBidder's own, in ascending bidder order.
func (e *Engine) sweepItemBids(b *storage.Batch, collection, tokenID, skipBidder string, instructions []Instruction) ([]Instruction, error) {
	bids, err := e.store.allBidsForItem(collection, tokenID)
	if err != nil {
		return nil, err
	}
	for _, bid := range bids {
		if bid.Bidder != skipBidder {
			instructions = append(instructions, refundInstruction(bid.Bidder, bid.ListPrice.Denom, bid.TokenContract, bid.ListPrice.Amount))
		}
		e.store.removeBid(b, bid)
	}
	return instructions, nil
}

func (e *Engine) buyFixedPrice(collectionCfg *CollectionConfig, buyer, collection, tokenID string, paid Asset, tokenContract string) ([]Instruction, error) {
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
	if paid.Denom != ask.ListPrice.Denom || paid.Amount.Cmp(ask.ListPrice.Amount) != 0 {
		return nil, ErrNotEnoughFunds
	}

	b := new(storage.Batch)
	e.store.removeAsk(b, ask)

	// A fixed-price sale orphans pending auction bids: they are all swept
	// with refunds.
	instructions, err := e.sweepItemBids(b, collection, tokenID, "", nil)
	if err != nil {
		return nil, err
	}

	sale, err := e.recordSale(b, collection, tokenID, ask.Seller, buyer, ask.ListPrice)
	if err != nil {
		return nil, err
	}

	royalty, err := collectionCfg.Royalty()
	if err != nil {
		return nil, err
	}
	members, _, err := e.store.getMembers(collection)
	if err != nil {
		return nil, err
	}
	payout, err := distribute(collection, tokenID, royalty, members, ask.ListPrice, tokenContract, ask.Seller, buyer)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, payout...)

	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(SaleSettled{Sale: *sale.Copy()})
	return instructions, nil
}

// AcceptBid lets the ask's seller take a specific bid. The ask and every bid
// on the item are removed; losing bids are refunded in ascending bidder
// order, then the distribution pays the royalty members, the seller, and
// transfers the NFT to the accepted bidder.
func (e *Engine) AcceptBid(caller, collection, tokenID, bidder string, funds []Asset) ([]Instruction, error) {
	if err := nonpayable(funds); err != nil {
		return nil, err
	}
	collectionCfg, err := e.requireCollection(collection)
	if err != nil {
		return nil, err
	}

	accepted, ok, err := e.store.getBid(collection, tokenID, bidder)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	if expired(accepted, e.now()) {
		return nil, ErrBidExpired
	}

	ask, ok, err := e.store.getAsk(collection, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSuchAsk
	}
	if ask.Seller != caller {
		return nil, ErrUnauthorized
	}

	b := new(storage.Batch)
	e.store.removeAsk(b, ask)
	instructions, err := e.sweepItemBids(b, collection, tokenID, accepted.Bidder, nil)
	if err != nil {
		return nil, err
	}

	sale, err := e.recordSale(b, collection, tokenID, ask.Seller, bidder, accepted.ListPrice)
	if err != nil {
		return nil, err
	}

	royalty, err := collectionCfg.Royalty()
	if err != nil {
		return nil, err
	}
	members, _, err := e.store.getMembers(collection)
	if err != nil {
		return nil, err
	}
	payout, err := distribute(collection, tokenID, royalty, members, accepted.ListPrice, accepted.TokenContract, ask.Seller, bidder)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, payout...)

	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(SaleSettled{Sale: *sale.Copy()})
	return instructions, nil
}

// AcceptCollectionBid settles a standing collection bid against one item.
// When an ask exists for the item the caller must be its seller and the ask
// plus its competing bids are swept exactly as in AcceptBid. When no ask
// exists the caller is trusted as the seller without any ownership check
// against the actual NFT holder; that asymmetry is inherited behavior and is
// pinned by an explicit test rather than silently widened or fixed here.
func (e *Engine) AcceptCollectionBid(caller, collection, tokenID, bidder string, funds []Asset) ([]Instruction, error) {
	if err := nonpayable(funds); err != nil {
		return nil, err
	}
	collectionCfg, err := e.requireCollection(collection)
	if err != nil {
		return nil, err
	}

	accepted, ok, err := e.store.getCollectionBid(collection, bidder)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	if expired(accepted, e.now()) {
		return nil, ErrBidExpired
	}

	b := new(storage.Batch)
	e.store.removeCollectionBid(b, accepted)

	seller := caller
	var instructions []Instruction
	ask, ok, err := e.store.getAsk(collection, tokenID)
	if err != nil {
		return nil, err
	}
	if ok {
		if ask.Seller != caller {
			return nil, ErrUnauthorized
		}
		if expired(ask, e.now()) {
			return nil, ErrAskExpired
		}
		seller = ask.Seller
		e.store.removeAsk(b, ask)
		instructions, err = e.sweepItemBids(b, collection, tokenID, "", instructions)
		if err != nil {
			return nil, err
		}
	}

	sale, err := e.recordSale(b, collection, tokenID, seller, bidder, accepted.ListPrice)
	if err != nil {
		return nil, err
	}

	royalty, err := collectionCfg.Royalty()
	if err != nil {
		return nil, err
	}
	members, _, err := e.store.getMembers(collection)
	if err != nil {
		return nil, err
	}
	payout, err := distribute(collection, tokenID, royalty, members, accepted.ListPrice, accepted.TokenContract, seller, bidder)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, payout...)

	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(SaleSettled{Sale: *sale.Copy()})
	return instructions, nil
}
