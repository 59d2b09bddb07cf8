package market

import "hopemarket/storage"

// List records an ask for a deposited NFT. The collection must be registered
// and the price's denomination must be consistent with the optional token
// contract. A prior ask for the same item is silently replaced; competing
// bids are left untouched.
func (e *Engine) List(seller, collection, tokenID string, listPrice Asset, expiresAt uint64, tokenContract string) error {
	if _, err := e.requireCollection(collection); err != nil {
		return err
	}
	if listPrice.Amount == nil || listPrice.Amount.Sign() < 0 {
		return ErrWrongConfig
	}
	if err := e.validateListDenom(listPrice.Denom, tokenContract); err != nil {
		return err
	}

	ask := &Ask{
		Collection: collection,
		TokenID:    tokenID,
		Seller:     seller,
		ListPrice:  listPrice.Copy(),
		Expiry:     expiresAt,
	}
	if expired(ask, e.now()) {
		return ErrAskExpired
	}

	b := new(storage.Batch)
	if err := e.store.setAsk(b, ask); err != nil {
		return err
	}
	if err := e.store.commit(b); err != nil {
		return err
	}
	e.emit(AskListed{Ask: *ask.Copy()})
	return nil
}

// UpdatePrice changes an ask's list price. Only the listing seller may call
// it and only the price changes; the expiry stays as listed.
func (e *Engine) UpdatePrice(caller, collection, tokenID string, listPrice Asset, tokenContract string, funds []Asset) error {
	if err := nonpayable(funds); err != nil {
		return err
	}
	ask, ok, err := e.store.getAsk(collection, tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSuchAsk
	}
	if ask.Seller != caller {
		return ErrUnauthorized
	}
	if listPrice.Amount == nil || listPrice.Amount.Sign() < 0 {
		return ErrWrongConfig
	}
	if err := e.validateListDenom(listPrice.Denom, tokenContract); err != nil {
		return err
	}

	ask.ListPrice = listPrice.Copy()
	b := new(storage.Batch)
	if err := e.store.setAsk(b, ask); err != nil {
		return err
	}
	if err := e.store.commit(b); err != nil {
		return err
	}
	e.emit(AskPriceUpdated{Ask: *ask.Copy()})
	return nil
}

// Withdraw cancels an ask. Every bid on the item is removed with a refund
// instruction, in ascending bidder order, followed by one instruction
// returning the NFT to the seller.
func (e *Engine) Withdraw(caller, collection, tokenID string, funds []Asset) ([]Instruction, error) {
	if err := nonpayable(funds); err != nil {
		return nil, err
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

	bids, err := e.store.allBidsForItem(collection, tokenID)
	if err != nil {
		return nil, err
	}
	instructions := make([]Instruction, 0, len(bids)+1)
	for _, bid := range bids {
		instructions = append(instructions, refundInstruction(bid.Bidder, bid.ListPrice.Denom, bid.TokenContract, bid.ListPrice.Amount))
		e.store.removeBid(b, bid)
	}
	instructions = append(instructions, nftTransfer(collection, tokenID, ask.Seller))

	if err := e.store.commit(b); err != nil {
		return nil, err
	}
	e.emit(AskWithdrawn{Ask: *ask.Copy()})
	return instructions, nil
}
