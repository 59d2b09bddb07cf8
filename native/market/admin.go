package market

import (
	"math/big"

	"github.com/shopspring/decimal"

	"hopemarket/storage"
)

// Restored asks get three days of life from the moment of the restore.
const restoredAskTTL uint64 = 259200

func (e *Engine) requireOwner(caller string) (*Config, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if cfg.Owner != caller {
		return nil, ErrUnauthorized
	}
	return cfg, nil
}

func (e *Engine) requireAdmin(caller string) (*Config, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if cfg.Admin != caller {
		return nil, ErrUnauthorized
	}
	return cfg, nil
}

func validatePortions(members []RoyaltyMember) error {
	sum := decimal.Zero
	for _, member := range members {
		portion, err := member.PortionDecimal()
		if err != nil {
			return ErrWrongPortion
		}
		sum = sum.Add(portion)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		return ErrWrongPortion
	}
	return nil
}

// AddCollection registers a collection's royalty configuration. Member
// portions must sum to exactly one. Registering an already known collection
// fails; use UpdateCollection for that.
func (e *Engine) AddCollection(caller, collection string, royaltyPortion decimal.Decimal, members []RoyaltyMember) error {
	if _, err := e.requireOwner(caller); err != nil {
		return err
	}
	if _, ok, err := e.store.getCollection(collection); err != nil {
		return err
	} else if ok {
		return ErrWrongConfig
	}
	if err := validatePortions(members); err != nil {
		return err
	}
	return e.writeCollection(collection, royaltyPortion, members)
}

// UpdateCollection replaces an existing collection's royalty configuration.
func (e *Engine) UpdateCollection(caller, collection string, royaltyPortion decimal.Decimal, members []RoyaltyMember) error {
	if _, err := e.requireOwner(caller); err != nil {
		return err
	}
	if _, ok, err := e.store.getCollection(collection); err != nil {
		return err
	} else if !ok {
		return ErrUnknownCollection
	}
	if err := validatePortions(members); err != nil {
		return err
	}
	return e.writeCollection(collection, royaltyPortion, members)
}

func (e *Engine) writeCollection(collection string, royaltyPortion decimal.Decimal, members []RoyaltyMember) error {
	b := new(storage.Batch)
	if err := e.store.setCollection(b, &CollectionConfig{Collection: collection, RoyaltyPortion: royaltyPortion.String()}); err != nil {
		return err
	}
	if err := e.store.setMembers(b, collection, members); err != nil {
		return err
	}
	return e.store.commit(b)
}

// RegisterTokenContract maps a fungible-token contract to its denomination.
func (e *Engine) RegisterTokenContract(caller, address, denom string) error {
	if _, err := e.requireOwner(caller); err != nil {
		return err
	}
	b := new(storage.Batch)
	if err := e.store.setTokenDenom(b, address, denom); err != nil {
		return err
	}
	return e.store.commit(b)
}

// RegisterCoinDenom marks a native denomination as accepted for pricing.
func (e *Engine) RegisterCoinDenom(caller, denom string) error {
	if _, err := e.requireOwner(caller); err != nil {
		return err
	}
	b := new(storage.Batch)
	if err := e.store.setCoinDenom(b, denom); err != nil {
		return err
	}
	return e.store.commit(b)
}

// SetBidLimit caps the number of open bids per item.
func (e *Engine) SetBidLimit(caller string, limit uint32) error {
	cfg, err := e.requireOwner(caller)
	if err != nil {
		return err
	}
	cfg.BidLimit = limit
	b := new(storage.Batch)
	if err := e.store.setConfig(b, cfg); err != nil {
		return err
	}
	return e.store.commit(b)
}

// ChangeOwner rotates the owner. Only the admin may do this.
func (e *Engine) ChangeOwner(caller, address string) error {
	cfg, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	cfg.Owner = address
	b := new(storage.Batch)
	if err := e.store.setConfig(b, cfg); err != nil {
		return err
	}
	return e.store.commit(b)
}

// ChangeAdmin rotates the admin. Only the current admin may do this.
func (e *Engine) ChangeAdmin(caller, address string) error {
	cfg, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	cfg.Admin = address
	b := new(storage.Batch)
	if err := e.store.setConfig(b, cfg); err != nil {
		return err
	}
	return e.store.commit(b)
}

// SweepFunds emits transfers moving accumulated balances to the owner. Zero
// amounts are skipped.
func (e *Engine) SweepFunds(caller string, tokenAmount, coinAmount *big.Int, tokenContract, coinDenom string) ([]Instruction, error) {
	cfg, err := e.requireOwner(caller)
	if err != nil {
		return nil, err
	}
	instructions := make([]Instruction, 0, 2)
	if tokenAmount != nil && tokenAmount.Sign() > 0 {
		instructions = append(instructions, tokenTransfer(tokenContract, cfg.Owner, tokenAmount))
	}
	if coinAmount != nil && coinAmount.Sign() > 0 {
		instructions = append(instructions, nativeTransfer(cfg.Owner, coinDenom, coinAmount))
	}
	return instructions, nil
}

// RecoverToken emits a transfer returning a stuck NFT to the owner.
func (e *Engine) RecoverToken(caller, collection, tokenID string) ([]Instruction, error) {
	cfg, err := e.requireOwner(caller)
	if err != nil {
		return nil, err
	}
	return []Instruction{nftTransfer(collection, tokenID, cfg.Owner)}, nil
}

// MigrateTokens emits transfers moving a batch of NFTs to a destination.
func (e *Engine) MigrateTokens(caller, collection, dest string, tokenIDs []string) ([]Instruction, error) {
	if _, err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	instructions := make([]Instruction, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		instructions = append(instructions, nftTransfer(collection, tokenID, dest))
	}
	return instructions, nil
}

// RestoreAsks bulk-writes listings during a migration. Restored asks expire
// restoredAskTTL seconds from now.
func (e *Engine) RestoreAsks(caller, collection string, offerings []Offering) error {
	if _, err := e.requireOwner(caller); err != nil {
		return err
	}
	expiry := uint64(e.now()) + restoredAskTTL
	b := new(storage.Batch)
	for _, offering := range offerings {
		ask := &Ask{
			Collection: collection,
			TokenID:    offering.TokenID,
			Seller:     offering.Seller,
			ListPrice:  offering.ListPrice.Copy(),
			Expiry:     expiry,
		}
		if err := e.store.setAsk(b, ask); err != nil {
			return err
		}
	}
	return e.store.commit(b)
}

// SetSaleHistory bulk-overwrites sale records for a collection, used for
// migration and backfill.
func (e *Engine) SetSaleHistory(caller, collection string, records []SaleRecord) error {
	if _, err := e.requireOwner(caller); err != nil {
		return err
	}
	b := new(storage.Batch)
	for i := range records {
		sale := records[i].Copy()
		sale.Collection = collection
		if err := e.store.setSale(b, sale); err != nil {
			return err
		}
	}
	return e.store.commit(b)
}

// SetTvl bulk-overwrites TVL aggregates for a collection.
func (e *Engine) SetTvl(caller, collection string, entries []TvlRecord) error {
	if _, err := e.requireOwner(caller); err != nil {
		return err
	}
	b := new(storage.Batch)
	for i := range entries {
		rec := entries[i].Copy()
		rec.Collection = collection
		if err := e.store.setTvl(b, rec); err != nil {
			return err
		}
	}
	return e.store.commit(b)
}
