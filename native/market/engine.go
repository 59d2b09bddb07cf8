package market

import (
	"errors"
	"math/big"
	"time"

	"hopemarket/storage"
)

var errNotConfigured = errors.New("market engine: not bootstrapped")

// Engine owns the marketplace ledger. Every public operation runs to
// completion as one atomic unit: reads and validation happen first, mutations
// are staged into a single batch and committed only when the whole call
// succeeded. Operations never execute concurrently against the same store.
type Engine struct {
	store   *Store
	emitter Emitter
	nowFn   func() int64
}

// NewEngine wires the engine to a key-value database with a no-op emitter.
func NewEngine(db storage.Database) *Engine {
	return &Engine{
		store:   NewStore(db),
		emitter: NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter Emitter) {
	if emitter == nil {
		e.emitter = NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// Bootstrap writes the singleton config on first boot. Owner and admin are
// taken as already validated identities; the bid limit starts at
// DefaultBidLimit. When a config already exists it is left untouched so
// restarts do not undo owner or admin rotations.
func (e *Engine) Bootstrap(owner, admin string) error {
	if _, ok, err := e.store.getConfig(); err != nil {
		return err
	} else if ok {
		return nil
	}
	b := new(storage.Batch)
	cfg := &Config{Owner: owner, Admin: admin, BidLimit: DefaultBidLimit}
	if err := e.store.setConfig(b, cfg); err != nil {
		return err
	}
	return e.store.commit(b)
}

func (e *Engine) config() (*Config, error) {
	cfg, ok, err := e.store.getConfig()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotConfigured
	}
	return cfg, nil
}

// nonpayable rejects any funds attached to a call that accepts none.
func nonpayable(funds []Asset) error {
	if len(funds) > 0 {
		return ErrTooMuchFunds
	}
	return nil
}

// paidAmount sums the presented funds in the requested denomination. Other
// denominations are ignored, not rejected.
func paidAmount(funds []Asset, denom string) *big.Int {
	total := big.NewInt(0)
	for _, f := range funds {
		if f.Denom != denom || f.Amount == nil {
			continue
		}
		total.Add(total, f.Amount)
	}
	return total
}

// requireCollection loads the collection's registered config.
func (e *Engine) requireCollection(collection string) (*CollectionConfig, error) {
	cfg, ok, err := e.store.getCollection(collection)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownCollection
	}
	return cfg, nil
}

// validateListDenom checks denomination consistency for a price: native
// prices need a registered coin denom, token prices need the token contract
// registered under exactly the stated denom.
func (e *Engine) validateListDenom(denom, tokenContract string) error {
	if tokenContract == "" {
		ok, err := e.store.hasCoinDenom(denom)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnknownDenom
		}
		return nil
	}
	registered, ok, err := e.store.tokenDenom(tokenContract)
	if err != nil {
		return err
	}
	if !ok || registered != denom {
		return ErrTokenDenomMismatch
	}
	return nil
}

func (s *Store) commit(b *storage.Batch) error {
	return s.db.Write(b)
}
