package market

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"hopemarket/storage"
)

const (
	testOwner      = "owner"
	testAdmin      = "admin"
	testCollection = "hope_collection"
	testDenom      = "ujuno"
	testNow        = int64(1_000_000)
	testExpiry     = uint64(2_000_000)
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine := NewEngine(storage.NewMemDB())
	engine.SetNowFunc(func() int64 { return testNow })
	if err := engine.Bootstrap(testOwner, testAdmin); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return engine
}

// registerCollection mirrors the canonical fixture: 10% royalty split 70/30
// between admin1 and admin2.
func registerCollection(t *testing.T, engine *Engine) {
	t.Helper()
	members := []RoyaltyMember{
		{Address: "admin1", Portion: "0.7"},
		{Address: "admin2", Portion: "0.3"},
	}
	if err := engine.AddCollection(testOwner, testCollection, decimal.RequireFromString("0.1"), members); err != nil {
		t.Fatalf("add collection: %v", err)
	}
}

func registerCoin(t *testing.T, engine *Engine, denom string) {
	t.Helper()
	if err := engine.RegisterCoinDenom(testOwner, denom); err != nil {
		t.Fatalf("register coin: %v", err)
	}
}

func registerToken(t *testing.T, engine *Engine, address, denom string) {
	t.Helper()
	if err := engine.RegisterTokenContract(testOwner, address, denom); err != nil {
		t.Fatalf("register token: %v", err)
	}
}

func setupMarket(t *testing.T) *Engine {
	t.Helper()
	engine := newTestEngine(t)
	registerCollection(t, engine)
	registerCoin(t, engine, testDenom)
	return engine
}

func asset(denom string, amount int64) Asset {
	return Asset{Denom: denom, Amount: big.NewInt(amount)}
}

func coins(denom string, amount int64) []Asset {
	return []Asset{asset(denom, amount)}
}

func mustList(t *testing.T, engine *Engine, seller, tokenID string, amount int64) {
	t.Helper()
	if err := engine.List(seller, testCollection, tokenID, asset(testDenom, amount), testExpiry, ""); err != nil {
		t.Fatalf("list %s: %v", tokenID, err)
	}
}

func mustBid(t *testing.T, engine *Engine, bidder, tokenID string, amount int64) []Instruction {
	t.Helper()
	instructions, err := engine.PlaceBid(bidder, testCollection, tokenID, SaleTypeAuction, asset(testDenom, amount), testExpiry, coins(testDenom, amount))
	if err != nil {
		t.Fatalf("bid %s/%s: %v", bidder, tokenID, err)
	}
	return instructions
}

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	events []Event
}

func (r *recordingEmitter) Emit(evt Event) { r.events = append(r.events, evt) }

func assertInstr(t *testing.T, got Instruction, kind InstructionKind, to string, amount int64) {
	t.Helper()
	if got.Kind != kind {
		t.Fatalf("instruction kind = %s, want %s", got.Kind, kind)
	}
	if got.To != to {
		t.Fatalf("instruction to = %s, want %s", got.To, to)
	}
	if kind != InstrNFTTransfer {
		if got.Amount == nil || got.Amount.Int64() != amount {
			t.Fatalf("instruction amount = %v, want %d", got.Amount, amount)
		}
	}
}
