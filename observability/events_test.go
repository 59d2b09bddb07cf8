package observability

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"hopemarket/native/market"
)

type captureEmitter struct {
	got []market.Event
}

func (c *captureEmitter) Emit(evt market.Event) { c.got = append(c.got, evt) }

func TestMarketObserverForwardsAndCounts(t *testing.T) {
	next := &captureEmitter{}
	observer := NewMarketObserver(next)

	sale := market.SaleSettled{Sale: market.SaleRecord{
		Collection: "hope_collection",
		TokenID:    "tokA",
		From:       "seller",
		To:         "buyer",
		Denom:      "ujuno",
		Amount:     big.NewInt(1000),
		Time:       1_000_000,
	}}
	observer.Emit(market.AskListed{Ask: market.Ask{Collection: "hope_collection", TokenID: "tokA"}})
	observer.Emit(sale)

	if len(next.got) != 2 {
		t.Fatalf("forwarded %d events, want 2", len(next.got))
	}

	m := Events()
	if got := testutil.ToFloat64(m.sales.WithLabelValues("hope_collection")); got != 1 {
		t.Fatalf("sales counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.volume.WithLabelValues("ujuno")); got != 1000 {
		t.Fatalf("volume counter = %v, want 1000", got)
	}
	if got := testutil.ToFloat64(m.activity.WithLabelValues(market.EventTypeSaleSettled)); got != 1 {
		t.Fatalf("activity counter = %v, want 1", got)
	}
}

func TestMarketObserverNilNext(t *testing.T) {
	observer := NewMarketObserver(nil)
	// Must not panic without a downstream emitter.
	observer.Emit(market.BidPlaced{Bid: market.Bid{Collection: "hope_collection", TokenID: "tokA", Bidder: "karen"}})
}
