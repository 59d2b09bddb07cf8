package market

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func listMany(t *testing.T, engine *Engine, seller string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("tok%03d", i)
		mustList(t, engine, seller, ids[i], int64(100+i))
	}
	return ids
}

func TestAsksPaginationDefaultsAndCap(t *testing.T) {
	engine := setupMarket(t)
	listMany(t, engine, "seller", 40)

	asks, err := engine.Asks(testCollection, "", 0)
	if err != nil {
		t.Fatalf("asks: %v", err)
	}
	if len(asks) != 10 {
		t.Fatalf("limit 0 returned %d asks, want default 10", len(asks))
	}

	asks, err = engine.Asks(testCollection, "", 100)
	if err != nil {
		t.Fatalf("asks: %v", err)
	}
	if len(asks) != 30 {
		t.Fatalf("limit 100 returned %d asks, want cap 30", len(asks))
	}

	asks, err = engine.Asks(testCollection, "", 5)
	if err != nil {
		t.Fatalf("asks: %v", err)
	}
	if len(asks) != 5 {
		t.Fatalf("limit 5 returned %d asks", len(asks))
	}
}

func TestAsksCursorIsExclusive(t *testing.T) {
	engine := setupMarket(t)
	ids := listMany(t, engine, "seller", 25)

	var got []string
	cursor := ""
	for {
		page, err := engine.Asks(testCollection, cursor, 10)
		if err != nil {
			t.Fatalf("asks: %v", err)
		}
		if len(page) == 0 {
			break
		}
		for _, ask := range page {
			got = append(got, ask.TokenID)
		}
		cursor = page[len(page)-1].TokenID
	}
	if len(got) != len(ids) {
		t.Fatalf("walked %d asks, want %d", len(got), len(ids))
	}
	for i, id := range ids {
		if got[i] != id {
			t.Fatalf("position %d = %s, want %s", i, got[i], id)
		}
	}
}

func TestReverseAsksStartsFromEnd(t *testing.T) {
	engine := setupMarket(t)
	ids := listMany(t, engine, "seller", 15)

	asks, err := engine.ReverseAsks(testCollection, "", 10)
	if err != nil {
		t.Fatalf("reverse asks: %v", err)
	}
	if len(asks) != 10 {
		t.Fatalf("got %d asks, want 10", len(asks))
	}
	if asks[0].TokenID != ids[14] {
		t.Fatalf("first = %s, want %s", asks[0].TokenID, ids[14])
	}

	rest, err := engine.ReverseAsks(testCollection, asks[len(asks)-1].TokenID, 10)
	if err != nil {
		t.Fatalf("reverse asks: %v", err)
	}
	if len(rest) != 5 {
		t.Fatalf("got %d asks, want remaining 5", len(rest))
	}
	if rest[len(rest)-1].TokenID != ids[0] {
		t.Fatalf("last = %s, want %s", rest[len(rest)-1].TokenID, ids[0])
	}
}

func TestAskCount(t *testing.T) {
	engine := setupMarket(t)
	listMany(t, engine, "seller", 7)

	count, err := engine.AskCount(testCollection)
	if err != nil {
		t.Fatalf("ask count: %v", err)
	}
	if count != 7 {
		t.Fatalf("count = %d, want 7", count)
	}

	if _, err := engine.Withdraw("seller", testCollection, "tok003", nil); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	count, err = engine.AskCount(testCollection)
	if err != nil {
		t.Fatalf("ask count: %v", err)
	}
	if count != 6 {
		t.Fatalf("count = %d, want 6 after withdraw", count)
	}
}

func TestAsksBySellerSpansCollections(t *testing.T) {
	engine := setupMarket(t)
	members := []RoyaltyMember{{Address: "admin1", Portion: "1"}}
	if err := engine.AddCollection(testOwner, "atom_collection", decimal.RequireFromString("0.05"), members); err != nil {
		t.Fatalf("add collection: %v", err)
	}
	mustList(t, engine, "seller", "tokA", 100)
	mustList(t, engine, "other", "tokB", 100)
	if err := engine.List("seller", "atom_collection", "tokC", asset(testDenom, 100), testExpiry, ""); err != nil {
		t.Fatalf("list: %v", err)
	}

	asks, err := engine.AsksBySeller("seller", nil, 0)
	if err != nil {
		t.Fatalf("asks by seller: %v", err)
	}
	if len(asks) != 2 {
		t.Fatalf("got %d asks, want 2", len(asks))
	}
	for _, ask := range asks {
		if ask.Seller != "seller" {
			t.Fatalf("ask %+v belongs to %s", ask, ask.Seller)
		}
	}

	// Resume after the first row.
	rest, err := engine.AsksBySeller("seller", &CollectionOffset{Collection: asks[0].Collection, TokenID: asks[0].TokenID}, 0)
	if err != nil {
		t.Fatalf("asks by seller: %v", err)
	}
	if len(rest) != 1 || rest[0].TokenID == asks[0].TokenID {
		t.Fatalf("cursor page = %+v", rest)
	}
}

func TestBidsByBidderFollowsMutations(t *testing.T) {
	engine := setupMarket(t)
	mustList(t, engine, "seller", "tokA", 1000)
	mustList(t, engine, "seller", "tokB", 1000)
	mustBid(t, engine, "karen", "tokA", 300)
	mustBid(t, engine, "karen", "tokB", 400)

	bids, err := engine.BidsByBidder("karen", nil, 0)
	if err != nil {
		t.Fatalf("bids by bidder: %v", err)
	}
	if len(bids) != 2 {
		t.Fatalf("got %d bids, want 2", len(bids))
	}

	if _, err := engine.RemoveBid("karen", testCollection, "tokA", nil); err != nil {
		t.Fatalf("remove bid: %v", err)
	}
	bids, err = engine.BidsByBidder("karen", nil, 0)
	if err != nil {
		t.Fatalf("bids by bidder: %v", err)
	}
	if len(bids) != 1 || bids[0].TokenID != "tokB" {
		t.Fatalf("bids = %+v, want only tokB", bids)
	}
}

func TestBidsBySeller(t *testing.T) {
	engine := setupMarket(t)
	mustList(t, engine, "seller", "tokA", 1000)
	mustList(t, engine, "other", "tokB", 1000)
	mustBid(t, engine, "karen", "tokA", 300)
	mustBid(t, engine, "karen", "tokB", 300)
	mustBid(t, engine, "zoe", "tokA", 350)

	bids, err := engine.BidsBySeller("seller", nil, 0)
	if err != nil {
		t.Fatalf("bids by seller: %v", err)
	}
	if len(bids) != 2 {
		t.Fatalf("got %d bids, want 2", len(bids))
	}
	for _, bid := range bids {
		if bid.Seller != "seller" || bid.TokenID != "tokA" {
			t.Fatalf("bid %+v not against seller's ask", bid)
		}
	}
}

func TestBidsByBidderSortedByExpiry(t *testing.T) {
	engine := setupMarket(t)
	mustList(t, engine, "seller", "tokA", 1000)
	mustList(t, engine, "seller", "tokB", 1000)
	mustList(t, engine, "seller", "tokC", 1000)
	bid := func(tokenID string, expiry uint64) {
		t.Helper()
		if _, err := engine.PlaceBid("karen", testCollection, tokenID, SaleTypeAuction, asset(testDenom, 300), expiry, coins(testDenom, 300)); err != nil {
			t.Fatalf("bid on %s: %v", tokenID, err)
		}
	}
	bid("tokA", 3_000_000)
	bid("tokB", 1_500_000)
	bid("tokC", 2_500_000)

	bids, err := engine.BidsByBidderSortedByExpiry("karen", nil, 0)
	if err != nil {
		t.Fatalf("bids by expiry: %v", err)
	}
	if len(bids) != 3 {
		t.Fatalf("got %d bids, want 3", len(bids))
	}
	want := []string{"tokB", "tokC", "tokA"}
	for i, bid := range bids {
		if bid.TokenID != want[i] {
			t.Fatalf("position %d = %s, want %s", i, bid.TokenID, want[i])
		}
	}

	// Cursor anchors on a prior bid and resumes past its expiry slot.
	rest, err := engine.BidsByBidderSortedByExpiry("karen", &CollectionOffset{Collection: testCollection, TokenID: "tokC"}, 0)
	if err != nil {
		t.Fatalf("bids by expiry: %v", err)
	}
	if len(rest) != 1 || rest[0].TokenID != "tokA" {
		t.Fatalf("cursor page = %+v, want only tokA", rest)
	}
}

func TestCollectionBidQueries(t *testing.T) {
	engine := setupMarket(t)
	members := []RoyaltyMember{{Address: "admin1", Portion: "1"}}
	if err := engine.AddCollection(testOwner, "atom_collection", decimal.RequireFromString("0.05"), members); err != nil {
		t.Fatalf("add collection: %v", err)
	}
	colBid := func(bidder, collection string, amount int64, expiry uint64) {
		t.Helper()
		if _, err := engine.PlaceBid(bidder, collection, "", SaleTypeCollectionBid, asset(testDenom, amount), expiry, coins(testDenom, amount)); err != nil {
			t.Fatalf("collection bid: %v", err)
		}
	}
	colBid("karen", testCollection, 500, 2_500_000)
	colBid("adam", testCollection, 400, 3_000_000)
	colBid("karen", "atom_collection", 200, 1_500_000)

	byCollection, err := engine.CollectionBidsByCollection(testCollection, "", 0)
	if err != nil {
		t.Fatalf("by collection: %v", err)
	}
	if len(byCollection) != 2 || byCollection[0].Bidder != "adam" || byCollection[1].Bidder != "karen" {
		t.Fatalf("by collection = %+v", byCollection)
	}

	byBidder, err := engine.CollectionBidsByBidder("karen", "", 0)
	if err != nil {
		t.Fatalf("by bidder: %v", err)
	}
	if len(byBidder) != 2 {
		t.Fatalf("got %d bids, want 2", len(byBidder))
	}

	byExpiry, err := engine.CollectionBidsByBidderSortedByExpiry("karen", nil, 0)
	if err != nil {
		t.Fatalf("by expiry: %v", err)
	}
	if len(byExpiry) != 2 || byExpiry[0].Collection != "atom_collection" || byExpiry[1].Collection != testCollection {
		t.Fatalf("by expiry = %+v", byExpiry)
	}

	if _, err := engine.RemoveCollectionBid("karen", "atom_collection", nil); err != nil {
		t.Fatalf("remove collection bid: %v", err)
	}
	byBidder, err = engine.CollectionBidsByBidder("karen", "", 0)
	if err != nil {
		t.Fatalf("by bidder: %v", err)
	}
	if len(byBidder) != 1 || byBidder[0].Collection != testCollection {
		t.Fatalf("by bidder after remove = %+v", byBidder)
	}
}

func TestSaleHistoryQueries(t *testing.T) {
	engine := setupMarket(t)
	now := testNow
	engine.SetNowFunc(func() int64 { return now })

	sell := func(tokenID string, amount int64, buyer string) {
		t.Helper()
		mustList(t, engine, "seller", tokenID, amount)
		if _, err := engine.PlaceBid(buyer, testCollection, tokenID, SaleTypeFixedPrice, asset(testDenom, amount), testExpiry, coins(testDenom, amount)); err != nil {
			t.Fatalf("sale of %s: %v", tokenID, err)
		}
		now++
	}
	sell("tokA", 100, "buyer1")
	sell("tokB", 200, "buyer2")
	sell("tokA", 300, "buyer1")

	byCollection, err := engine.SaleHistoryByCollection(testCollection, nil, 0)
	if err != nil {
		t.Fatalf("by collection: %v", err)
	}
	if len(byCollection) != 3 {
		t.Fatalf("got %d sales, want 3", len(byCollection))
	}

	byItem, err := engine.SaleHistoryByItem(testCollection, "tokA", 0, 0)
	if err != nil {
		t.Fatalf("by item: %v", err)
	}
	if len(byItem) != 2 {
		t.Fatalf("got %d sales for tokA, want 2", len(byItem))
	}
	if byItem[0].Time >= byItem[1].Time {
		t.Fatalf("sales not time ordered: %d then %d", byItem[0].Time, byItem[1].Time)
	}

	// Resume after the first tokA sale.
	later, err := engine.SaleHistoryByItem(testCollection, "tokA", byItem[0].Time, 0)
	if err != nil {
		t.Fatalf("by item: %v", err)
	}
	if len(later) != 1 || later[0].Amount.Int64() != 300 {
		t.Fatalf("cursor page = %+v", later)
	}

	byBuyer, err := engine.SaleHistoryByBuyer("buyer1", nil, 0)
	if err != nil {
		t.Fatalf("by buyer: %v", err)
	}
	if len(byBuyer) != 2 {
		t.Fatalf("got %d sales for buyer1, want 2", len(byBuyer))
	}

	bySeller, err := engine.SaleHistoryBySeller("seller", nil, 0)
	if err != nil {
		t.Fatalf("by seller: %v", err)
	}
	if len(bySeller) != 3 {
		t.Fatalf("got %d sales for seller, want 3", len(bySeller))
	}
}

func TestTvlQueries(t *testing.T) {
	engine := setupMarket(t)
	registerCoin(t, engine, "uatom")
	members := []RoyaltyMember{{Address: "admin1", Portion: "1"}}
	if err := engine.AddCollection(testOwner, "atom_collection", decimal.RequireFromString("0.05"), members); err != nil {
		t.Fatalf("add collection: %v", err)
	}

	sell := func(collection, tokenID, denom string, amount int64) {
		t.Helper()
		if err := engine.List("seller", collection, tokenID, asset(denom, amount), testExpiry, ""); err != nil {
			t.Fatalf("list: %v", err)
		}
		if _, err := engine.PlaceBid("buyer", collection, tokenID, SaleTypeFixedPrice, asset(denom, amount), testExpiry, coins(denom, amount)); err != nil {
			t.Fatalf("sale: %v", err)
		}
	}
	sell(testCollection, "tokA", testDenom, 100)
	sell(testCollection, "tokB", "uatom", 50)
	sell("atom_collection", "tokC", "uatom", 25)

	byCollection, err := engine.TvlByCollection(testCollection, "", 0)
	if err != nil {
		t.Fatalf("tvl by collection: %v", err)
	}
	if len(byCollection) != 2 {
		t.Fatalf("got %d tvl rows, want 2", len(byCollection))
	}

	byDenom, err := engine.TvlByDenom("uatom", "", 0)
	if err != nil {
		t.Fatalf("tvl by denom: %v", err)
	}
	if len(byDenom) != 2 {
		t.Fatalf("got %d tvl rows for uatom, want 2", len(byDenom))
	}
	total := int64(0)
	for _, row := range byDenom {
		if row.Denom != "uatom" {
			t.Fatalf("row %+v has wrong denom", row)
		}
		total += row.Amount.Int64()
	}
	if total != 75 {
		t.Fatalf("uatom tvl total = %d, want 75", total)
	}
}

func TestGetConfigAndCollection(t *testing.T) {
	engine := setupMarket(t)
	cfg, err := engine.GetConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Owner != testOwner || cfg.Admin != testAdmin || cfg.BidLimit != DefaultBidLimit {
		t.Fatalf("config = %+v", cfg)
	}

	col, ok, err := engine.GetCollection(testCollection)
	if err != nil || !ok {
		t.Fatalf("collection: ok=%v err=%v", ok, err)
	}
	royalty, err := col.Royalty()
	if err != nil {
		t.Fatalf("royalty: %v", err)
	}
	if !royalty.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("royalty = %s", royalty)
	}

	members, ok, err := engine.GetMembers(testCollection)
	if err != nil || !ok {
		t.Fatalf("members: ok=%v err=%v", ok, err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %+v", members)
	}

	if _, ok, _ := engine.GetCollection("nope"); ok {
		t.Fatal("unknown collection reported present")
	}
}
