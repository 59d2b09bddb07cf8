package histarchive

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hopemarket/native/market"
	"hopemarket/storage"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	archive, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })
	return archive
}

func settle(t *testing.T, engine *market.Engine, tokenID string, amount int64) {
	t.Helper()
	price := market.Asset{Denom: "ujuno", Amount: big.NewInt(amount)}
	require.NoError(t, engine.List("seller", "hope_collection", tokenID, price, 2_000_000, ""))
	_, err := engine.PlaceBid("buyer", "hope_collection", tokenID, market.SaleTypeFixedPrice, price, 2_000_000, []market.Asset{price})
	require.NoError(t, err)
}

func TestArchiveMirrorsSettledSales(t *testing.T) {
	archive := openTestArchive(t)

	engine := market.NewEngine(storage.NewMemDB())
	now := int64(1_000_000)
	engine.SetNowFunc(func() int64 { return now })
	require.NoError(t, engine.Bootstrap("owner", "admin"))
	members := []market.RoyaltyMember{{Address: "admin1", Portion: "1"}}
	require.NoError(t, engine.AddCollection("owner", "hope_collection", decimal.RequireFromString("0.1"), members))
	require.NoError(t, engine.RegisterCoinDenom("owner", "ujuno"))
	engine.SetEmitter(archive)

	settle(t, engine, "tokA", 1000)
	now++
	settle(t, engine, "tokB", 250)

	rows, err := archive.SalesByCollection("hope_collection", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "tokA", rows[0].TokenID)
	require.Equal(t, "1000", rows[0].Amount)
	require.Equal(t, "seller", rows[0].Seller)
	require.Equal(t, "buyer", rows[0].Buyer)

	recent, err := archive.RecentSales(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "tokB", recent[0].TokenID)

	volume, err := archive.VolumeByDenom("hope_collection")
	require.NoError(t, err)
	require.True(t, volume["ujuno"].Equal(decimal.NewFromInt(1250)), "volume = %s", volume["ujuno"])
}

func TestArchiveIgnoresNonSaleEvents(t *testing.T) {
	archive := openTestArchive(t)
	archive.Emit(market.AskListed{Ask: market.Ask{Collection: "hope_collection", TokenID: "tokA"}})
	rows, err := archive.RecentSales(0)
	require.NoError(t, err)
	require.Empty(t, rows)
}
