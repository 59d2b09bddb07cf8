package market

import "fmt"

// Key layout. Primary record families double as their natural first index:
// asks under a collection prefix already come back ordered by token id, bids
// under an item prefix come back ordered by bidder. Every other lookup gets a
// dedicated index row whose value is the primary key it points at. Record
// identifiers must not contain the '/' separator.
var (
	askPrefix           = []byte("market/asks/")
	bidPrefix           = []byte("market/bids/")
	collectionBidPrefix = []byte("market/colbids/")
	salePrefix          = []byte("market/sales/")
	tvlPrefix           = []byte("market/tvl/")
	collectionPrefix    = []byte("market/collections/")
	memberPrefix        = []byte("market/members/")
	tokenContractPrefix = []byte("market/tokens/")
	coinDenomPrefix     = []byte("market/denoms/")
	configKey           = []byte("market/config")

	askSellerIdxPrefix    = []byte("market/idx/asks/seller/")
	bidBidderIdxPrefix    = []byte("market/idx/bids/bidder/")
	bidSellerIdxPrefix    = []byte("market/idx/bids/seller/")
	bidExpiryIdxPrefix    = []byte("market/idx/bids/expiry/")
	colBidBidderIdxPrefix = []byte("market/idx/colbids/bidder/")
	colBidExpiryIdxPrefix = []byte("market/idx/colbids/expiry/")
	saleBuyerIdxPrefix    = []byte("market/idx/sales/buyer/")
	saleSellerIdxPrefix   = []byte("market/idx/sales/seller/")
	tvlDenomIdxPrefix     = []byte("market/idx/tvl/denom/")
)

func joinKey(prefix []byte, parts ...string) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p) + 1
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, '/')
		}
		buf = append(buf, p...)
	}
	return buf
}

// timeSegment renders a timestamp so lexicographic key order matches numeric
// order.
func timeSegment(t uint64) string {
	return fmt.Sprintf("%020d", t)
}

func askKey(collection, tokenID string) []byte {
	return joinKey(askPrefix, collection, tokenID)
}

func askCollectionScanPrefix(collection string) []byte {
	return joinKey(askPrefix, collection, "")
}

func askSellerIdxKey(seller, collection, tokenID string) []byte {
	return joinKey(askSellerIdxPrefix, seller, collection, tokenID)
}

func bidKey(collection, tokenID, bidder string) []byte {
	return joinKey(bidPrefix, collection, tokenID, bidder)
}

func bidItemScanPrefix(collection, tokenID string) []byte {
	return joinKey(bidPrefix, collection, tokenID, "")
}

func bidBidderIdxKey(bidder, collection, tokenID string) []byte {
	return joinKey(bidBidderIdxPrefix, bidder, collection, tokenID)
}

func bidSellerIdxKey(seller, collection, tokenID, bidder string) []byte {
	return joinKey(bidSellerIdxPrefix, seller, collection, tokenID, bidder)
}

func bidExpiryIdxKey(bidder string, expiry uint64, collection, tokenID string) []byte {
	return joinKey(bidExpiryIdxPrefix, bidder, timeSegment(expiry), collection, tokenID)
}

func collectionBidKey(collection, bidder string) []byte {
	return joinKey(collectionBidPrefix, collection, bidder)
}

func collectionBidScanPrefix(collection string) []byte {
	return joinKey(collectionBidPrefix, collection, "")
}

func colBidBidderIdxKey(bidder, collection string) []byte {
	return joinKey(colBidBidderIdxPrefix, bidder, collection)
}

func colBidExpiryIdxKey(bidder string, expiry uint64, collection string) []byte {
	return joinKey(colBidExpiryIdxPrefix, bidder, timeSegment(expiry), collection)
}

func saleKey(collection, tokenID string, t uint64) []byte {
	return joinKey(salePrefix, collection, tokenID, timeSegment(t))
}

func saleCollectionScanPrefix(collection string) []byte {
	return joinKey(salePrefix, collection, "")
}

func saleItemScanPrefix(collection, tokenID string) []byte {
	return joinKey(salePrefix, collection, tokenID, "")
}

func saleBuyerIdxKey(buyer, collection, tokenID string, t uint64) []byte {
	return joinKey(saleBuyerIdxPrefix, buyer, collection, tokenID, timeSegment(t))
}

func saleSellerIdxKey(seller, collection, tokenID string, t uint64) []byte {
	return joinKey(saleSellerIdxPrefix, seller, collection, tokenID, timeSegment(t))
}

func tvlKey(collection, denom string) []byte {
	return joinKey(tvlPrefix, collection, denom)
}

func tvlCollectionScanPrefix(collection string) []byte {
	return joinKey(tvlPrefix, collection, "")
}

func tvlDenomIdxKey(denom, collection string) []byte {
	return joinKey(tvlDenomIdxPrefix, denom, collection)
}

func collectionKey(collection string) []byte {
	return joinKey(collectionPrefix, collection)
}

func memberKey(collection string) []byte {
	return joinKey(memberPrefix, collection)
}

func tokenContractKey(address string) []byte {
	return joinKey(tokenContractPrefix, address)
}

func coinDenomKey(denom string) []byte {
	return joinKey(coinDenomPrefix, denom)
}
