package gateway

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hopemarket/native/market"
)

type apiAsset struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

func toAPIAsset(a market.Asset) apiAsset {
	out := apiAsset{Denom: a.Denom, Amount: "0"}
	if a.Amount != nil {
		out.Amount = a.Amount.String()
	}
	return out
}

type apiAsk struct {
	Collection string   `json:"collection"`
	TokenID    string   `json:"token_id"`
	Seller     string   `json:"seller"`
	ListPrice  apiAsset `json:"list_price"`
	ExpiresAt  uint64   `json:"expires_at"`
}

func toAPIAsk(a *market.Ask) apiAsk {
	return apiAsk{
		Collection: a.Collection,
		TokenID:    a.TokenID,
		Seller:     a.Seller,
		ListPrice:  toAPIAsset(a.ListPrice),
		ExpiresAt:  a.Expiry,
	}
}

func toAPIAsks(asks []*market.Ask) []apiAsk {
	out := make([]apiAsk, len(asks))
	for i, a := range asks {
		out[i] = toAPIAsk(a)
	}
	return out
}

type apiBid struct {
	Collection    string   `json:"collection"`
	TokenID       string   `json:"token_id"`
	Bidder        string   `json:"bidder"`
	ListPrice     apiAsset `json:"list_price"`
	ExpiresAt     uint64   `json:"expires_at"`
	TokenContract string   `json:"token_contract,omitempty"`
	Seller        string   `json:"seller"`
}

func toAPIBids(bids []*market.Bid) []apiBid {
	out := make([]apiBid, len(bids))
	for i, b := range bids {
		out[i] = apiBid{
			Collection:    b.Collection,
			TokenID:       b.TokenID,
			Bidder:        b.Bidder,
			ListPrice:     toAPIAsset(b.ListPrice),
			ExpiresAt:     b.Expiry,
			TokenContract: b.TokenContract,
			Seller:        b.Seller,
		}
	}
	return out
}

type apiCollectionBid struct {
	Collection    string   `json:"collection"`
	Bidder        string   `json:"bidder"`
	ListPrice     apiAsset `json:"list_price"`
	ExpiresAt     uint64   `json:"expires_at"`
	TokenContract string   `json:"token_contract,omitempty"`
}

func toAPICollectionBids(bids []*market.CollectionBid) []apiCollectionBid {
	out := make([]apiCollectionBid, len(bids))
	for i, b := range bids {
		out[i] = apiCollectionBid{
			Collection:    b.Collection,
			Bidder:        b.Bidder,
			ListPrice:     toAPIAsset(b.ListPrice),
			ExpiresAt:     b.Expiry,
			TokenContract: b.TokenContract,
		}
	}
	return out
}

type apiSale struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Denom      string `json:"denom"`
	Amount     string `json:"amount"`
	Time       uint64 `json:"time"`
}

func toAPISales(sales []*market.SaleRecord) []apiSale {
	out := make([]apiSale, len(sales))
	for i, s := range sales {
		out[i] = apiSale{
			Collection: s.Collection,
			TokenID:    s.TokenID,
			From:       s.From,
			To:         s.To,
			Denom:      s.Denom,
			Amount:     s.Amount.String(),
			Time:       s.Time,
		}
	}
	return out
}

type apiTvl struct {
	Collection string `json:"collection"`
	Denom      string `json:"denom"`
	Amount     string `json:"amount"`
}

func toAPITvls(rows []*market.TvlRecord) []apiTvl {
	out := make([]apiTvl, len(rows))
	for i, row := range rows {
		out[i] = apiTvl{Collection: row.Collection, Denom: row.Denom, Amount: row.Amount.String()}
	}
	return out
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrNotFound), errors.Is(err, market.ErrNoSuchAsk), errors.Is(err, market.ErrUnknownCollection):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.GetConfig()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"owner":     cfg.Owner,
		"admin":     cfg.Admin,
		"bid_limit": cfg.BidLimit,
	})
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	col, ok, err := s.engine.GetCollection(collection)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	members, _, err := s.engine.GetMembers(collection)
	if err != nil {
		s.fail(w, err)
		return
	}
	type apiMember struct {
		Address string `json:"address"`
		Portion string `json:"portion"`
	}
	outMembers := make([]apiMember, len(members))
	for i, m := range members {
		outMembers[i] = apiMember{Address: m.Address, Portion: m.Portion}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"collection":      col.Collection,
		"royalty_portion": col.RoyaltyPortion,
		"members":         outMembers,
	})
}

func (s *Server) handleAsks(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	limit := limitParam(r)
	q := r.URL.Query()

	if q.Get("reverse") == "true" {
		asks, err := s.engine.ReverseAsks(collection, q.Get("start_before"), limit)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, toAPIAsks(asks))
		return
	}
	asks, err := s.engine.Asks(collection, q.Get("start_after"), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPIAsks(asks))
}

func (s *Server) handleAskCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.engine.AskCount(chi.URLParam(r, "collection"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	ask, ok, err := s.engine.GetAsk(chi.URLParam(r, "collection"), chi.URLParam(r, "token"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no ask for token")
		return
	}
	s.writeJSON(w, http.StatusOK, toAPIAsk(ask))
}

func (s *Server) handleItemBids(w http.ResponseWriter, r *http.Request) {
	bids, err := s.engine.Bids(chi.URLParam(r, "collection"), chi.URLParam(r, "token"), r.URL.Query().Get("start_after"), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPIBids(bids))
}

// collectionOffsetParams reads the two-part cursor used by seller/bidder
// scans that span collections.
func collectionOffsetParams(r *http.Request) *market.CollectionOffset {
	q := r.URL.Query()
	collection := q.Get("start_after_collection")
	token := q.Get("start_after_token")
	if collection == "" && token == "" {
		return nil
	}
	return &market.CollectionOffset{Collection: collection, TokenID: token}
}

func (s *Server) handleSellerAsks(w http.ResponseWriter, r *http.Request) {
	asks, err := s.engine.AsksBySeller(chi.URLParam(r, "seller"), collectionOffsetParams(r), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPIAsks(asks))
}

func (s *Server) handleSellerBids(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var offset *market.CollectionOffsetBid
	if q.Get("start_after_collection") != "" || q.Get("start_after_token") != "" || q.Get("start_after_bidder") != "" {
		offset = &market.CollectionOffsetBid{
			Collection: q.Get("start_after_collection"),
			TokenID:    q.Get("start_after_token"),
			Bidder:     q.Get("start_after_bidder"),
		}
	}
	bids, err := s.engine.BidsBySeller(chi.URLParam(r, "seller"), offset, limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPIBids(bids))
}

func (s *Server) handleBidderBids(w http.ResponseWriter, r *http.Request) {
	bidder := chi.URLParam(r, "bidder")
	offset := collectionOffsetParams(r)
	limit := limitParam(r)

	var (
		bids []*market.Bid
		err  error
	)
	if r.URL.Query().Get("sort") == "expiry" {
		bids, err = s.engine.BidsByBidderSortedByExpiry(bidder, offset, limit)
	} else {
		bids, err = s.engine.BidsByBidder(bidder, offset, limit)
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPIBids(bids))
}

func (s *Server) handleCollectionBids(w http.ResponseWriter, r *http.Request) {
	bids, err := s.engine.CollectionBidsByCollection(chi.URLParam(r, "collection"), r.URL.Query().Get("start_after"), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPICollectionBids(bids))
}

func (s *Server) handleBidderCollectionBids(w http.ResponseWriter, r *http.Request) {
	bidder := chi.URLParam(r, "bidder")
	q := r.URL.Query()
	limit := limitParam(r)

	if q.Get("sort") == "expiry" {
		var offset *market.CollectionBidOffset
		if q.Get("start_after_collection") != "" {
			offset = &market.CollectionBidOffset{
				Collection: q.Get("start_after_collection"),
				Bidder:     bidder,
			}
		}
		bids, err := s.engine.CollectionBidsByBidderSortedByExpiry(bidder, offset, limit)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, toAPICollectionBids(bids))
		return
	}

	bids, err := s.engine.CollectionBidsByBidder(bidder, q.Get("start_after"), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPICollectionBids(bids))
}

func (s *Server) handleCollectionSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var offset *market.SaleHistoryOffset
	if q.Get("start_after_token") != "" {
		offset = &market.SaleHistoryOffset{
			TokenID: q.Get("start_after_token"),
			Time:    timeParam(r, "start_after_time"),
		}
	}
	sales, err := s.engine.SaleHistoryByCollection(chi.URLParam(r, "collection"), offset, limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPISales(sales))
}

func (s *Server) handleItemSales(w http.ResponseWriter, r *http.Request) {
	sales, err := s.engine.SaleHistoryByItem(chi.URLParam(r, "collection"), chi.URLParam(r, "token"), timeParam(r, "start_after_time"), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPISales(sales))
}

func saleUserOffsetParams(r *http.Request) *market.SaleHistoryUserOffset {
	q := r.URL.Query()
	if q.Get("start_after_collection") == "" && q.Get("start_after_token") == "" {
		return nil
	}
	return &market.SaleHistoryUserOffset{
		Collection: q.Get("start_after_collection"),
		TokenID:    q.Get("start_after_token"),
		Time:       timeParam(r, "start_after_time"),
	}
}

func (s *Server) handleBuyerSales(w http.ResponseWriter, r *http.Request) {
	sales, err := s.engine.SaleHistoryByBuyer(chi.URLParam(r, "buyer"), saleUserOffsetParams(r), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPISales(sales))
}

func (s *Server) handleSellerSales(w http.ResponseWriter, r *http.Request) {
	sales, err := s.engine.SaleHistoryBySeller(chi.URLParam(r, "seller"), saleUserOffsetParams(r), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPISales(sales))
}

func (s *Server) handleCollectionTvl(w http.ResponseWriter, r *http.Request) {
	rows, err := s.engine.TvlByCollection(chi.URLParam(r, "collection"), r.URL.Query().Get("start_after"), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPITvls(rows))
}

func (s *Server) handleDenomTvl(w http.ResponseWriter, r *http.Request) {
	rows, err := s.engine.TvlByDenom(chi.URLParam(r, "denom"), r.URL.Query().Get("start_after"), limitParam(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAPITvls(rows))
}
