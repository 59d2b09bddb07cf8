package market

// Event is a notification of a committed state change. Events fire only
// after the call's batch has been written; a failed call emits nothing.
type Event interface {
	EventType() string
}

// Emitter receives engine events. Implementations must not call back into
// the engine.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

func (NoopEmitter) Emit(Event) {}

// Event types emitted by the engine.
const (
	EventTypeAskListed     = "market.ask.listed"
	EventTypeAskPriceSet   = "market.ask.price_updated"
	EventTypeAskWithdrawn  = "market.ask.withdrawn"
	EventTypeBidPlaced     = "market.bid.placed"
	EventTypeBidRemoved    = "market.bid.removed"
	EventTypeColBidPlaced  = "market.collection_bid.placed"
	EventTypeColBidRemoved = "market.collection_bid.removed"
	EventTypeSaleSettled   = "market.sale.settled"
)

type AskListed struct{ Ask Ask }

func (AskListed) EventType() string { return EventTypeAskListed }

type AskPriceUpdated struct{ Ask Ask }

func (AskPriceUpdated) EventType() string { return EventTypeAskPriceSet }

type AskWithdrawn struct{ Ask Ask }

func (AskWithdrawn) EventType() string { return EventTypeAskWithdrawn }

type BidPlaced struct{ Bid Bid }

func (BidPlaced) EventType() string { return EventTypeBidPlaced }

type BidRemoved struct{ Bid Bid }

func (BidRemoved) EventType() string { return EventTypeBidRemoved }

type CollectionBidPlaced struct{ Bid CollectionBid }

func (CollectionBidPlaced) EventType() string { return EventTypeColBidPlaced }

type CollectionBidRemoved struct{ Bid CollectionBid }

func (CollectionBidRemoved) EventType() string { return EventTypeColBidRemoved }

// SaleSettled carries the sale record appended by a successful settlement.
type SaleSettled struct{ Sale SaleRecord }

func (SaleSettled) EventType() string { return EventTypeSaleSettled }
