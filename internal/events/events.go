package events

import "time"

// Event types
const (
	SwapProposed      = "swap.proposed"
	SwapStatusChanged = "swap.status_changed"
)

// Stream names
const (
	SwapEventsStream = "swap.events"
)

// Event is the envelope appended to a stream under the "event" field.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// SwapEvent describes a swap at the moment it was created or changed status.
type SwapEvent struct {
	SwapID    string `json:"swap_id"`
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	BuyerID   string `json:"buyer_id"`
	Status    string `json:"swap_status"`
}
