package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "PENDING"
	SwapStatusAccepted  SwapStatus = "ACCEPTED"
	SwapStatusDenied    SwapStatus = "DENIED"
	SwapStatusCancelled SwapStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible from s.
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusDenied || s == SwapStatusCancelled
}

// IsValidTarget reports whether s may be requested as the outcome of a
// transition. PENDING is only ever assigned on creation.
func (s SwapStatus) IsValidTarget() bool {
	return s.IsTerminal()
}

// Swap is a proposal to trade an item (described inline) for a listed product.
type Swap struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID              primitive.ObjectID `bson:"product_id" json:"product_id"`
	SellerID               primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	BuyerID                primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	SwapProductTitle       string             `bson:"swap_product_title" json:"swap_product_title"`
	SwapProductDescription string             `bson:"swap_product_description" json:"swap_product_description"`
	SwapProductImage       string             `bson:"swap_product_image" json:"swap_product_image"`
	EstimatedRetailPrice   float64            `bson:"estimated_retail_price" json:"estimated_retail_price"`
	ViewedBySeller         bool               `bson:"viewed_by_seller" json:"viewed_by_seller"`
	SwapStatus             SwapStatus         `bson:"swap_status" json:"swap_status"`
	CreationDate           time.Time          `bson:"creation_date" json:"creation_date"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updated_at"`
}

// SwapProposal describes the item a buyer offers in exchange.
type SwapProposal struct {
	ProductID              string  `json:"product_id" binding:"required"`
	SwapProductTitle       string  `json:"swap_product_title" binding:"required"`
	SwapProductDescription string  `json:"swap_product_description"`
	SwapProductImage       string  `json:"swap_product_image"`
	EstimatedRetailPrice   float64 `json:"estimated_retail_price" binding:"gte=0"`
}

// SwapStatusUpdate is the payload for a status transition.
type SwapStatusUpdate struct {
	SwapStatus SwapStatus `json:"swap_status" binding:"required"`
}
