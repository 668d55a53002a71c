package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a listing offered for swapping.
type Product struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductTitle         string             `bson:"product_title" json:"product_title"`
	ProductDescription   string             `bson:"product_description" json:"product_description"`
	ProductImage         string             `bson:"product_image" json:"product_image"`
	SwapPreference       string             `bson:"swap_preference" json:"swap_preference"`
	EstimatedRetailPrice float64            `bson:"estimated_retail_price" json:"estimated_retail_price"`
	SellerID             primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	PublishDate          time.Time          `bson:"publish_date" json:"publish_date"`
	NumberOfViews        int64              `bson:"number_of_views" json:"number_of_views"`
	IsVisible            bool               `bson:"is_visible" json:"is_visible"`
	IsSold               bool               `bson:"is_sold" json:"is_sold"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}

// OwnedBy reports whether userID is the product's seller.
func (p *Product) OwnedBy(userID primitive.ObjectID) bool {
	return p.SellerID == userID
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	ProductTitle         string  `json:"product_title" binding:"required"`
	ProductDescription   string  `json:"product_description"`
	ProductImage         string  `json:"product_image"`
	SwapPreference       string  `json:"swap_preference"`
	EstimatedRetailPrice float64 `json:"estimated_retail_price" binding:"gte=0"`
}

// ProductPatch carries optional product changes. Only non-nil fields overwrite.
type ProductPatch struct {
	ProductTitle         *string  `json:"product_title"`
	ProductDescription   *string  `json:"product_description"`
	ProductImage         *string  `json:"product_image"`
	SwapPreference       *string  `json:"swap_preference"`
	EstimatedRetailPrice *float64 `json:"estimated_retail_price" binding:"omitempty,gte=0"`
	IsVisible            *bool    `json:"is_visible"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.ProductTitle == nil && p.ProductDescription == nil && p.ProductImage == nil &&
		p.SwapPreference == nil && p.EstimatedRetailPrice == nil && p.IsVisible == nil
}

// SetFields returns the BSON field names and values set by the patch.
func (p ProductPatch) SetFields() map[string]interface{} {
	fields := map[string]interface{}{}
	if p.ProductTitle != nil {
		fields["product_title"] = *p.ProductTitle
	}
	if p.ProductDescription != nil {
		fields["product_description"] = *p.ProductDescription
	}
	if p.ProductImage != nil {
		fields["product_image"] = *p.ProductImage
	}
	if p.SwapPreference != nil {
		fields["swap_preference"] = *p.SwapPreference
	}
	if p.EstimatedRetailPrice != nil {
		fields["estimated_retail_price"] = *p.EstimatedRetailPrice
	}
	if p.IsVisible != nil {
		fields["is_visible"] = *p.IsVisible
	}
	return fields
}

// Apply copies the non-nil patch fields onto p.
func (p ProductPatch) Apply(product *Product) {
	if p.ProductTitle != nil {
		product.ProductTitle = *p.ProductTitle
	}
	if p.ProductDescription != nil {
		product.ProductDescription = *p.ProductDescription
	}
	if p.ProductImage != nil {
		product.ProductImage = *p.ProductImage
	}
	if p.SwapPreference != nil {
		product.SwapPreference = *p.SwapPreference
	}
	if p.EstimatedRetailPrice != nil {
		product.EstimatedRetailPrice = *p.EstimatedRetailPrice
	}
	if p.IsVisible != nil {
		product.IsVisible = *p.IsVisible
	}
}
