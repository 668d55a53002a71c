package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSearchDocument is the denormalised search projection of a product.
// Its _id equals the product id.
type ProductSearchDocument struct {
	ID                   primitive.ObjectID `bson:"_id" json:"id"`
	ProductTitle         string             `bson:"product_title" json:"product_title"`
	ProductDescription   string             `bson:"product_description" json:"product_description"`
	ProductImage         string             `bson:"product_image" json:"product_image"`
	SwapPreference       string             `bson:"swap_preference" json:"swap_preference"`
	EstimatedRetailPrice float64            `bson:"estimated_retail_price" json:"estimated_retail_price"`
	SellerID             primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	SellerName           string             `bson:"seller_name" json:"seller_name"`
	SellerProfilePic     string             `bson:"seller_profile_pic" json:"seller_profile_pic"`
	PublishDate          time.Time          `bson:"publish_date" json:"publish_date"`
	IsVisible            bool               `bson:"is_visible" json:"is_visible"`
	IsSold               bool               `bson:"is_sold" json:"is_sold"`
}

// NewProductSearchDocument projects a product and its seller into a search document.
// A nil seller leaves the seller fields empty.
func NewProductSearchDocument(p *Product, seller *User) ProductSearchDocument {
	doc := ProductSearchDocument{
		ID:                   p.ID,
		ProductTitle:         p.ProductTitle,
		ProductDescription:   p.ProductDescription,
		ProductImage:         p.ProductImage,
		SwapPreference:       p.SwapPreference,
		EstimatedRetailPrice: p.EstimatedRetailPrice,
		SellerID:             p.SellerID,
		PublishDate:          p.PublishDate,
		IsVisible:            p.IsVisible,
		IsSold:               p.IsSold,
	}
	if seller != nil {
		doc.SellerName = seller.FullName
		doc.SellerProfilePic = seller.ProfilePictureURL
	}
	return doc
}
