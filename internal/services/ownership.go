package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/models"
)

// Owned is anything with a designated owner.
type Owned interface {
	OwnedBy(userID primitive.ObjectID) bool
}

// IsOwner compares identifiers only. The zero id owns nothing.
func IsOwner(entity Owned, caller primitive.ObjectID) bool {
	if entity == nil || caller.IsZero() {
		return false
	}
	return entity.OwnedBy(caller)
}

type swapSeller struct{ swap *models.Swap }

func (r swapSeller) OwnedBy(id primitive.ObjectID) bool { return r.swap.SellerID == id }

type swapBuyer struct{ swap *models.Swap }

func (r swapBuyer) OwnedBy(id primitive.ObjectID) bool { return r.swap.BuyerID == id }

// AsSeller views a swap as owned by its seller.
func AsSeller(swap *models.Swap) Owned { return swapSeller{swap} }

// AsBuyer views a swap as owned by its buyer.
func AsBuyer(swap *models.Swap) Owned { return swapBuyer{swap} }

func ownershipError(caller primitive.ObjectID, entity, id string) error {
	return apperr.New(apperr.CodeOwnership, "user %s is not the owner of %s %s", caller.Hex(), entity, id)
}
