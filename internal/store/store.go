// Package store holds the MongoDB-backed record stores for users, products
// and swaps. Services depend on the interfaces declared here.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/models"
)

// ErrNoMatch is returned by conditional writes whose filter matched nothing.
// Callers diagnose the reason with a follow-up read.
var ErrNoMatch = errors.New("no document matched the filter")

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Replace(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	UpdateOwned(ctx context.Context, id, sellerID primitive.ObjectID, patch models.ProductPatch) (*models.Product, error)
	DeleteOwned(ctx context.Context, id, sellerID primitive.ObjectID) error
	MarkSold(ctx context.Context, id primitive.ObjectID) error
	ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	DeleteBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type SwapStore interface {
	Insert(ctx context.Context, swap *models.Swap) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Swap, error)
	TransitionFromPending(ctx context.Context, id primitive.ObjectID, status models.SwapStatus) (*models.Swap, error)
	MarkViewedBySeller(ctx context.Context, id primitive.ObjectID) (*models.Swap, error)
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Swap, error)
	ListByProductAndBuyer(ctx context.Context, productID, buyerID primitive.ObjectID) ([]models.Swap, error)
	ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Swap, error)
	ListByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Swap, error)
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error)
	DeleteByParty(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// notFoundOr maps mongo.ErrNoDocuments to a not_found domain error and wraps
// anything else.
func notFoundOr(err error, entity string, id primitive.ObjectID) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(entity, id.Hex())
	}
	return fmt.Errorf("error finding %s %s: %w", entity, id.Hex(), err)
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)
	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
