package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"swappy/backend/internal/db"
	"swappy/backend/internal/models"
)

type mongoSwapStore struct {
	coll *mongo.Collection
}

func NewSwapStore(database *mongo.Database) SwapStore {
	return &mongoSwapStore{coll: database.Collection(db.SwapsCollection)}
}

func (s *mongoSwapStore) Insert(ctx context.Context, swap *models.Swap) error {
	if swap.ID.IsZero() {
		swap.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, swap); err != nil {
		return fmt.Errorf("failed to insert swap: %w", err)
	}
	return nil
}

func (s *mongoSwapStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Swap, error) {
	var swap models.Swap
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&swap); err != nil {
		return nil, notFoundOr(err, "swap", id)
	}
	return &swap, nil
}

// TransitionFromPending sets the status only while the swap is still PENDING.
// ErrNoMatch means the swap is gone or another transition got there first.
func (s *mongoSwapStore) TransitionFromPending(ctx context.Context, id primitive.ObjectID, status models.SwapStatus) (*models.Swap, error) {
	filter := bson.M{"_id": id, "swap_status": models.SwapStatusPending}
	update := bson.M{"$set": bson.M{"swap_status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var swap models.Swap
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&swap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update swap %s: %w", id.Hex(), err)
	}
	return &swap, nil
}

func (s *mongoSwapStore) MarkViewedBySeller(ctx context.Context, id primitive.ObjectID) (*models.Swap, error) {
	update := bson.M{"$set": bson.M{"viewed_by_seller": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var swap models.Swap
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&swap); err != nil {
		return nil, notFoundOr(err, "swap", id)
	}
	return &swap, nil
}

func (s *mongoSwapStore) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Swap, error) {
	return s.find(ctx, bson.M{"product_id": productID})
}

func (s *mongoSwapStore) ListByProductAndBuyer(ctx context.Context, productID, buyerID primitive.ObjectID) ([]models.Swap, error) {
	return s.find(ctx, bson.M{"product_id": productID, "buyer_id": buyerID})
}

func (s *mongoSwapStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Swap, error) {
	return s.find(ctx, bson.M{"seller_id": sellerID})
}

func (s *mongoSwapStore) ListByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Swap, error) {
	return s.find(ctx, bson.M{"buyer_id": buyerID})
}

// find returns matches in creation order, oldest first. _id breaks ties since
// ObjectIDs grow monotonically.
func (s *mongoSwapStore) find(ctx context.Context, filter bson.M) ([]models.Swap, error) {
	opts := options.Find().SetSort(bson.D{{Key: "creation_date", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list swaps: %w", err)
	}
	swaps, err := decodeAll[models.Swap](ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode swaps: %w", err)
	}
	return swaps, nil
}

func (s *mongoSwapStore) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"product_id": productID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete swaps of product %s: %w", productID.Hex(), err)
	}
	return res.DeletedCount, nil
}

func (s *mongoSwapStore) DeleteByParty(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"$or": bson.A{bson.M{"buyer_id": userID}, bson.M{"seller_id": userID}}}
	res, err := s.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete swaps of user %s: %w", userID.Hex(), err)
	}
	return res.DeletedCount, nil
}
