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

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/db"
	"swappy/backend/internal/models"
)

type mongoProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(database *mongo.Database) ProductStore {
	return &mongoProductStore{coll: database.Collection(db.ProductsCollection)}
}

func (s *mongoProductStore) Insert(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *mongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	return &product, nil
}

// IncrementViews bumps the view counter server-side and returns the
// post-increment document, so concurrent readers never lose an increment.
func (s *mongoProductStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"number_of_views": 1}}, opts).Decode(&product)
	if err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	return &product, nil
}

func (s *mongoProductStore) UpdateOwned(ctx context.Context, id, sellerID primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	set := bson.M(patch.SetFields())
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "seller_id": sellerID}, bson.M{"$set": set}, opts).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id.Hex(), err)
	}
	return &product, nil
}

func (s *mongoProductStore) DeleteOwned(ctx context.Context, id, sellerID primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "seller_id": sellerID})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

func (s *mongoProductStore) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"is_sold": true, "updated_at": time.Now().UTC()}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark product %s sold: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("product", id.Hex())
	}
	return nil
}

func (s *mongoProductStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	return s.find(ctx, bson.M{"seller_id": sellerID})
}

func (s *mongoProductStore) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoProductStore) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publish_date", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := decodeAll[models.Product](ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// DeleteBySeller removes every product of a seller and returns their ids.
func (s *mongoProductStore) DeleteBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	products, err := s.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("failed to delete products of seller %s: %w", sellerID.Hex(), err)
	}
	return ids, nil
}
