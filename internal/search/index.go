// Package search maintains the denormalised product search documents.
package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"swappy/backend/internal/db"
	"swappy/backend/internal/models"
)

// Index is the product search index contract.
type Index interface {
	Upsert(ctx context.Context, doc models.ProductSearchDocument) error
	PatchSold(ctx context.Context, productID primitive.ObjectID, sold bool) error
	Delete(ctx context.Context, productID primitive.ObjectID) error
	SearchByTitle(ctx context.Context, query string, limit int) ([]models.ProductSearchDocument, error)
}

type mongoIndex struct {
	coll *mongo.Collection
}

// NewMongoIndex returns an Index over the product_documents collection. It
// needs the text index created by db.EnsureIndexes.
func NewMongoIndex(database *mongo.Database) Index {
	return &mongoIndex{coll: database.Collection(db.ProductDocumentsCollection)}
}

func (i *mongoIndex) Upsert(ctx context.Context, doc models.ProductSearchDocument) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := i.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert search document %s: %w", doc.ID.Hex(), err)
	}
	return nil
}

// PatchSold is a no-op for products that were never indexed.
func (i *mongoIndex) PatchSold(ctx context.Context, productID primitive.ObjectID, sold bool) error {
	if _, err := i.coll.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": bson.M{"is_sold": sold}}); err != nil {
		return fmt.Errorf("failed to patch search document %s: %w", productID.Hex(), err)
	}
	return nil
}

func (i *mongoIndex) Delete(ctx context.Context, productID primitive.ObjectID) error {
	if _, err := i.coll.DeleteOne(ctx, bson.M{"_id": productID}); err != nil {
		return fmt.Errorf("failed to delete search document %s: %w", productID.Hex(), err)
	}
	return nil
}

// SearchByTitle runs a text search ranked by score. When that finds nothing
// it retries with a case-insensitive match on every query term, which also
// catches partial words the text index does not stem to.
func (i *mongoIndex) SearchByTitle(ctx context.Context, query string, limit int) ([]models.ProductSearchDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.ProductSearchDocument{}, nil
	}

	textOpts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}})
	if limit > 0 {
		textOpts.SetLimit(int64(limit))
	}
	docs, err := i.find(ctx, bson.M{"$text": bson.M{"$search": query}}, textOpts)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		return docs, nil
	}

	fallbackOpts := options.Find()
	if limit > 0 {
		fallbackOpts.SetLimit(int64(limit))
	}
	return i.find(ctx, TitleTermsFilter(query), fallbackOpts)
}

func (i *mongoIndex) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ProductSearchDocument, error) {
	cursor, err := i.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.ProductSearchDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return docs, nil
}

// TitleTermsFilter matches titles containing every whitespace-separated term
// of query, ignoring case. Terms are matched literally.
func TitleTermsFilter(query string) bson.M {
	terms := strings.Fields(query)
	clauses := make(bson.A, 0, len(terms))
	for _, term := range terms {
		clauses = append(clauses, bson.M{"product_title": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}})
	}
	if len(clauses) == 1 {
		return clauses[0].(bson.M)
	}
	return bson.M{"$and": clauses}
}
