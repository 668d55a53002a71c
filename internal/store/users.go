package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/db"
	"swappy/backend/internal/models"
)

type mongoUserStore struct {
	coll *mongo.Collection
}

func NewUserStore(database *mongo.Database) UserStore {
	return &mongoUserStore{coll: database.Collection(db.UsersCollection)}
}

func (s *mongoUserStore) Insert(ctx context.Context, user *models.User) error {
	user.GenIDIfEmpty()
	_, err := s.coll.InsertOne(ctx, user)
	if db.IsMongoDuplicateKeyError(err) {
		return apperr.New(apperr.CodeAlreadyExists, "user with email %s already exists", user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *mongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &user, nil
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.CodeNotFound, "user with email %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	return &user, nil
}

func (s *mongoUserStore) Replace(ctx context.Context, user *models.User) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if db.IsMongoDuplicateKeyError(err) {
		return apperr.New(apperr.CodeAlreadyExists, "user with email %s already exists", user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user", user.ID.Hex())
	}
	return nil
}

func (s *mongoUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user", id.Hex())
	}
	return nil
}
