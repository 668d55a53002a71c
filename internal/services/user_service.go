package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/auth"
	"swappy/backend/internal/config"
	"swappy/backend/internal/models"
	"swappy/backend/internal/store"
)

// IUserService defines the interface for user-related operations.
type IUserService interface {
	Register(ctx context.Context, input models.RegisterInput) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (string, *models.User, error)
	GetByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateMe(ctx context.Context, caller primitive.ObjectID, patch models.UserPatch) (*models.User, error)
	DeleteMe(ctx context.Context, caller primitive.ObjectID) error
}

// userService implements IUserService.
type userService struct {
	users    store.UserStore
	products store.ProductStore
	swaps    store.SwapStore
	syncer   SearchSyncer
	cfg      *config.Config
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore, products store.ProductStore, swaps store.SwapStore, syncer SearchSyncer, cfg *config.Config) IUserService {
	return &userService{
		users:    users,
		products: products,
		swaps:    swaps,
		syncer:   syncer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	if input.Password == "" {
		return nil, apperr.InvalidInput("Password is required")
	}
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, apperr.InvalidInput("Email is required")
	}

	if err := s.ensureEmailFree(ctx, email, primitive.NilObjectID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		FullName:          input.FullName,
		Email:             email,
		PhoneNumber:       input.PhoneNumber,
		PasswordHash:      hash,
		ProfilePictureURL: input.ProfilePictureURL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	user.GenID()

	// The unique index still catches a racing registration the pre-check missed.
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a signed token.
func (s *userService) Login(ctx context.Context, creds models.Credentials) (string, *models.User, error) {
	invalid := apperr.New(apperr.CodeInvalidCredential, "Invalid email or password")

	user, err := s.users.FindByEmail(ctx, NormalizeEmail(creds.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return "", nil, invalid
	}
	if err != nil {
		return "", nil, err
	}
	if !auth.CheckPasswordHash(creds.Password, user.PasswordHash) {
		return "", nil, invalid
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateMe applies the non-nil fields of patch to the caller's profile.
func (s *userService) UpdateMe(ctx context.Context, caller primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	user, err := s.users.FindByID(ctx, caller)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, apperr.InvalidInput("Email must not be empty")
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, apperr.InvalidInput("Password must not be empty")
		}
		user.PasswordHash = hash
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = *patch.PhoneNumber
	}
	if patch.ProfilePictureURL != nil {
		user.ProfilePictureURL = *patch.ProfilePictureURL
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Replace(ctx, user); err != nil {
		return nil, err
	}

	// Search documents carry the seller's name and avatar.
	if patch.FullName != nil || patch.ProfilePictureURL != nil {
		s.resyncProducts(ctx, user.ID)
	}
	return user, nil
}

// DeleteMe removes the caller together with their products and every swap
// they take part in.
func (s *userService) DeleteMe(ctx context.Context, caller primitive.ObjectID) error {
	if _, err := s.users.FindByID(ctx, caller); err != nil {
		return err
	}

	productIDs, err := s.products.DeleteBySeller(ctx, caller)
	if err != nil {
		return fmt.Errorf("failed to delete products of user %s: %w", caller.Hex(), err)
	}
	if _, err := s.swaps.DeleteByParty(ctx, caller); err != nil {
		return fmt.Errorf("failed to delete swaps of user %s: %w", caller.Hex(), err)
	}
	if err := s.users.Delete(ctx, caller); err != nil {
		return err
	}

	if s.syncer != nil && len(productIDs) > 0 {
		if err := s.syncer.ProductRemoved(ctx, productIDs...); err != nil {
			log.Printf("Warning: failed to schedule search removal for %d products of user %s: %v", len(productIDs), caller.Hex(), err)
		}
	}
	return nil
}

// ensureEmailFree fails with already_exists when email belongs to a user other than self.
func (s *userService) ensureEmailFree(ctx context.Context, email string, self primitive.ObjectID) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return apperr.New(apperr.CodeAlreadyExists, "user with email %s already exists", email)
	}
	return nil
}

func (s *userService) resyncProducts(ctx context.Context, sellerID primitive.ObjectID) {
	if s.syncer == nil {
		return
	}
	products, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Printf("Warning: failed to list products of user %s for search resync: %v", sellerID.Hex(), err)
		return
	}
	for _, p := range products {
		if err := s.syncer.ProductUpserted(ctx, p.ID); err != nil {
			log.Printf("Warning: failed to schedule search upsert for product %s: %v", p.ID.Hex(), err)
		}
	}
}
