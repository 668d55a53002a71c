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
	"swappy/backend/internal/config"
	"swappy/backend/internal/models"
	"swappy/backend/internal/search"
	"swappy/backend/internal/store"
)

// IProductService defines the product listing operations.
type IProductService interface {
	Create(ctx context.Context, seller primitive.ObjectID, input models.ProductInput) (*models.Product, error)
	RecordView(ctx context.Context, productID primitive.ObjectID) (*models.Product, error)
	Edit(ctx context.Context, productID, caller primitive.ObjectID, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, productID, caller primitive.ObjectID) error
	ListOwn(ctx context.Context, caller primitive.ObjectID) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.ProductSearchDocument, error)
}

// productService implements IProductService.
type productService struct {
	products store.ProductStore
	swaps    store.SwapStore
	index    search.Index
	syncer   SearchSyncer
	cfg      *config.Config
	now      func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(products store.ProductStore, swaps store.SwapStore, index search.Index, syncer SearchSyncer, cfg *config.Config) IProductService {
	return &productService{
		products: products,
		swaps:    swaps,
		index:    index,
		syncer:   syncer,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *productService) Create(ctx context.Context, seller primitive.ObjectID, input models.ProductInput) (*models.Product, error) {
	if seller.IsZero() {
		return nil, apperr.ErrInvalidCredential
	}
	if strings.TrimSpace(input.ProductTitle) == "" {
		return nil, apperr.InvalidInput("product title is required")
	}

	now := s.now().UTC()
	product := &models.Product{
		ID:                   primitive.NewObjectID(),
		ProductTitle:         input.ProductTitle,
		ProductDescription:   input.ProductDescription,
		ProductImage:         input.ProductImage,
		SwapPreference:       input.SwapPreference,
		EstimatedRetailPrice: input.EstimatedRetailPrice,
		SellerID:             seller,
		PublishDate:          now,
		NumberOfViews:        0,
		IsVisible:            true,
		IsSold:               false,
		UpdatedAt:            now,
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return nil, err
	}

	s.sync(ctx, "upsert", product.ID, func() error { return s.syncer.ProductUpserted(ctx, product.ID) })
	return product, nil
}

// RecordView returns the product with its view counter already incremented.
func (s *productService) RecordView(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	return s.products.IncrementViews(ctx, productID)
}

// Edit applies the non-nil fields of patch when caller is the seller.
func (s *productService) Edit(ctx context.Context, productID, caller primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	if patch.ProductTitle != nil && strings.TrimSpace(*patch.ProductTitle) == "" {
		return nil, apperr.InvalidInput("product title must not be empty")
	}

	product, err := s.products.UpdateOwned(ctx, productID, caller, patch)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, s.diagnose(ctx, productID, caller)
	}
	if err != nil {
		return nil, err
	}

	s.sync(ctx, "upsert", productID, func() error { return s.syncer.ProductUpserted(ctx, productID) })
	return product, nil
}

// Delete removes the product and every swap on it.
func (s *productService) Delete(ctx context.Context, productID, caller primitive.ObjectID) error {
	err := s.products.DeleteOwned(ctx, productID, caller)
	if errors.Is(err, store.ErrNoMatch) {
		return s.diagnose(ctx, productID, caller)
	}
	if err != nil {
		return err
	}

	if n, err := s.swaps.DeleteByProduct(ctx, productID); err != nil {
		log.Printf("Warning: product %s deleted but its swaps were not: %v", productID.Hex(), err)
	} else if n > 0 {
		log.Printf("Deleted %d swaps of product %s", n, productID.Hex())
	}

	s.sync(ctx, "remove", productID, func() error { return s.syncer.ProductRemoved(ctx, productID) })
	return nil
}

// diagnose explains why a conditional {_id, seller_id} write matched nothing.
func (s *productService) diagnose(ctx context.Context, productID, caller primitive.ObjectID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !IsOwner(product, caller) {
		return ownershipError(caller, "product", productID.Hex())
	}
	// Owner matched on re-read, so the product changed hands or was recreated in between.
	return fmt.Errorf("conditional write on product %s matched nothing", productID.Hex())
}

func (s *productService) ListOwn(ctx context.Context, caller primitive.ObjectID) ([]models.Product, error) {
	return s.products.ListBySeller(ctx, caller)
}

func (s *productService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.products.ListAll(ctx)
}

// Search matches product titles against the search index, best match first.
func (s *productService) Search(ctx context.Context, query string) ([]models.ProductSearchDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.InvalidInput("search query must not be empty")
	}
	limit := 0
	if s.cfg != nil {
		limit = s.cfg.SearchResultLimit
	}
	return s.index.SearchByTitle(ctx, query, limit)
}

func (s *productService) sync(ctx context.Context, op string, productID primitive.ObjectID, schedule func() error) {
	if s.syncer == nil {
		return
	}
	if err := schedule(); err != nil {
		log.Printf("Warning: failed to schedule search %s for product %s: %v", op, productID.Hex(), err)
	}
}
