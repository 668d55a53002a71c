package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/db"
	"swappy/backend/internal/models"
	"swappy/backend/internal/store"
)

// ISwapService defines the swap negotiation operations.
type ISwapService interface {
	Propose(ctx context.Context, productID, proposer primitive.ObjectID, proposal models.SwapProposal) (*models.Swap, error)
	Transition(ctx context.Context, swapID, caller primitive.ObjectID, status models.SwapStatus) (*models.Swap, error)
	View(ctx context.Context, swapID, caller primitive.ObjectID) (*models.Swap, error)
	ListVisibleTo(ctx context.Context, productID, caller primitive.ObjectID) ([]models.Swap, error)
	ListAsSeller(ctx context.Context, caller primitive.ObjectID) ([]models.Swap, error)
	ListAsBuyer(ctx context.Context, caller primitive.ObjectID) ([]models.Swap, error)
}

// swapService implements ISwapService.
type swapService struct {
	swaps      store.SwapStore
	products   store.ProductStore
	hooks      *SwapHooks
	maxRetries int
	now        func() time.Time
}

// NewSwapService creates a new SwapService. hooks may be nil.
func NewSwapService(swaps store.SwapStore, products store.ProductStore, hooks *SwapHooks) ISwapService {
	if hooks == nil {
		hooks = NewSwapHooks()
	}
	return &swapService{
		swaps:      swaps,
		products:   products,
		hooks:      hooks,
		maxRetries: db.DefaultMaxRetries,
		now:        time.Now,
	}
}

// Propose creates a PENDING swap on productID. The seller always comes from
// the stored product.
func (s *swapService) Propose(ctx context.Context, productID, proposer primitive.ObjectID, proposal models.SwapProposal) (*models.Swap, error) {
	if proposer.IsZero() {
		return nil, apperr.ErrInvalidCredential
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if IsOwner(product, proposer) {
		return nil, apperr.ErrSelfSwap
	}

	now := s.now().UTC()
	swap := &models.Swap{
		ID:                     primitive.NewObjectID(),
		ProductID:              product.ID,
		SellerID:               product.SellerID,
		BuyerID:                proposer,
		SwapProductTitle:       proposal.SwapProductTitle,
		SwapProductDescription: proposal.SwapProductDescription,
		SwapProductImage:       proposal.SwapProductImage,
		EstimatedRetailPrice:   proposal.EstimatedRetailPrice,
		ViewedBySeller:         false,
		SwapStatus:             models.SwapStatusPending,
		CreationDate:           now,
		UpdatedAt:              now,
	}
	if err := s.swaps.Insert(ctx, swap); err != nil {
		return nil, fmt.Errorf("failed to create swap on product %s: %w", productID.Hex(), err)
	}

	s.hooks.Fire(ctx, swap)
	return swap, nil
}

// Transition moves a PENDING swap to a terminal status.
//
// The checks run in a fixed order: requested status, existence, current
// status, caller role. The write itself is conditional on the swap still
// being PENDING, so of two racing transitions exactly one wins.
func (s *swapService) Transition(ctx context.Context, swapID, caller primitive.ObjectID, status models.SwapStatus) (*models.Swap, error) {
	if !status.IsValidTarget() {
		return nil, apperr.InvalidInput("invalid swap status %q: must be one of ACCEPTED, DENIED, CANCELLED", status)
	}

	current, err := s.swaps.FindByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if current.SwapStatus != models.SwapStatusPending {
		return nil, apperr.ErrAlreadyResolved
	}

	var role Owned
	switch status {
	case models.SwapStatusAccepted, models.SwapStatusDenied:
		role = AsSeller(current)
	case models.SwapStatusCancelled:
		role = AsBuyer(current)
	}
	if !IsOwner(role, caller) {
		return nil, apperr.New(apperr.CodeUnauthorizedTransition, "user %s cannot change swap %s to %s", caller.Hex(), swapID.Hex(), status)
	}

	updated, err := s.swaps.TransitionFromPending(ctx, swapID, status)
	if errors.Is(err, store.ErrNoMatch) {
		return nil, apperr.ErrAlreadyResolved
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition swap %s: %w", swapID.Hex(), err)
	}

	if status == models.SwapStatusAccepted {
		// The search.sold task re-asserts the flag, so a failure here is repaired there.
		err := db.WithRetries(func() error {
			return s.products.MarkSold(ctx, updated.ProductID)
		}, s.maxRetries, db.IsTransientError)
		if err != nil {
			log.Printf("Warning: failed to mark product %s sold after accepting swap %s: %v", updated.ProductID.Hex(), swapID.Hex(), err)
		}
	}

	s.hooks.Fire(ctx, updated)
	return updated, nil
}

// View returns a swap to one of its two parties. A seller view marks the swap
// as seen.
func (s *swapService) View(ctx context.Context, swapID, caller primitive.ObjectID) (*models.Swap, error) {
	swap, err := s.swaps.FindByID(ctx, swapID)
	if err != nil {
		return nil, err
	}

	switch {
	case IsOwner(AsSeller(swap), caller):
		if swap.ViewedBySeller {
			return swap, nil
		}
		return s.swaps.MarkViewedBySeller(ctx, swapID)
	case IsOwner(AsBuyer(swap), caller):
		return swap, nil
	default:
		return nil, ownershipError(caller, "swap", swapID.Hex())
	}
}

// ListVisibleTo returns the product's swaps the caller may see: all of them
// for the seller, only their own for anyone else. Oldest first.
func (s *swapService) ListVisibleTo(ctx context.Context, productID, caller primitive.ObjectID) ([]models.Swap, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if IsOwner(product, caller) {
		return s.swaps.ListByProduct(ctx, productID)
	}
	return s.swaps.ListByProductAndBuyer(ctx, productID, caller)
}

func (s *swapService) ListAsSeller(ctx context.Context, caller primitive.ObjectID) ([]models.Swap, error) {
	return s.swaps.ListBySeller(ctx, caller)
}

func (s *swapService) ListAsBuyer(ctx context.Context, caller primitive.ObjectID) ([]models.Swap, error) {
	return s.swaps.ListByBuyer(ctx, caller)
}
