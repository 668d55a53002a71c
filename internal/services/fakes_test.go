package services

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/models"
	"swappy/backend/internal/store"
)

// --- In-memory stores ---

type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[primitive.ObjectID]models.User{}}
}

func (s *memUserStore) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.GenIDIfEmpty()
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.New(apperr.CodeAlreadyExists, "user with email %s already exists", user.Email)
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id.Hex())
	}
	return &u, nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "user with email %s not found", email)
}

func (s *memUserStore) Replace(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return apperr.NotFound("user", user.ID.Hex())
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return apperr.New(apperr.CodeAlreadyExists, "user with email %s already exists", user.Email)
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperr.NotFound("user", id.Hex())
	}
	delete(s.users, id)
	return nil
}

type memProductStore struct {
	mu           sync.Mutex
	products     map[primitive.ObjectID]models.Product
	markSoldErrs []error
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: map[primitive.ObjectID]models.Product{}}
}

func (s *memProductStore) put(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = p
	return p
}

func (s *memProductStore) Insert(ctx context.Context, product *models.Product) error {
	*product = s.put(*product)
	return nil
}

func (s *memProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id.Hex())
	}
	return &p, nil
}

func (s *memProductStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id.Hex())
	}
	p.NumberOfViews++
	s.products[id] = p
	return &p, nil
}

func (s *memProductStore) UpdateOwned(ctx context.Context, id, sellerID primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.SellerID != sellerID {
		return nil, store.ErrNoMatch
	}
	patch.Apply(&p)
	s.products[id] = p
	return &p, nil
}

func (s *memProductStore) DeleteOwned(ctx context.Context, id, sellerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.SellerID != sellerID {
		return store.ErrNoMatch
	}
	delete(s.products, id)
	return nil
}

func (s *memProductStore) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.markSoldErrs) > 0 {
		err := s.markSoldErrs[0]
		s.markSoldErrs = s.markSoldErrs[1:]
		if err != nil {
			return err
		}
	}
	p, ok := s.products[id]
	if !ok {
		return apperr.NotFound("product", id.Hex())
	}
	p.IsSold = true
	s.products[id] = p
	return nil
}

func (s *memProductStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memProductStore) ListAll(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *memProductStore) DeleteBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []primitive.ObjectID{}
	for id, p := range s.products {
		if p.SellerID == sellerID {
			ids = append(ids, id)
			delete(s.products, id)
		}
	}
	return ids, nil
}

type memSwapStore struct {
	mu    sync.Mutex
	swaps map[primitive.ObjectID]models.Swap
}

func newMemSwapStore() *memSwapStore {
	return &memSwapStore{swaps: map[primitive.ObjectID]models.Swap{}}
}

func (s *memSwapStore) Insert(ctx context.Context, swap *models.Swap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if swap.ID.IsZero() {
		swap.ID = primitive.NewObjectID()
	}
	s.swaps[swap.ID] = *swap
	return nil
}

func (s *memSwapStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Swap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.swaps[id]
	if !ok {
		return nil, apperr.NotFound("swap", id.Hex())
	}
	return &sw, nil
}

func (s *memSwapStore) TransitionFromPending(ctx context.Context, id primitive.ObjectID, status models.SwapStatus) (*models.Swap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.swaps[id]
	if !ok || sw.SwapStatus != models.SwapStatusPending {
		return nil, store.ErrNoMatch
	}
	sw.SwapStatus = status
	s.swaps[id] = sw
	return &sw, nil
}

func (s *memSwapStore) MarkViewedBySeller(ctx context.Context, id primitive.ObjectID) (*models.Swap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.swaps[id]
	if !ok {
		return nil, apperr.NotFound("swap", id.Hex())
	}
	sw.ViewedBySeller = true
	s.swaps[id] = sw
	return &sw, nil
}

func (s *memSwapStore) filter(keep func(models.Swap) bool) []models.Swap {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Swap{}
	for _, sw := range s.swaps {
		if keep(sw) {
			out = append(out, sw)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreationDate.Equal(out[j].CreationDate) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].CreationDate.Before(out[j].CreationDate)
	})
	return out
}

func (s *memSwapStore) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Swap, error) {
	return s.filter(func(sw models.Swap) bool { return sw.ProductID == productID }), nil
}

func (s *memSwapStore) ListByProductAndBuyer(ctx context.Context, productID, buyerID primitive.ObjectID) ([]models.Swap, error) {
	return s.filter(func(sw models.Swap) bool { return sw.ProductID == productID && sw.BuyerID == buyerID }), nil
}

func (s *memSwapStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Swap, error) {
	return s.filter(func(sw models.Swap) bool { return sw.SellerID == sellerID }), nil
}

func (s *memSwapStore) ListByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Swap, error) {
	return s.filter(func(sw models.Swap) bool { return sw.BuyerID == buyerID }), nil
}

func (s *memSwapStore) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	return s.deleteWhere(func(sw models.Swap) bool { return sw.ProductID == productID }), nil
}

func (s *memSwapStore) DeleteByParty(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.deleteWhere(func(sw models.Swap) bool { return sw.BuyerID == userID || sw.SellerID == userID }), nil
}

func (s *memSwapStore) deleteWhere(match func(models.Swap) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sw := range s.swaps {
		if match(sw) {
			delete(s.swaps, id)
			n++
		}
	}
	return n
}

// --- Mocks ---

type MockSearchSyncer struct {
	mock.Mock
}

func (m *MockSearchSyncer) ProductUpserted(ctx context.Context, productID primitive.ObjectID) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockSearchSyncer) ProductSold(ctx context.Context, productID primitive.ObjectID) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockSearchSyncer) ProductRemoved(ctx context.Context, productIDs ...primitive.ObjectID) error {
	return m.Called(ctx, productIDs).Error(0)
}

type MockChatScheduler struct {
	mock.Mock
}

func (m *MockChatScheduler) ScheduleChat(ctx context.Context, swap *models.Swap) error {
	return m.Called(ctx, swap).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, eventType string, data any) error {
	return m.Called(ctx, eventType, data).Error(0)
}

type MockSearchIndex struct {
	mock.Mock
}

func (m *MockSearchIndex) Upsert(ctx context.Context, doc models.ProductSearchDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockSearchIndex) PatchSold(ctx context.Context, productID primitive.ObjectID, sold bool) error {
	return m.Called(ctx, productID, sold).Error(0)
}

func (m *MockSearchIndex) Delete(ctx context.Context, productID primitive.ObjectID) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockSearchIndex) SearchByTitle(ctx context.Context, query string, limit int) ([]models.ProductSearchDocument, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductSearchDocument), args.Error(1)
}
