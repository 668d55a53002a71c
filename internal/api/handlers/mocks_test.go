package handlers_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/models"
)

// --- Mocks ---

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, creds models.Credentials) (string, *models.User, error) {
	args := m.Called(ctx, creds)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockUserService) GetByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateMe(ctx context.Context, caller primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	args := m.Called(ctx, caller, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteMe(ctx context.Context, caller primitive.ObjectID) error {
	return m.Called(ctx, caller).Error(0)
}

// MockProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, seller primitive.ObjectID, input models.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, seller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) RecordView(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Edit(ctx context.Context, productID, caller primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	args := m.Called(ctx, productID, caller, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, productID, caller primitive.ObjectID) error {
	return m.Called(ctx, productID, caller).Error(0)
}

func (m *MockProductService) ListOwn(ctx context.Context, caller primitive.ObjectID) ([]models.Product, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductService) ListAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductService) Search(ctx context.Context, query string) ([]models.ProductSearchDocument, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductSearchDocument), args.Error(1)
}

// MockSwapService
type MockSwapService struct {
	mock.Mock
}

func (m *MockSwapService) Propose(ctx context.Context, productID, proposer primitive.ObjectID, proposal models.SwapProposal) (*models.Swap, error) {
	args := m.Called(ctx, productID, proposer, proposal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Swap), args.Error(1)
}

func (m *MockSwapService) Transition(ctx context.Context, swapID, caller primitive.ObjectID, status models.SwapStatus) (*models.Swap, error) {
	args := m.Called(ctx, swapID, caller, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Swap), args.Error(1)
}

func (m *MockSwapService) View(ctx context.Context, swapID, caller primitive.ObjectID) (*models.Swap, error) {
	args := m.Called(ctx, swapID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Swap), args.Error(1)
}

func (m *MockSwapService) ListVisibleTo(ctx context.Context, productID, caller primitive.ObjectID) ([]models.Swap, error) {
	args := m.Called(ctx, productID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Swap), args.Error(1)
}

func (m *MockSwapService) ListAsSeller(ctx context.Context, caller primitive.ObjectID) ([]models.Swap, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Swap), args.Error(1)
}

func (m *MockSwapService) ListAsBuyer(ctx context.Context, caller primitive.ObjectID) ([]models.Swap, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Swap), args.Error(1)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, string, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, filename, contentType, data)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockS3Storage) Download(ctx context.Context, key string) ([]byte, string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockS3Storage) Overwrite(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

func (m *MockS3Storage) PublicURL(key string) string {
	return m.Called(key).String(0)
}

// MockImageScheduler
type MockImageScheduler struct {
	mock.Mock
}

func (m *MockImageScheduler) ImageUploaded(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
