package tasks

import (
	"context"
	"io"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/models"
	"swappy/backend/internal/storage"
)

type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) Insert(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockProductStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockProductStore) UpdateOwned(ctx context.Context, id, sellerID primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	args := m.Called(ctx, id, sellerID, patch)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockProductStore) DeleteOwned(ctx context.Context, id, sellerID primitive.ObjectID) error {
	return m.Called(ctx, id, sellerID).Error(0)
}

func (m *MockProductStore) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	args := m.Called(ctx, sellerID)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Error(1)
}

func (m *MockProductStore) ListAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Error(1)
}

func (m *MockProductStore) DeleteBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, sellerID)
	ids, _ := args.Get(0).([]primitive.ObjectID)
	return ids, args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Insert(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserStore) Replace(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Upsert(ctx context.Context, doc models.ProductSearchDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockIndex) PatchSold(ctx context.Context, productID primitive.ObjectID, sold bool) error {
	return m.Called(ctx, productID, sold).Error(0)
}

func (m *MockIndex) Delete(ctx context.Context, productID primitive.ObjectID) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockIndex) SearchByTitle(ctx context.Context, query string, limit int) ([]models.ProductSearchDocument, error) {
	args := m.Called(ctx, query, limit)
	docs, _ := args.Get(0).([]models.ProductSearchDocument)
	return docs, args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) EnsureChannel(ctx context.Context, swapID, buyerID, sellerID primitive.ObjectID) (*models.ChatChannel, error) {
	args := m.Called(ctx, swapID, buyerID, sellerID)
	c, _ := args.Get(0).(*models.ChatChannel)
	return c, args.Error(1)
}

// memStorage keeps objects in memory so image handlers can round-trip bytes.
type memStorage struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (s *memStorage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", "", err
	}
	key := "uploads/" + filename
	s.objects[key] = data
	s.contentTypes[key] = contentType
	return s.PublicURL(key), key, nil
}

func (s *memStorage) Download(ctx context.Context, key string) ([]byte, string, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return data, s.contentTypes[key], nil
}

func (s *memStorage) Overwrite(ctx context.Context, key, contentType string, data []byte) error {
	s.objects[key] = data
	s.contentTypes[key] = contentType
	return nil
}

func (s *memStorage) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}
