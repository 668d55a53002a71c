package api

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"swappy/backend/internal/api/handlers"
	"swappy/backend/internal/auth"
	"swappy/backend/internal/config"
	"swappy/backend/internal/events"
	"swappy/backend/internal/search"
	"swappy/backend/internal/services"
	"swappy/backend/internal/storage"
	"swappy/backend/internal/store"
	"swappy/backend/internal/tasks"
)

// swapEventsMaxLen caps the swap event stream.
const swapEventsMaxLen = 10000

// Dependencies are the collaborators the HTTP handlers are built from.
type Dependencies struct {
	Users    services.IUserService
	Products services.IProductService
	Swaps    services.ISwapService
	Storage  storage.IS3Storage
	Images   handlers.ImageScheduler
	Resolver auth.IResolver

	// Service API only.
	ProductStore store.ProductStore
	Syncer       services.SearchSyncer
	Events       events.Ranger
}

// NewDependencies wires the record stores, task dispatcher, event publisher
// and services for the API process.
func NewDependencies(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient tasks.IAsynqClient) (*Dependencies, error) {
	userStore := store.NewUserStore(db)
	productStore := store.NewProductStore(db)
	swapStore := store.NewSwapStore(db)
	index := search.NewMongoIndex(db)

	dispatcher := tasks.NewDispatcher(taskClient, cfg.TaskMaxRetry)
	publisher := events.NewPublisher(rdb, events.SwapEventsStream, swapEventsMaxLen)
	hooks := services.DefaultSwapHooks(dispatcher, dispatcher, publisher)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Users:        services.NewUserService(userStore, productStore, swapStore, dispatcher, cfg),
		Products:     services.NewProductService(productStore, swapStore, index, dispatcher, cfg),
		Swaps:        services.NewSwapService(swapStore, productStore, hooks),
		Storage:      s3StorageService,
		Images:       dispatcher,
		Resolver:     auth.NewResolver(cfg.JwtSecret),
		ProductStore: productStore,
		Syncer:       dispatcher,
		Events:       rdb,
	}, nil
}
