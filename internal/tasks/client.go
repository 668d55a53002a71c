package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/config"
	"swappy/backend/internal/models"
)

// TaskType defines the type of a background task.
const (
	TypeSearchUpsert  = "search:upsert"
	TypeSearchSold    = "search:sold"
	TypeSearchDelete  = "search:delete"
	TypeChatBootstrap = "chat:bootstrap"
	TypeImageProcess  = "image:process"
)

// Queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueImages   = "images"
)

// IAsynqClient defines the Asynq client methods used for enqueuing.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RedisOpt builds the asynq connection options from config.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

func NewClient(cfg *config.Config) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

type ProductTaskPayload struct {
	ProductID string `json:"product_id"`
}

type ChatTaskPayload struct {
	SwapID   string `json:"swap_id"`
	BuyerID  string `json:"buyer_id"`
	SellerID string `json:"seller_id"`
}

type ImageTaskPayload struct {
	S3Key string `json:"s3_key"`
}

// Dispatcher enqueues the out-of-band side effects of record store writes.
// It satisfies services.SearchSyncer and services.ChatScheduler.
type Dispatcher struct {
	client   IAsynqClient
	maxRetry int
}

func NewDispatcher(client IAsynqClient, maxRetry int) *Dispatcher {
	return &Dispatcher{client: client, maxRetry: maxRetry}
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType string, payload any, queue string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", taskType, err)
	}
	info, err := d.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), asynq.Queue(queue), asynq.MaxRetry(d.maxRetry))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskType, err)
	}
	fmt.Printf("Enqueued %s task %s\n", taskType, info.ID)
	return nil
}

func (d *Dispatcher) ProductUpserted(ctx context.Context, productID primitive.ObjectID) error {
	return d.enqueue(ctx, TypeSearchUpsert, ProductTaskPayload{ProductID: productID.Hex()}, QueueDefault)
}

func (d *Dispatcher) ProductSold(ctx context.Context, productID primitive.ObjectID) error {
	return d.enqueue(ctx, TypeSearchSold, ProductTaskPayload{ProductID: productID.Hex()}, QueueCritical)
}

func (d *Dispatcher) ProductRemoved(ctx context.Context, productIDs ...primitive.ObjectID) error {
	for _, id := range productIDs {
		if err := d.enqueue(ctx, TypeSearchDelete, ProductTaskPayload{ProductID: id.Hex()}, QueueDefault); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) ScheduleChat(ctx context.Context, swap *models.Swap) error {
	return d.enqueue(ctx, TypeChatBootstrap, ChatTaskPayload{
		SwapID:   swap.ID.Hex(),
		BuyerID:  swap.BuyerID.Hex(),
		SellerID: swap.SellerID.Hex(),
	}, QueueCritical)
}

// ImageUploaded schedules downsizing of a freshly uploaded image.
func (d *Dispatcher) ImageUploaded(ctx context.Context, key string) error {
	return d.enqueue(ctx, TypeImageProcess, ImageTaskPayload{S3Key: key}, QueueImages)
}
