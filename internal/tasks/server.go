package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"swappy/backend/internal/config"
)

// WorkerQueues returns the queues and their priorities a worker consumes.
// A worker only pulls from queues it has handlers for.
func WorkerQueues(isImageWorker, isBgWorker bool) map[string]int {
	queues := map[string]int{}
	if isBgWorker {
		queues[QueueCritical] = 6
		queues[QueueDefault] = 3
	}
	if isImageWorker {
		queues[QueueImages] = 5
	}
	return queues
}

// NewServer configures an Asynq server for a worker kind. Pair it with the
// mux from NewServeMux for the same kind.
func NewServer(cfg *config.Config, isImageWorker, isBgWorker bool) *asynq.Server {
	return asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Queues: WorkerQueues(isImageWorker, isBgWorker),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Attempt: %d/%d, Error: %v", task.Type(), string(task.Payload()), retried, maxRetry, err)
			}),
		},
	)
}

// NewServeMux registers the handlers for a worker. The background worker
// takes search and chat tasks, the image worker takes image tasks.
func NewServeMux(processor *TaskProcessor, isImageWorker, isBgWorker bool) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	if isBgWorker {
		mux.HandleFunc(TypeSearchUpsert, processor.HandleSearchUpsertTask)
		mux.HandleFunc(TypeSearchSold, processor.HandleSearchSoldTask)
		mux.HandleFunc(TypeSearchDelete, processor.HandleSearchDeleteTask)
		mux.HandleFunc(TypeChatBootstrap, processor.HandleChatBootstrapTask)
		fmt.Println("Registered background task handlers (search sync & chat bootstrap).")
	}

	if isImageWorker {
		mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
		fmt.Println("Registered image processing task handlers.")
	}

	return mux
}
