package events

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Ranger is the subset of the redis client needed to read a stream backwards.
type Ranger interface {
	XRevRangeN(ctx context.Context, stream, start, stop string, count int64) *redis.XMessageSliceCmd
}

// Recent returns up to count of the newest events on stream, newest first.
// Messages that fail to decode are skipped.
func Recent(ctx context.Context, client Ranger, stream string, count int64) ([]Event, error) {
	messages, err := client.XRevRangeN(ctx, stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", stream, err)
	}

	out := make([]Event, 0, len(messages))
	for _, message := range messages {
		event, err := DecodeMessage(message)
		if err != nil {
			log.Printf("Warning: skipping undecodable message %s on %s: %v", message.ID, stream, err)
			continue
		}
		out = append(out, event)
	}
	return out, nil
}
