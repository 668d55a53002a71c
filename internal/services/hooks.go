package services

import (
	"context"
	"log"

	"swappy/backend/internal/events"
	"swappy/backend/internal/models"
)

// SwapHook is a side effect run after a swap write has committed.
type SwapHook struct {
	Name string
	Run  func(ctx context.Context, swap *models.Swap) error
}

// SwapHooks is an ordered hook list per swap status. Status-specific hooks
// run first, then the hooks registered for every status.
type SwapHooks struct {
	byStatus map[models.SwapStatus][]SwapHook
	always   []SwapHook
}

func NewSwapHooks() *SwapHooks {
	return &SwapHooks{byStatus: map[models.SwapStatus][]SwapHook{}}
}

func (h *SwapHooks) On(status models.SwapStatus, hooks ...SwapHook) *SwapHooks {
	h.byStatus[status] = append(h.byStatus[status], hooks...)
	return h
}

func (h *SwapHooks) Always(hooks ...SwapHook) *SwapHooks {
	h.always = append(h.always, hooks...)
	return h
}

// For returns the hooks that fire for status, in order.
func (h *SwapHooks) For(status models.SwapStatus) []SwapHook {
	if h == nil {
		return nil
	}
	hooks := make([]SwapHook, 0, len(h.byStatus[status])+len(h.always))
	hooks = append(hooks, h.byStatus[status]...)
	return append(hooks, h.always...)
}

// Fire runs every hook for the swap's current status. A failing hook is
// logged and does not stop the rest. The names of failed hooks are returned.
func (h *SwapHooks) Fire(ctx context.Context, swap *models.Swap) []string {
	var failed []string
	for _, hook := range h.For(swap.SwapStatus) {
		if err := hook.Run(ctx, swap); err != nil {
			log.Printf("Warning: post-commit hook %s failed for swap %s (%s): %v", hook.Name, swap.ID.Hex(), swap.SwapStatus, err)
			failed = append(failed, hook.Name)
		}
	}
	return failed
}

// DefaultSwapHooks wires the standard side effects. Nil collaborators are skipped.
//
//	ACCEPTED -> search.sold, chat.bootstrap
//	any      -> events.publish
func DefaultSwapHooks(search SearchSyncer, chats ChatScheduler, publisher EventPublisher) *SwapHooks {
	hooks := NewSwapHooks()
	if search != nil {
		hooks.On(models.SwapStatusAccepted, SwapHook{Name: "search.sold", Run: func(ctx context.Context, swap *models.Swap) error {
			return search.ProductSold(ctx, swap.ProductID)
		}})
	}
	if chats != nil {
		hooks.On(models.SwapStatusAccepted, SwapHook{Name: "chat.bootstrap", Run: chats.ScheduleChat})
	}
	if publisher != nil {
		hooks.Always(SwapHook{Name: "events.publish", Run: func(ctx context.Context, swap *models.Swap) error {
			eventType := events.SwapStatusChanged
			if swap.SwapStatus == models.SwapStatusPending {
				eventType = events.SwapProposed
			}
			return publisher.Publish(ctx, eventType, events.SwapEvent{
				SwapID:    swap.ID.Hex(),
				ProductID: swap.ProductID.Hex(),
				SellerID:  swap.SellerID.Hex(),
				BuyerID:   swap.BuyerID.Hex(),
				Status:    string(swap.SwapStatus),
			})
		}})
	}
	return hooks
}
