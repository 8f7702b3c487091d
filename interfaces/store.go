package interfaces

import (
	"context"

	"shardctl/domain"
)

// Store is the client of the coordination store, the single source of truth for
// shard membership and the bus that fans membership events out to every controller.
//
//go:generate moq -stub -out mock/store.go -pkg mock . Store
type Store interface {
	// Connect verifies the store is reachable.
	// Returns:
	// 1) nil on success;
	// 2) connection_error when the retry budget is exhausted.
	Connect(ctx context.Context) error

	// GetSnapshot returns the authoritative table of the service.
	// Returns:
	// 1) (table, nil) on success;
	// 2) entity_not_found when the service has no table yet;
	// 3) connection_error or internal_server_error otherwise.
	GetSnapshot(ctx context.Context, service string) (domain.ShardTable, error)

	// Initialize stores table only if the service has none. Returns whether it was written.
	Initialize(ctx context.Context, service string, table domain.ShardTable) (bool, error)

	// Publish atomically applies ev to the stored table and publishes it on the service channel.
	// Returns:
	// 1) nil once the store acknowledged the event;
	// 2) rejected_by_store when ev is not exactly the next version or does not apply;
	// 3) not_connected or timeout when the retry budget is exhausted.
	Publish(ctx context.Context, service string, ev domain.MembershipEvent) error

	// Subscribe opens the membership stream of the service.
	Subscribe(ctx context.Context, service string) (Subscription, error)
}

// Subscription is an infinite stream of membership updates for one service.
// The first update, and the first update after any reconnect, is a full snapshot.
//
//go:generate moq -stub -out mock/subscription.go -pkg mock . Subscription
type Subscription interface {
	// Next blocks until the next update. Errors are connection_error (budget exhausted),
	// entity_not_found (no table in the store yet) or the context error.
	Next(ctx context.Context) (domain.Update, error)

	// Close releases the subscription; a blocked Next returns. Safe to call concurrently and more than once.
	Close() error
}
