package interfaces

import (
	"context"

	"shardctl/domain"
)

// ShardOperator is the operator control surface of one service's controller.
// Mutations publish events; the local table changes only when the event comes back from the bus.
//
//go:generate moq -stub -out mock/shard_operator.go -pkg mock . ShardOperator
type ShardOperator interface {
	Spec() domain.ShardSpec
	State() domain.ControllerState
	Table() domain.ShardTable

	AddInstance(ctx context.Context, shardIndex uint32, address string) (domain.MembershipEvent, error)
	RemoveInstance(ctx context.Context, shardIndex uint32) (domain.MembershipEvent, error)
	MarkUnreachable(ctx context.Context, shardIndex uint32) (domain.MembershipEvent, error)
}
