package myredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shardctl/domain"
	"shardctl/helpers"
	"shardctl/interfaces"
	"shardctl/service"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
)

const (
	tablePrefix   = "shard_table"
	channelPrefix = "shard_membership"
)

// TableKey is the redis key holding the encoded shard table of a service.
func TableKey(serviceID string) string {
	return tablePrefix + ":" + serviceID
}

// ChannelName is the pub/sub channel carrying the membership events of a service.
func ChannelName(serviceID string) string {
	return channelPrefix + ":" + serviceID
}

// Store is the redis implementation of interfaces.Store. The table key is the source of truth;
// Publish updates it with a WATCH/MULTI transaction and publishes the event in the same transaction,
// so the stored version and the event stream never disagree.
type Store struct {
	client redis.UniversalClient
	retry  service.RetryPolicy
	idle   time.Duration
	logger log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSubscriptionIdle sets how long a subscription waits for a message before pinging the server.
func WithSubscriptionIdle(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.idle = d
		}
	}
}

// NewStore creates a Store. Panics on nil client or logger.
func NewStore(client redis.UniversalClient, retry service.RetryPolicy, logger log.Logger, options ...StoreOption) *Store {
	s := &Store{
		client: helpers.NilPanic(client, "myredis.store.go: redis client is required"),
		retry:  retry,
		idle:   5 * time.Second,
		logger: log.With(helpers.NilPanic(logger, "myredis.store.go: logger is required"), "component", "store"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// do runs op under the retry policy, each attempt bounded by the attempt timeout.
// Errors wrapped with backoff.Permanent stop the retries and are returned unwrapped.
func (s *Store) do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		attemptCtx, cancel := s.retry.AttemptContext(ctx)
		defer cancel()
		return op(attemptCtx)
	}, s.retry.BackOff(ctx), func(err error, next time.Duration) {
		level.Debug(s.logger).Log("msg", "store operation failed, retrying", "op", name, "attempt", attempt, "retry_in", next, "err", err)
	})
}

func (s *Store) Connect(ctx context.Context) error {
	err := s.do(ctx, "ping", func(ctx context.Context) error {
		return s.client.Ping(ctx).Err()
	})
	if err != nil {
		return service.NewConnectionError("coordination store unreachable", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, serviceID string) (domain.ShardTable, error) {
	var table domain.ShardTable
	err := s.do(ctx, "get_snapshot", func(ctx context.Context) error {
		raw, err := s.client.Get(ctx, TableKey(serviceID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return backoff.Permanent(service.NewEntityNotFoundError(fmt.Sprintf("service %s has no shard table", serviceID), nil))
		}
		if err != nil {
			return err
		}
		table, err = domain.DecodeTable(raw)
		if err != nil {
			return backoff.Permanent(service.NewInternalServerError("Redis decode table error", fmt.Errorf("can't decode table of service %s (key='%s'), err: %w", serviceID, TableKey(serviceID), err)))
		}
		return nil
	})
	if err != nil {
		if service.ToShardError(err) == nil {
			err = service.NewConnectionError("Redis read table error", err)
		}
		return domain.ShardTable{}, err
	}
	return table, nil
}

func (s *Store) Initialize(ctx context.Context, serviceID string, table domain.ShardTable) (bool, error) {
	raw, err := domain.EncodeTable(table)
	if err != nil {
		return false, service.NewBadParameterError("invalid initial table", err)
	}
	var created bool
	err = s.do(ctx, "initialize", func(ctx context.Context) error {
		created, err = s.client.SetNX(ctx, TableKey(serviceID), raw, 0).Result()
		return err
	})
	if err != nil {
		return false, service.NewConnectionError("Redis write table error", err)
	}
	return created, nil
}

func (s *Store) Publish(ctx context.Context, serviceID string, ev domain.MembershipEvent) error {
	payload, err := domain.EncodeEvent(ev)
	if err != nil {
		return service.NewBadParameterError("invalid membership event", err)
	}
	key := TableKey(serviceID)
	attempt := 0

	err = s.do(ctx, "publish", func(ctx context.Context) error {
		attempt++
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return service.NewRejectedByStoreError(fmt.Sprintf("service %s has no shard table", serviceID), nil)
			}
			if err != nil {
				return err
			}
			table, err := domain.DecodeTable(raw)
			if err != nil {
				return service.NewInternalServerError("Redis decode table error", err)
			}
			// A previous attempt may have committed before its reply was lost.
			if attempt > 1 && alreadyApplied(table, ev) {
				return nil
			}
			if res := table.Apply(ev); !res.Applied() {
				return service.NewRejectedByStoreError(fmt.Sprintf("event version %d is %s: %s", ev.Version, res.Outcome, res.Reason), nil)
			}
			encoded, err := domain.EncodeTable(table)
			if err != nil {
				return service.NewInternalServerError("Redis encode table error", err)
			}
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Set(ctx, key, encoded, 0)
				p.Publish(ctx, ChannelName(serviceID), payload)
				return nil
			})
			return err
		}, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			return backoff.Permanent(service.NewRejectedByStoreError("shard table changed concurrently", err))
		case service.ToShardError(err) != nil:
			return backoff.Permanent(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if service.ToShardError(err) != nil {
		return err
	}
	if service.IsTimeout(err) {
		return service.NewTimeoutError("Redis publish timed out", err)
	}
	return service.NewNotConnectedError("Redis publish error", err)
}

// alreadyApplied reports whether table already carries ev as its latest change.
func alreadyApplied(table domain.ShardTable, ev domain.MembershipEvent) bool {
	if table.Version != ev.Version || ev.Instance.ShardIndex >= table.ShardCount {
		return false
	}
	cur := table.Instances[ev.Instance.ShardIndex]
	want := ev.Instance
	switch ev.Kind {
	case domain.EventAdded:
		want.Health = domain.HealthActive
	case domain.EventRemoved:
		want.Health = domain.HealthDraining
	case domain.EventUnreachable:
		want.Health = domain.HealthUnreachable
	}
	return cur == want
}

func (s *Store) Subscribe(ctx context.Context, serviceID string) (interfaces.Subscription, error) {
	sub := newSubscription(s, serviceID)
	if err := sub.connect(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}
