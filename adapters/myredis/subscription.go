package myredis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shardctl/domain"
	"shardctl/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
)

var errSubscriptionClosed = errors.New("subscription closed")

// subscription turns the redis channel of one service into a stream of updates.
// Every (re)subscribe is followed by a snapshot read, so events published while the
// connection was down are covered by the snapshot instead of being lost.
type subscription struct {
	store   *Store
	service string
	logger  log.Logger

	mu           sync.Mutex
	ps           *redis.PubSub
	closed       bool
	needSnapshot bool
}

func newSubscription(store *Store, serviceID string) *subscription {
	return &subscription{
		store:   store,
		service: serviceID,
		logger:  log.With(store.logger, "service", serviceID, "channel", ChannelName(serviceID)),
	}
}

// connect subscribes to the channel and waits for the confirmation.
func (s *subscription) connect(ctx context.Context) error {
	var ps *redis.PubSub
	err := s.store.do(ctx, "subscribe", func(ctx context.Context) error {
		ps = s.store.client.Subscribe(ctx, ChannelName(s.service))
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			return err
		}
		return nil
	})
	if err != nil {
		return service.NewConnectionError("Redis subscribe error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = ps.Close()
		return errSubscriptionClosed
	}
	s.ps = ps
	s.needSnapshot = true
	return nil
}

// drop discards a broken pub/sub connection; the next call to Next resubscribes.
func (s *subscription) drop(ps *redis.PubSub) {
	s.mu.Lock()
	if s.ps == ps {
		s.ps = nil
	}
	s.mu.Unlock()
	_ = ps.Close()
}

func (s *subscription) current() (*redis.PubSub, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, errSubscriptionClosed
	}
	return s.ps, s.needSnapshot, nil
}

func (s *subscription) Next(ctx context.Context) (domain.Update, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Update{}, err
		}
		ps, needSnapshot, err := s.current()
		if err != nil {
			return domain.Update{}, err
		}
		if ps == nil {
			level.Warn(s.logger).Log("msg", "resubscribing")
			if err := s.connect(ctx); err != nil {
				return domain.Update{}, err
			}
			continue
		}

		if needSnapshot {
			table, err := s.store.GetSnapshot(ctx, s.service)
			if err != nil {
				return domain.Update{}, err
			}
			s.mu.Lock()
			s.needSnapshot = false
			s.mu.Unlock()
			return domain.Update{Snapshot: &table}, nil
		}

		msg, err := ps.ReceiveTimeout(ctx, s.store.idle)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Update{}, ctx.Err()
			}
			if _, _, closedErr := s.current(); closedErr != nil {
				return domain.Update{}, closedErr
			}
			if service.IsTimeout(err) {
				if pingErr := ps.Ping(ctx); pingErr == nil {
					continue
				}
			}
			level.Warn(s.logger).Log("msg", "subscription connection lost", "err", err)
			s.drop(ps)
			continue
		}

		switch m := msg.(type) {
		case *redis.Message:
			ev, err := domain.DecodeEvent([]byte(m.Payload))
			if err != nil {
				level.Error(s.logger).Log("msg", "undecodable membership event, resynchronizing", "err", err)
				s.mu.Lock()
				s.needSnapshot = true
				s.mu.Unlock()
				continue
			}
			return domain.Update{Event: &ev}, nil
		case *redis.Subscription, *redis.Pong:
		default:
			level.Debug(s.logger).Log("msg", "unexpected pub/sub message", "type", fmt.Sprintf("%T", m))
		}
	}
}

func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ps := s.ps
	s.ps = nil
	s.mu.Unlock()
	if ps != nil {
		return ps.Close()
	}
	return nil
}
