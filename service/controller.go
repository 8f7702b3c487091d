package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"shardctl/domain"
	"shardctl/helpers"
	"shardctl/interfaces"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ControllerConfig holds the per-service settings of a Controller.
//
// Bootstrap lists one address per shard; it is written to the store only when the service has no
// table yet. PublishRetry bounds how often an operator mutation is rebuilt after losing a race
// against another writer. ReloadBackOff paces Loading retries.
type ControllerConfig struct {
	Spec          domain.ShardSpec
	Bootstrap     []string
	PublishRetry  RetryPolicy
	ReloadBackOff time.Duration
}

// Controller keeps one service's shard table in sync with the coordination store and the local
// classifier. Run is the only goroutine that mutates the table or programs the dataplane; operator
// calls publish events and the table changes when those events come back through the subscription,
// the same path every other host takes.
//
// States: Starting → Loading → Serving → Draining → Stopped. Any store or dataplane failure while
// Serving returns to Loading, which resubscribes and reprograms every slot from a fresh snapshot.
type Controller struct {
	cfg        ControllerConfig
	store      interfaces.Store
	programmer interfaces.Programmer
	logger     log.Logger

	state     atomic.Int32
	table     atomic.Pointer[domain.ShardTable]
	observers []func(domain.ControllerState)

	// opsMu orders operator admission against the transition to Draining.
	opsMu sync.Mutex
	ops   sync.WaitGroup
}

// NewController creates a Controller. Panics on nil store, programmer or logger.
func NewController(cfg ControllerConfig, store interfaces.Store, programmer interfaces.Programmer, logger log.Logger) *Controller {
	helpers.StrPanic(cfg.Spec.ServiceID, "service.controller.go: service id is required")
	if cfg.ReloadBackOff <= 0 {
		cfg.ReloadBackOff = time.Second
	}
	c := &Controller{
		cfg:        cfg,
		store:      helpers.NilPanic(store, "service.controller.go: store is required"),
		programmer: helpers.NilPanic(programmer, "service.controller.go: programmer is required"),
		logger:     log.With(helpers.NilPanic(logger, "service.controller.go: logger is required"), "component", "controller", "service", cfg.Spec.ServiceID),
	}
	c.table.Store(&domain.ShardTable{ShardCount: cfg.Spec.ShardCount})
	return c
}

// OnStateChange registers fn to be called, from Run, on every state transition. Not safe to call once Run started.
func (c *Controller) OnStateChange(fn func(domain.ControllerState)) {
	c.observers = append(c.observers, fn)
}

func (c *Controller) Spec() domain.ShardSpec {
	return c.cfg.Spec
}

func (c *Controller) State() domain.ControllerState {
	return domain.ControllerState(c.state.Load())
}

// Table returns a copy of the last table installed in the dataplane.
func (c *Controller) Table() domain.ShardTable {
	return c.table.Load().Clone()
}

func (c *Controller) setState(s domain.ControllerState) {
	prev := domain.ControllerState(c.state.Swap(int32(s)))
	if prev == s {
		return
	}
	level.Info(c.logger).Log("msg", "controller state changed", "from", prev, "to", s)
	for _, fn := range c.observers {
		fn(s)
	}
}

// Run drives the controller until ctx is cancelled, then drains and returns nil.
// It returns an error only if the store can never be reached while Starting.
func (c *Controller) Run(ctx context.Context) error {
	defer c.drain()

	c.setState(domain.StateStarting)
	if err := c.store.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		level.Error(c.logger).Log("msg", "coordination store unreachable", "err", err)
		return fmt.Errorf("controller %s: connect store: %w", c.cfg.Spec.ServiceID, err)
	}

	for {
		c.setState(domain.StateLoading)
		sub, err := c.load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			level.Warn(c.logger).Log("msg", "load failed, retrying", "err", err, "retry_in", c.cfg.ReloadBackOff)
			if !sleepCtx(ctx, c.cfg.ReloadBackOff) {
				return nil
			}
			continue
		}

		c.setState(domain.StateServing)
		err = c.serve(ctx, sub)
		_ = sub.Close()
		if ctx.Err() != nil {
			return nil
		}
		level.Error(c.logger).Log("msg", "serving interrupted, resynchronizing", "err", err)
	}
}

// load subscribes and installs the first snapshot of the subscription. Subscribing before reading
// the snapshot leaves no window in which an event could be missed.
func (c *Controller) load(ctx context.Context) (interfaces.Subscription, error) {
	sub, err := c.store.Subscribe(ctx, c.cfg.Spec.ServiceID)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = sub.Close() })
	defer stop()

	for {
		upd, err := sub.Next(ctx)
		if err != nil {
			if IsEntityNotFoundError(err) && len(c.cfg.Bootstrap) > 0 {
				if err := c.bootstrap(ctx); err != nil {
					_ = sub.Close()
					return nil, err
				}
				continue
			}
			_ = sub.Close()
			return nil, err
		}
		if upd.Snapshot == nil {
			continue
		}
		if err := c.install(*upd.Snapshot, true); err != nil {
			_ = sub.Close()
			return nil, err
		}
		return sub, nil
	}
}

func (c *Controller) bootstrap(ctx context.Context) error {
	table, err := domain.NewShardTable(c.cfg.Spec, c.cfg.Bootstrap)
	if err != nil {
		return NewBadParameterError("invalid bootstrap addresses", err)
	}
	created, err := c.store.Initialize(ctx, c.cfg.Spec.ServiceID, table)
	if err != nil {
		return err
	}
	level.Info(c.logger).Log("msg", "bootstrap table", "created", created, "shards", table.ShardCount)
	return nil
}

// serve consumes the subscription until ctx is done or an error requires a full reload.
func (c *Controller) serve(ctx context.Context, sub interfaces.Subscription) error {
	stop := context.AfterFunc(ctx, func() { _ = sub.Close() })
	defer stop()

	for {
		upd, err := sub.Next(ctx)
		if err != nil {
			return err
		}
		switch {
		case upd.Snapshot != nil:
			err = c.resync(*upd.Snapshot)
		case upd.Event != nil:
			err = c.applyEvent(ctx, *upd.Event)
		}
		if err != nil {
			return err
		}
	}
}

func (c *Controller) applyEvent(ctx context.Context, ev domain.MembershipEvent) error {
	next := c.table.Load().Clone()
	res := next.Apply(ev)
	switch res.Outcome {
	case domain.OutcomeApplied:
		if err := c.install(next, false); err != nil {
			return err
		}
		level.Info(c.logger).Log("msg", "membership event applied", "kind", ev.Kind, "shard", ev.Instance.ShardIndex, "address", ev.Instance.Address, "version", ev.Version)
		return nil
	case domain.OutcomeDuplicate:
		level.Debug(c.logger).Log("msg", "duplicate event ignored", "reason", res.Reason)
		return nil
	default:
		gap := NewSequenceGapError(res.Reason, nil)
		level.Warn(c.logger).Log("msg", "event not applicable, resynchronizing from store", "outcome", res.Outcome, "err", gap)
		snapshot, err := c.store.GetSnapshot(ctx, c.cfg.Spec.ServiceID)
		if err != nil {
			return fmt.Errorf("resync after %v: %w", gap, err)
		}
		return c.resync(snapshot)
	}
}

// resync installs a snapshot unless it is older than the current table.
func (c *Controller) resync(snapshot domain.ShardTable) error {
	if cur := c.table.Load(); snapshot.Version < cur.Version {
		level.Warn(c.logger).Log("msg", "stale snapshot ignored", "snapshot_version", snapshot.Version, "version", cur.Version)
		return nil
	}
	return c.install(snapshot, false)
}

// install programs the dataplane with table and, only if that succeeded, publishes it as current.
func (c *Controller) install(table domain.ShardTable, full bool) error {
	if table.ShardCount != c.cfg.Spec.ShardCount {
		// Resharding is not supported; keep serving the last good table.
		return NewInternalServerError(fmt.Sprintf("store table has %d shards, service is configured with %d", table.ShardCount, c.cfg.Spec.ShardCount), nil)
	}
	if full {
		c.programmer.Reset()
	}
	if err := c.programmer.Program(table); err != nil {
		return err
	}
	c.table.Store(&table)
	return nil
}

func (c *Controller) drain() {
	c.opsMu.Lock()
	c.setState(domain.StateDraining)
	c.opsMu.Unlock()
	c.ops.Wait()
	c.setState(domain.StateStopped)
}

// AddInstance publishes a new instance for shardIndex. The address must be an ip:port literal
// so that every dataplane, the kernel one included, can program it.
func (c *Controller) AddInstance(ctx context.Context, shardIndex uint32, address string) (domain.MembershipEvent, error) {
	if address == "" {
		return domain.MembershipEvent{}, NewBadParameterError("address is required", nil)
	}
	if err := domain.ValidateAddress(address); err != nil {
		return domain.MembershipEvent{}, NewBadParameterError(err.Error(), err)
	}
	return c.submit(ctx, domain.Mutation{Kind: domain.EventAdded, ShardIndex: shardIndex, Address: address})
}

// RemoveInstance publishes the removal of shardIndex's instance. The slot is kept, draining.
func (c *Controller) RemoveInstance(ctx context.Context, shardIndex uint32) (domain.MembershipEvent, error) {
	return c.submit(ctx, domain.Mutation{Kind: domain.EventRemoved, ShardIndex: shardIndex})
}

// MarkUnreachable publishes that shardIndex's instance cannot be reached.
func (c *Controller) MarkUnreachable(ctx context.Context, shardIndex uint32) (domain.MembershipEvent, error) {
	return c.submit(ctx, domain.Mutation{Kind: domain.EventUnreachable, ShardIndex: shardIndex})
}

func (c *Controller) admit() bool {
	c.opsMu.Lock()
	defer c.opsMu.Unlock()
	if c.State() != domain.StateServing {
		return false
	}
	c.ops.Add(1)
	return true
}

// submit builds the event for m from the store's current table and publishes it. When another
// writer published first the store rejects the event and it is rebuilt on the newer table.
func (c *Controller) submit(ctx context.Context, m domain.Mutation) (domain.MembershipEvent, error) {
	if m.ShardIndex >= c.cfg.Spec.ShardCount {
		return domain.MembershipEvent{}, NewBadParameterError(fmt.Sprintf("shard index %d out of range [0, %d)", m.ShardIndex, c.cfg.Spec.ShardCount), nil)
	}
	if !c.admit() {
		return domain.MembershipEvent{}, NewNotServingError(fmt.Sprintf("controller is %s", c.State()), nil)
	}
	defer c.ops.Done()

	service := c.cfg.Spec.ServiceID
	var ev domain.MembershipEvent
	attempt := 0
	op := func() error {
		attempt++
		table, err := c.store.GetSnapshot(ctx, service)
		if err != nil {
			return backoff.Permanent(err)
		}
		ev, err = table.Prepare(m)
		if err != nil {
			return backoff.Permanent(NewBadParameterError(err.Error(), err))
		}
		err = c.store.Publish(ctx, service, ev)
		if IsRejectedByStoreError(err) {
			level.Debug(c.logger).Log("msg", "publish lost a race, rebuilding event", "attempt", attempt, "version", ev.Version)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(op, c.cfg.PublishRetry.BackOff(ctx)); err != nil {
		if ToShardError(err) == nil {
			if IsTimeout(err) {
				err = NewTimeoutError("publish did not complete", err)
			} else {
				err = NewNotConnectedError("publish did not complete", err)
			}
		}
		level.Warn(c.logger).Log("msg", "operator mutation failed", "kind", m.Kind, "shard", m.ShardIndex, "attempts", attempt, "err", err)
		return domain.MembershipEvent{}, err
	}
	level.Info(c.logger).Log("msg", "operator mutation published", "kind", m.Kind, "shard", m.ShardIndex, "version", ev.Version)
	return ev, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
