package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"shardctl/adapters/myredis"
	"shardctl/domain"
	"shardctl/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var e2eSpec = domain.ShardSpec{ServiceID: "kv", KeyRule: domain.DefaultKeyRule, ShardCount: 4}

var e2eRetry = service.RetryPolicy{
	Count:           20,
	AttemptTimeout:  500 * time.Millisecond,
	InitialInterval: 5 * time.Millisecond,
	MaxInterval:     50 * time.Millisecond,
}

type host struct {
	controller *service.Controller
	classifier *service.SoftwareClassifier
	store      *myredis.Store
}

func startHost(t *testing.T, m *miniredis.Miniredis, bootstrap []string) *host {
	t.Helper()
	client, err := myredis.NewRedisUniversalClient("redis://"+m.Addr(), myredis.WithTimeouts(500*time.Millisecond), myredis.WithoutClientRetries())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	logger := log.NewNopLogger()
	store := myredis.NewStore(client, e2eRetry, logger, myredis.WithSubscriptionIdle(100*time.Millisecond))
	classifier := service.NewSoftwareClassifier(e2eSpec)
	controller := service.NewController(service.ControllerConfig{
		Spec:          e2eSpec,
		Bootstrap:     bootstrap,
		PublishRetry:  e2eRetry,
		ReloadBackOff: 20 * time.Millisecond,
	}, store, service.NewProgrammer(classifier, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- controller.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &host{controller: controller, classifier: classifier, store: store}
}

func waitServing(t *testing.T, hosts ...*host) {
	t.Helper()
	for _, h := range hosts {
		require.Eventually(t, func() bool { return h.controller.State() == domain.StateServing }, 5*time.Second, 5*time.Millisecond)
	}
}

// requireConverged waits until every host runs the store's table, in its controller and its classifier.
func requireConverged(t *testing.T, hosts ...*host) domain.ShardTable {
	t.Helper()
	var want domain.ShardTable
	require.Eventually(t, func() bool {
		var err error
		want, err = hosts[0].store.GetSnapshot(context.Background(), e2eSpec.ServiceID)
		if err != nil {
			return false
		}
		for _, h := range hosts {
			if !want.Equal(h.controller.Table()) {
				return false
			}
			if v, _ := h.classifier.Version(); v != want.Version {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	for _, h := range hosts {
		for i, inst := range want.Instances {
			got, err := h.classifier.ReadSlot(uint32(i))
			require.NoError(t, err)
			assert.Equal(t, inst, got)
		}
	}
	return want
}

func bootstrapAddrs() []string {
	addrs := make([]string, e2eSpec.ShardCount)
	for i := range addrs {
		addrs[i] = fmt.Sprintf("10.0.0.%d:7000", i+1)
	}
	return addrs
}

func TestControllers_ConvergeOnConcurrentMutations(t *testing.T) {
	m := miniredis.RunT(t)
	a := startHost(t, m, bootstrapAddrs())
	b := startHost(t, m, bootstrapAddrs())
	waitServing(t, a, b)
	requireConverged(t, a, b)

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 4; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := a.controller.AddInstance(ctx, uint32(i), fmt.Sprintf("10.1.0.%d:7000", i))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := b.controller.AddInstance(ctx, uint32(i), fmt.Sprintf("10.2.0.%d:7000", i))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	table := requireConverged(t, a, b)
	// Every mutation was applied exactly once.
	assert.Equal(t, uint64(1+8), table.Version)
	for _, inst := range table.Instances {
		assert.Equal(t, uint64(3), inst.Generation)
		assert.Equal(t, domain.HealthActive, inst.Health)
	}
}

func TestControllers_RemoveThenAddConverges(t *testing.T) {
	m := miniredis.RunT(t)
	a := startHost(t, m, bootstrapAddrs())
	b := startHost(t, m, nil)
	waitServing(t, a, b)

	ctx := context.Background()
	_, err := b.controller.RemoveInstance(ctx, 2)
	require.NoError(t, err)
	table := requireConverged(t, a, b)
	assert.Equal(t, domain.HealthDraining, table.Instances[2].Health)
	assert.Equal(t, "10.0.0.3:7000", table.Instances[2].Address)

	_, err = a.controller.AddInstance(ctx, 2, "10.0.0.3:7000")
	require.NoError(t, err)
	table = requireConverged(t, a, b)
	assert.Equal(t, domain.HealthActive, table.Instances[2].Health)
	assert.Equal(t, uint64(2), table.Instances[2].Generation)

	_, err = a.controller.MarkUnreachable(ctx, 0)
	require.NoError(t, err)
	table = requireConverged(t, a, b)
	assert.Equal(t, domain.HealthUnreachable, table.Instances[0].Health)
	assert.Equal(t, uint64(4), table.Version)
}

func TestControllers_ResyncAfterStoreOutage(t *testing.T) {
	m := miniredis.RunT(t)
	a := startHost(t, m, bootstrapAddrs())
	b := startHost(t, m, nil)
	waitServing(t, a, b)
	requireConverged(t, a, b)

	// A change committed while subscribers are cut off is delivered as a snapshot after reconnect.
	current, err := a.store.GetSnapshot(context.Background(), e2eSpec.ServiceID)
	require.NoError(t, err)
	next := current.Clone()
	ev, err := next.Prepare(domain.Mutation{Kind: domain.EventAdded, ShardIndex: 1, Address: "10.9.9.9:7000"})
	require.NoError(t, err)
	require.True(t, next.Apply(ev).Applied())
	raw, err := domain.EncodeTable(next)
	require.NoError(t, err)

	m.Close()
	require.NoError(t, m.Set(myredis.TableKey(e2eSpec.ServiceID), string(raw)))
	require.NoError(t, m.Restart())

	table := requireConverged(t, a, b)
	assert.Equal(t, "10.9.9.9:7000", table.Instances[1].Address)
	waitServing(t, a, b)

	_, err = b.controller.RemoveInstance(context.Background(), 3)
	require.NoError(t, err)
	table = requireConverged(t, a, b)
	assert.Equal(t, domain.HealthDraining, table.Instances[3].Health)
}
