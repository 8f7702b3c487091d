package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() ShardSpec {
	return ShardSpec{ServiceID: "kv", KeyRule: DefaultKeyRule, ShardCount: 4}
}

func testTable(t *testing.T) ShardTable {
	t.Helper()
	table, err := NewShardTable(testSpec(), []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1", "10.0.0.4:1"})
	require.NoError(t, err)
	return table
}

func mustPrepare(t *testing.T, table ShardTable, m Mutation) MembershipEvent {
	t.Helper()
	ev, err := table.Prepare(m)
	require.NoError(t, err)
	return ev
}

func TestNewShardTable(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		table := testTable(t)
		require.NoError(t, table.Validate())
		assert.Equal(t, uint64(1), table.Version)
		for i, inst := range table.Instances {
			assert.Equal(t, uint32(i), inst.ShardIndex)
			assert.Equal(t, HealthActive, inst.Health)
			assert.Equal(t, uint64(1), inst.Generation)
		}
	})
	t.Run("wrong_address_count", func(t *testing.T) {
		_, err := NewShardTable(testSpec(), []string{"a:1"})
		require.Error(t, err)
	})
	t.Run("empty_address", func(t *testing.T) {
		_, err := NewShardTable(testSpec(), []string{"10.0.0.1:1", "", "10.0.0.3:1", "10.0.0.4:1"})
		require.Error(t, err)
	})
	t.Run("hostname_address", func(t *testing.T) {
		_, err := NewShardTable(testSpec(), []string{"10.0.0.1:1", "kv-2:1", "10.0.0.3:1", "10.0.0.4:1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bootstrap address 1")
	})
}

func TestShardTable_Apply(t *testing.T) {
	base := testTable(t)

	t.Run("next_version_applies", func(t *testing.T) {
		table := base.Clone()
		ev := mustPrepare(t, table, Mutation{Kind: EventAdded, ShardIndex: 2, Address: "10.0.0.9:1"})
		res := table.Apply(ev)
		require.True(t, res.Applied())
		assert.Equal(t, uint64(2), table.Version)
		assert.Equal(t, "10.0.0.9:1", table.Instances[2].Address)
		assert.Equal(t, uint64(2), table.Instances[2].Generation)
	})

	t.Run("duplicate_is_noop", func(t *testing.T) {
		table := base.Clone()
		ev := mustPrepare(t, table, Mutation{Kind: EventUnreachable, ShardIndex: 1})
		require.True(t, table.Apply(ev).Applied())
		before := table.Clone()

		res := table.Apply(ev)
		assert.Equal(t, OutcomeDuplicate, res.Outcome)
		assert.True(t, before.Equal(table))
	})

	t.Run("gap_is_rejected_without_mutation", func(t *testing.T) {
		table := base.Clone()
		ev := mustPrepare(t, table, Mutation{Kind: EventRemoved, ShardIndex: 0})
		ev.Version += 1
		res := table.Apply(ev)
		assert.Equal(t, OutcomeGap, res.Outcome)
		assert.NotEmpty(t, res.Reason)
		assert.True(t, base.Equal(table))
	})

	t.Run("shard_count_mismatch_is_invalid", func(t *testing.T) {
		table := base.Clone()
		ev := mustPrepare(t, table, Mutation{Kind: EventRemoved, ShardIndex: 0})
		ev.ShardCount = 8
		assert.Equal(t, OutcomeInvalid, table.Apply(ev).Outcome)
		assert.True(t, base.Equal(table))
	})

	t.Run("index_out_of_range_is_invalid", func(t *testing.T) {
		table := base.Clone()
		ev := MembershipEvent{Kind: EventAdded, Version: 2, ShardCount: 4, Instance: ShardInstance{ShardIndex: 4, Address: "x:1", Generation: 9}}
		assert.Equal(t, OutcomeInvalid, table.Apply(ev).Outcome)
	})

	t.Run("stale_generation_is_invalid", func(t *testing.T) {
		table := base.Clone()
		ev := MembershipEvent{Kind: EventAdded, Version: 2, ShardCount: 4, Instance: ShardInstance{ShardIndex: 0, Address: "x:1", Generation: 1}}
		assert.Equal(t, OutcomeInvalid, table.Apply(ev).Outcome)
	})

	t.Run("remove_keeps_slot_draining", func(t *testing.T) {
		table := base.Clone()
		ev := mustPrepare(t, table, Mutation{Kind: EventRemoved, ShardIndex: 2})
		require.True(t, table.Apply(ev).Applied())
		require.NoError(t, table.Validate())
		inst := table.Instances[2]
		assert.Equal(t, HealthDraining, inst.Health)
		assert.Equal(t, "10.0.0.3:1", inst.Address)
		assert.False(t, inst.Routable())
	})
}

func TestShardTable_Apply_VersionAdvancesByOnePerAcceptedEvent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	table := testTable(t)

	// Build a valid history, then deliver it shuffled with duplicates.
	history := make([]MembershipEvent, 0, 40)
	writer := table.Clone()
	for len(history) < 40 {
		idx := uint32(rng.Intn(4))
		kinds := []EventKind{EventAdded, EventRemoved, EventUnreachable}
		m := Mutation{Kind: kinds[rng.Intn(len(kinds))], ShardIndex: idx, Address: "10.1.0.1:7"}
		ev, err := writer.Prepare(m)
		if err != nil {
			continue
		}
		require.True(t, writer.Apply(ev).Applied())
		history = append(history, ev)
	}

	deliveries := make([]MembershipEvent, 0, 3*len(history))
	for i, ev := range history {
		deliveries = append(deliveries, ev)
		if i%3 == 0 {
			deliveries = append(deliveries, ev)
		}
		if i > 0 && i%5 == 0 {
			deliveries = append(deliveries, history[rng.Intn(i)])
		}
	}

	prev := table.Version
	accepted := 0
	for _, ev := range deliveries {
		res := table.Apply(ev)
		if res.Applied() {
			accepted++
			assert.Equal(t, prev+1, table.Version)
		} else {
			assert.Equal(t, prev, table.Version)
		}
		assert.GreaterOrEqual(t, table.Version, prev)
		prev = table.Version
		require.NoError(t, table.Validate())
	}
	assert.Equal(t, len(history), accepted)
	assert.True(t, writer.Equal(table))
}

// shard_count=4, version=10, four instances; remove index 2 and add a replacement.
func TestShardTable_RemoveAndAddOrderingsConverge(t *testing.T) {
	table := ShardTable{Version: 10, ShardCount: 4, Instances: []ShardInstance{
		{ShardIndex: 0, Address: "10.0.0.1:1", Generation: 1},
		{ShardIndex: 1, Address: "10.0.0.2:1", Generation: 1},
		{ShardIndex: 2, Address: "10.0.0.3:1", Generation: 1},
		{ShardIndex: 3, Address: "10.0.0.4:1", Generation: 1},
	}}
	require.NoError(t, table.Validate())

	writer := table.Clone()
	remove := mustPrepare(t, writer, Mutation{Kind: EventRemoved, ShardIndex: 2})
	require.True(t, writer.Apply(remove).Applied())
	assert.Equal(t, uint64(11), writer.Version)
	add := mustPrepare(t, writer, Mutation{Kind: EventAdded, ShardIndex: 2, Address: "10.0.0.5:1"})
	require.True(t, writer.Apply(add).Applied())

	inOrder := table.Clone()
	require.True(t, inOrder.Apply(remove).Applied())
	require.True(t, inOrder.Apply(add).Applied())

	// Add arrives first: it is a gap and the reader resynchronizes from the store's table.
	outOfOrder := table.Clone()
	res := outOfOrder.Apply(add)
	require.Equal(t, OutcomeGap, res.Outcome)
	outOfOrder = writer.Clone()
	assert.Equal(t, OutcomeDuplicate, outOfOrder.Apply(remove).Outcome)

	assert.True(t, inOrder.Equal(outOfOrder))
	assert.Equal(t, uint64(12), inOrder.Version)
	assert.Equal(t, ShardInstance{ShardIndex: 2, Address: "10.0.0.5:1", Health: HealthActive, Generation: 2}, inOrder.Instances[2])
}

func TestShardTable_Prepare(t *testing.T) {
	table := testTable(t)

	t.Run("index_out_of_range", func(t *testing.T) {
		_, err := table.Prepare(Mutation{Kind: EventAdded, ShardIndex: 9, Address: "x:1"})
		require.Error(t, err)
	})
	t.Run("add_without_address", func(t *testing.T) {
		_, err := table.Prepare(Mutation{Kind: EventAdded, ShardIndex: 0})
		require.Error(t, err)
	})
	t.Run("add_hostname", func(t *testing.T) {
		_, err := table.Prepare(Mutation{Kind: EventAdded, ShardIndex: 0, Address: "kv-1.internal:7000"})
		require.Error(t, err)
	})
	t.Run("remove_twice", func(t *testing.T) {
		tt := table.Clone()
		ev := mustPrepare(t, tt, Mutation{Kind: EventRemoved, ShardIndex: 0})
		require.True(t, tt.Apply(ev).Applied())
		_, err := tt.Prepare(Mutation{Kind: EventRemoved, ShardIndex: 0})
		require.Error(t, err)
	})
	t.Run("unreachable_requires_active", func(t *testing.T) {
		tt := table.Clone()
		ev := mustPrepare(t, tt, Mutation{Kind: EventUnreachable, ShardIndex: 3})
		require.True(t, tt.Apply(ev).Applied())
		_, err := tt.Prepare(Mutation{Kind: EventUnreachable, ShardIndex: 3})
		require.Error(t, err)
	})
	t.Run("unknown_kind", func(t *testing.T) {
		_, err := table.Prepare(Mutation{Kind: EventKind(42), ShardIndex: 0})
		require.Error(t, err)
	})
}

func TestShardTable_Snapshot_ReturnsCopy(t *testing.T) {
	table := testTable(t)
	version, instances := table.Snapshot()
	assert.Equal(t, table.Version, version)
	instances[0].Address = "mutated"
	assert.Equal(t, "10.0.0.1:1", table.Instances[0].Address)
}
