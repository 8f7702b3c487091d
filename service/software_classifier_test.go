package service

import (
	"encoding/binary"
	"sync"
	"testing"

	"shardctl/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packetForShard builds a request whose key hashes to shard.
func packetForShard(t *testing.T, spec domain.ShardSpec, shard uint32) []byte {
	t.Helper()
	packet := make([]byte, spec.KeyRule.Offset+spec.KeyRule.Length+8)
	for key := uint32(0); key < 1<<16; key++ {
		binary.BigEndian.PutUint32(packet[spec.KeyRule.Offset:], key)
		if idx, ok := spec.KeyRule.ShardFor(packet, spec.ShardCount); ok && idx == shard {
			return packet
		}
	}
	t.Fatalf("no key maps to shard %d", shard)
	return nil
}

func TestSoftwareClassifier_Slots(t *testing.T) {
	c := NewSoftwareClassifier(testSpec)
	assert.Equal(t, uint32(4), c.ShardCount())

	inst, err := c.ReadSlot(2)
	require.NoError(t, err)
	assert.Equal(t, domain.ShardInstance{ShardIndex: 2}, inst)

	want := domain.ShardInstance{Address: "10.0.0.3:7000", Health: domain.HealthActive, Generation: 4}
	require.NoError(t, c.WriteSlot(2, want))
	inst, err = c.ReadSlot(2)
	require.NoError(t, err)
	want.ShardIndex = 2
	assert.Equal(t, want, inst)

	_, err = c.ReadSlot(4)
	assert.Error(t, err)
	assert.Error(t, c.WriteSlot(4, want))

	require.NoError(t, c.SetVersion(12))
	v, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)
}

func TestSoftwareClassifier_Select(t *testing.T) {
	c := NewSoftwareClassifier(testSpec)
	packet := packetForShard(t, testSpec, 1)

	t.Run("unprogrammed slot drops", func(t *testing.T) {
		_, ok := c.Select(packet)
		assert.False(t, ok)
	})

	t.Run("active instance is selected", func(t *testing.T) {
		require.NoError(t, c.WriteSlot(1, domain.ShardInstance{Address: "10.0.0.2:7000", Health: domain.HealthActive, Generation: 1}))
		inst, ok := c.Select(packet)
		require.True(t, ok)
		assert.Equal(t, "10.0.0.2:7000", inst.Address)
		assert.Equal(t, uint32(1), inst.ShardIndex)
	})

	t.Run("draining and unreachable instances drop", func(t *testing.T) {
		require.NoError(t, c.WriteSlot(1, domain.ShardInstance{Address: "10.0.0.2:7000", Health: domain.HealthDraining, Generation: 1}))
		_, ok := c.Select(packet)
		assert.False(t, ok)
		require.NoError(t, c.WriteSlot(1, domain.ShardInstance{Address: "10.0.0.2:7000", Health: domain.HealthUnreachable, Generation: 1}))
		_, ok = c.Select(packet)
		assert.False(t, ok)
	})

	t.Run("short packet drops", func(t *testing.T) {
		_, ok := c.Select(make([]byte, 10))
		assert.False(t, ok)
	})
}

func TestSoftwareClassifier_ConcurrentReadersSeeWholeSlots(t *testing.T) {
	c := NewSoftwareClassifier(testSpec)
	a := domain.ShardInstance{Address: "10.0.0.1:7000", Health: domain.HealthActive, Generation: 1}
	b := domain.ShardInstance{Address: "10.0.9.9:7000", Health: domain.HealthActive, Generation: 2}
	require.NoError(t, c.WriteSlot(0, a))
	packet := packetForShard(t, testSpec, 0)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	torn := make(chan domain.ShardInstance, 1)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				inst, ok := c.Select(packet)
				if !ok {
					continue
				}
				if !(inst.Address == a.Address && inst.Generation == a.Generation) && !(inst.Address == b.Address && inst.Generation == b.Generation) {
					select {
					case torn <- inst:
					default:
					}
				}
			}
		}()
	}
	for i := 0; i < 10000; i++ {
		if i%2 == 0 {
			require.NoError(t, c.WriteSlot(0, b))
		} else {
			require.NoError(t, c.WriteSlot(0, a))
		}
	}
	close(stop)
	wg.Wait()

	select {
	case inst := <-torn:
		t.Fatalf("reader saw a torn slot: %+v", inst)
	default:
	}
}
