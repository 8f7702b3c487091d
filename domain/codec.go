package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Wire layout, big endian:
//
//	table:    [version u64][shard_count u32][instance_count u32] instance*
//	instance: [shard_index u32][addr_len u16][addr][generation u64][health u8]
//	event:    [kind u8] table-with-one-instance
const (
	tableHeaderLen  = 8 + 4 + 4
	instanceMinLen  = 4 + 2 + 8 + 1
	maxAddressBytes = math.MaxUint16
)

// ErrShortBuffer is returned when a payload ends before its declared content.
var ErrShortBuffer = errors.New("short buffer")

// EncodeTable serializes t.
func EncodeTable(t ShardTable) ([]byte, error) {
	return appendTable(nil, t.Version, t.ShardCount, t.Instances)
}

// DecodeTable parses a table and checks its invariants.
func DecodeTable(b []byte) (ShardTable, error) {
	version, shardCount, instances, rest, err := readTable(b)
	if err != nil {
		return ShardTable{}, err
	}
	if len(rest) != 0 {
		return ShardTable{}, fmt.Errorf("decode table: %d trailing bytes", len(rest))
	}
	if uint32(len(instances)) != shardCount {
		return ShardTable{}, fmt.Errorf("decode table: %d instances for %d shards", len(instances), shardCount)
	}
	ordered := make([]ShardInstance, shardCount)
	seen := make([]bool, shardCount)
	for _, inst := range instances {
		if inst.ShardIndex >= shardCount {
			return ShardTable{}, fmt.Errorf("decode table: shard index %d out of range", inst.ShardIndex)
		}
		if seen[inst.ShardIndex] {
			return ShardTable{}, fmt.Errorf("decode table: duplicate shard index %d", inst.ShardIndex)
		}
		seen[inst.ShardIndex] = true
		ordered[inst.ShardIndex] = inst
	}
	t := ShardTable{Version: version, ShardCount: shardCount, Instances: ordered}
	return t, t.Validate()
}

// EncodeEvent serializes ev.
func EncodeEvent(ev MembershipEvent) ([]byte, error) {
	return appendTable([]byte{byte(ev.Kind)}, ev.Version, ev.ShardCount, []ShardInstance{ev.Instance})
}

// DecodeEvent parses an event.
func DecodeEvent(b []byte) (MembershipEvent, error) {
	if len(b) < 1 {
		return MembershipEvent{}, fmt.Errorf("decode event: %w", ErrShortBuffer)
	}
	kind := EventKind(b[0])
	if kind < EventAdded || kind > EventUnreachable {
		return MembershipEvent{}, fmt.Errorf("decode event: unknown kind %d", b[0])
	}
	version, shardCount, instances, rest, err := readTable(b[1:])
	if err != nil {
		return MembershipEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if len(rest) != 0 {
		return MembershipEvent{}, fmt.Errorf("decode event: %d trailing bytes", len(rest))
	}
	if len(instances) != 1 {
		return MembershipEvent{}, fmt.Errorf("decode event: %d instances, want 1", len(instances))
	}
	return MembershipEvent{Kind: kind, Version: version, ShardCount: shardCount, Instance: instances[0]}, nil
}

func appendTable(b []byte, version uint64, shardCount uint32, instances []ShardInstance) ([]byte, error) {
	b = binary.BigEndian.AppendUint64(b, version)
	b = binary.BigEndian.AppendUint32(b, shardCount)
	b = binary.BigEndian.AppendUint32(b, uint32(len(instances)))
	for _, inst := range instances {
		if len(inst.Address) > maxAddressBytes {
			return nil, fmt.Errorf("shard %d address is %d bytes", inst.ShardIndex, len(inst.Address))
		}
		b = binary.BigEndian.AppendUint32(b, inst.ShardIndex)
		b = binary.BigEndian.AppendUint16(b, uint16(len(inst.Address)))
		b = append(b, inst.Address...)
		b = binary.BigEndian.AppendUint64(b, inst.Generation)
		b = append(b, byte(inst.Health))
	}
	return b, nil
}

func readTable(b []byte) (version uint64, shardCount uint32, instances []ShardInstance, rest []byte, err error) {
	if len(b) < tableHeaderLen {
		return 0, 0, nil, nil, ErrShortBuffer
	}
	version = binary.BigEndian.Uint64(b)
	shardCount = binary.BigEndian.Uint32(b[8:])
	count := binary.BigEndian.Uint32(b[12:])
	b = b[tableHeaderLen:]
	if shardCount == 0 || shardCount > MaxShardCount {
		return 0, 0, nil, nil, fmt.Errorf("shard count %d out of range", shardCount)
	}
	if count > shardCount || int(count)*instanceMinLen > len(b) {
		return 0, 0, nil, nil, fmt.Errorf("instance count %d: %w", count, ErrShortBuffer)
	}
	instances = make([]ShardInstance, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(b) < instanceMinLen {
			return 0, 0, nil, nil, ErrShortBuffer
		}
		idx := binary.BigEndian.Uint32(b)
		addrLen := int(binary.BigEndian.Uint16(b[4:]))
		b = b[6:]
		if len(b) < addrLen+8+1 {
			return 0, 0, nil, nil, ErrShortBuffer
		}
		inst := ShardInstance{
			ShardIndex: idx,
			Address:    string(b[:addrLen]),
			Generation: binary.BigEndian.Uint64(b[addrLen:]),
			Health:     HealthState(b[addrLen+8]),
		}
		if !inst.Health.Valid() {
			return 0, 0, nil, nil, fmt.Errorf("shard %d: unknown health %d", idx, inst.Health)
		}
		instances = append(instances, inst)
		b = b[addrLen+9:]
	}
	return version, shardCount, instances, b, nil
}
