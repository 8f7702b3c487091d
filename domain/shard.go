// Package domain holds the shard control plane data model: shard specs,
// instances, the versioned shard table and membership events.
package domain

import (
	"fmt"
	"net/netip"

	"github.com/cespare/xxhash/v2"
)

// MaxKeyEnd bounds the end of the key bytes: no datagram is longer.
const MaxKeyEnd = 65535

// HealthState of one shard instance. Only Active instances receive traffic.
type HealthState uint8

const (
	HealthActive HealthState = iota
	HealthDraining
	HealthUnreachable
)

func (h HealthState) String() string {
	switch h {
	case HealthActive:
		return "active"
	case HealthDraining:
		return "draining"
	case HealthUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("health(%d)", uint8(h))
	}
}

// Valid reports whether h is one of the known health states.
func (h HealthState) Valid() bool {
	return h <= HealthUnreachable
}

// KeyRule selects the packet bytes that are hashed to pick a shard.
type KeyRule struct {
	Offset int
	Length int
}

// DefaultKeyRule matches the kv client request layout: a 4 byte key hash at offset 18.
var DefaultKeyRule = KeyRule{Offset: 18, Length: 4}

// ShardFor hashes the rule's bytes of packet into [0, shardCount).
// Returns false when the packet is too short or shardCount is zero.
func (r KeyRule) ShardFor(packet []byte, shardCount uint32) (uint32, bool) {
	if shardCount == 0 || r.Length <= 0 || r.Offset < 0 || r.Offset > len(packet)-r.Length {
		return 0, false
	}
	return uint32(xxhash.Sum64(packet[r.Offset:r.Offset+r.Length]) % uint64(shardCount)), true
}

// ShardSpec identifies a logical sharded service.
type ShardSpec struct {
	ServiceID  string
	KeyRule    KeyRule
	ShardCount uint32
}

// Validate checks the spec is usable. The shard count is fixed for the life of a service.
func (s ShardSpec) Validate() error {
	if s.ServiceID == "" {
		return fmt.Errorf("service id is required")
	}
	if s.ShardCount == 0 || s.ShardCount > MaxShardCount {
		return fmt.Errorf("service %s: shard count must be 1-%d, got %d", s.ServiceID, MaxShardCount, s.ShardCount)
	}
	if s.KeyRule.Offset < 0 || s.KeyRule.Length <= 0 {
		return fmt.Errorf("service %s: key rule needs offset >= 0 and length > 0", s.ServiceID)
	}
	if s.KeyRule.Offset > MaxKeyEnd || s.KeyRule.Length > MaxKeyEnd-s.KeyRule.Offset {
		return fmt.Errorf("service %s: key rule must end within %d bytes", s.ServiceID, MaxKeyEnd)
	}
	return nil
}

// ShardInstance is one physical backend serving a shard index.
// Generation increases every time a new instance is installed in the slot,
// so a reused address is never confused with its predecessor.
type ShardInstance struct {
	ShardIndex uint32
	Address    string
	Health     HealthState
	Generation uint64
}

// Routable reports whether packets may be steered to the instance.
func (i ShardInstance) Routable() bool {
	return i.Health == HealthActive && i.Address != ""
}

// ControllerState is the lifecycle state of a shard controller.
type ControllerState int32

const (
	StateStarting ControllerState = iota
	StateLoading
	StateServing
	StateDraining
	StateStopped
)

func (s ControllerState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateLoading:
		return "loading"
	case StateServing:
		return "serving"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ValidateAddress checks that address is an IP literal with a port. The kernel classifier
// cannot resolve names, so every address in a shard table must be one.
func ValidateAddress(address string) error {
	if _, err := netip.ParseAddrPort(address); err != nil {
		return fmt.Errorf("address %q must be ip:port: %w", address, err)
	}
	return nil
}
