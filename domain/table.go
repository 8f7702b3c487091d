package domain

import (
	"fmt"
)

// MaxShardCount bounds shard counts accepted from config and from the wire.
const MaxShardCount = 1 << 16

// EventKind is the membership change carried by a MembershipEvent.
type EventKind uint8

const (
	EventAdded EventKind = iota + 1
	EventRemoved
	EventUnreachable
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MembershipEvent is a change record published on the coordination bus.
// Version is the table version the event produces when applied.
type MembershipEvent struct {
	Kind       EventKind
	Version    uint64
	ShardCount uint32
	Instance   ShardInstance
}

// Mutation is an operator request before it is turned into a versioned event.
type Mutation struct {
	Kind       EventKind
	ShardIndex uint32
	Address    string
}

// Outcome of applying an event to a table.
type Outcome uint8

const (
	OutcomeApplied Outcome = iota
	// OutcomeDuplicate: version not newer than the table. Nothing changed.
	OutcomeDuplicate
	// OutcomeGap: at least one event was missed. The table must be resynchronized.
	OutcomeGap
	// OutcomeInvalid: the event has the next version but cannot apply to this table.
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeGap:
		return "gap"
	case OutcomeInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// ApplyResult is returned by ShardTable.Apply. Reason is set for rejections.
type ApplyResult struct {
	Outcome Outcome
	Reason  string
}

// Applied reports whether the event mutated the table.
func (r ApplyResult) Applied() bool {
	return r.Outcome == OutcomeApplied
}

func rejected(o Outcome, format string, args ...any) ApplyResult {
	return ApplyResult{Outcome: o, Reason: fmt.Sprintf(format, args...)}
}

// Update is one item of a store subscription: either a full snapshot
// (delivered first and after every reconnect) or a single live event.
type Update struct {
	Snapshot *ShardTable
	Event    *MembershipEvent
}

// ShardTable maps every shard index of a service to exactly one instance.
// Instances[i].ShardIndex == i and len(Instances) == ShardCount always hold
// for a table built by NewShardTable, DecodeTable or Apply.
type ShardTable struct {
	Version    uint64
	ShardCount uint32
	Instances  []ShardInstance
}

// NewShardTable builds the initial table of a service from one address per shard.
func NewShardTable(spec ShardSpec, addresses []string) (ShardTable, error) {
	if uint32(len(addresses)) != spec.ShardCount {
		return ShardTable{}, fmt.Errorf("service %s: need %d bootstrap addresses, got %d", spec.ServiceID, spec.ShardCount, len(addresses))
	}
	instances := make([]ShardInstance, len(addresses))
	for i, addr := range addresses {
		if addr == "" {
			return ShardTable{}, fmt.Errorf("service %s: bootstrap address %d is empty", spec.ServiceID, i)
		}
		if err := ValidateAddress(addr); err != nil {
			return ShardTable{}, fmt.Errorf("service %s: bootstrap address %d: %w", spec.ServiceID, i, err)
		}
		instances[i] = ShardInstance{
			ShardIndex: uint32(i),
			Address:    addr,
			Health:     HealthActive,
			Generation: 1,
		}
	}
	return ShardTable{Version: 1, ShardCount: spec.ShardCount, Instances: instances}, nil
}

// Validate checks the table invariants.
func (t ShardTable) Validate() error {
	if t.ShardCount == 0 || t.ShardCount > MaxShardCount {
		return fmt.Errorf("shard count %d out of range", t.ShardCount)
	}
	if uint32(len(t.Instances)) != t.ShardCount {
		return fmt.Errorf("table has %d instances for %d shards", len(t.Instances), t.ShardCount)
	}
	for i, inst := range t.Instances {
		if inst.ShardIndex != uint32(i) {
			return fmt.Errorf("slot %d holds shard index %d", i, inst.ShardIndex)
		}
		if !inst.Health.Valid() {
			return fmt.Errorf("slot %d has unknown health %d", i, inst.Health)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t ShardTable) Clone() ShardTable {
	out := t
	out.Instances = append([]ShardInstance(nil), t.Instances...)
	return out
}

// Snapshot returns the version and a copy of the instances ordered by shard index.
func (t ShardTable) Snapshot() (uint64, []ShardInstance) {
	return t.Version, append([]ShardInstance(nil), t.Instances...)
}

// Equal reports whether both tables have the same version and instances.
func (t ShardTable) Equal(o ShardTable) bool {
	if t.Version != o.Version || t.ShardCount != o.ShardCount || len(t.Instances) != len(o.Instances) {
		return false
	}
	for i := range t.Instances {
		if t.Instances[i] != o.Instances[i] {
			return false
		}
	}
	return true
}

// Apply applies ev if and only if it produces version t.Version+1.
// Older or equal versions are duplicates and leave the table untouched;
// newer versions reveal a gap and also leave it untouched.
func (t *ShardTable) Apply(ev MembershipEvent) ApplyResult {
	switch {
	case ev.Version <= t.Version:
		return rejected(OutcomeDuplicate, "event version %d, table version %d", ev.Version, t.Version)
	case ev.Version > t.Version+1:
		return rejected(OutcomeGap, "event version %d, table version %d", ev.Version, t.Version)
	}
	if ev.ShardCount != t.ShardCount {
		return rejected(OutcomeInvalid, "event shard count %d, table shard count %d", ev.ShardCount, t.ShardCount)
	}
	idx := ev.Instance.ShardIndex
	if idx >= t.ShardCount {
		return rejected(OutcomeInvalid, "shard index %d out of range", idx)
	}
	cur := t.Instances[idx]
	next := cur
	switch ev.Kind {
	case EventAdded:
		if ev.Instance.Address == "" {
			return rejected(OutcomeInvalid, "added instance for shard %d has no address", idx)
		}
		if ev.Instance.Generation <= cur.Generation {
			return rejected(OutcomeInvalid, "shard %d generation %d does not advance %d", idx, ev.Instance.Generation, cur.Generation)
		}
		next = ShardInstance{
			ShardIndex: idx,
			Address:    ev.Instance.Address,
			Health:     HealthActive,
			Generation: ev.Instance.Generation,
		}
	case EventRemoved, EventUnreachable:
		if ev.Instance.Generation != cur.Generation {
			return rejected(OutcomeInvalid, "shard %d event generation %d, slot generation %d", idx, ev.Instance.Generation, cur.Generation)
		}
		next.Health = HealthDraining
		if ev.Kind == EventUnreachable {
			next.Health = HealthUnreachable
		}
	default:
		return rejected(OutcomeInvalid, "unknown event kind %d", ev.Kind)
	}
	t.Instances[idx] = next
	t.Version = ev.Version
	return ApplyResult{Outcome: OutcomeApplied}
}

// Prepare builds the event that performs m on top of t.
// The event carries version t.Version+1; an added instance gets the next generation of its slot.
func (t ShardTable) Prepare(m Mutation) (MembershipEvent, error) {
	if m.ShardIndex >= t.ShardCount {
		return MembershipEvent{}, fmt.Errorf("shard index %d out of range [0, %d)", m.ShardIndex, t.ShardCount)
	}
	cur := t.Instances[m.ShardIndex]
	ev := MembershipEvent{
		Kind:       m.Kind,
		Version:    t.Version + 1,
		ShardCount: t.ShardCount,
		Instance:   cur,
	}
	switch m.Kind {
	case EventAdded:
		if m.Address == "" {
			return MembershipEvent{}, fmt.Errorf("address is required")
		}
		if err := ValidateAddress(m.Address); err != nil {
			return MembershipEvent{}, err
		}
		ev.Instance = ShardInstance{
			ShardIndex: m.ShardIndex,
			Address:    m.Address,
			Health:     HealthActive,
			Generation: cur.Generation + 1,
		}
	case EventRemoved:
		if cur.Health == HealthDraining {
			return MembershipEvent{}, fmt.Errorf("shard %d instance is already removed", m.ShardIndex)
		}
	case EventUnreachable:
		if cur.Health != HealthActive {
			return MembershipEvent{}, fmt.Errorf("shard %d instance is %s", m.ShardIndex, cur.Health)
		}
	default:
		return MembershipEvent{}, fmt.Errorf("unknown event kind %d", m.Kind)
	}
	return ev, nil
}
