package ebpfmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"path/filepath"

	"shardctl/domain"

	"github.com/cilium/ebpf"
)

const (
	// SlotsMapName is the pinned array map read by the classifier program, keyed by shard index.
	SlotsMapName = "shard_slots"
	// VersionMapName is the pinned single-entry array map holding the programmed table version.
	VersionMapName = "shard_version"

	slotValueSize = 32
)

// Slot value layout:
//
//	[0:16]  instance IPv6 address, IPv4 mapped
//	[16:18] port, network order
//	[18]    health
//	[19:24] padding
//	[24:32] generation, host order
type slotValue [slotValueSize]byte

// bpfMap is the part of *ebpf.Map the classifier uses.
type bpfMap interface {
	Lookup(key, valueOut interface{}) error
	Update(key, value interface{}, flags ebpf.MapUpdateFlags) error
	MaxEntries() uint32
	Close() error
}

// Classifier is the kernel ClassifierMap: slot writes go straight into the pinned maps the
// packet classifier program reads. A single map update replaces one slot atomically.
type Classifier struct {
	slots      bpfMap
	version    bpfMap
	shardCount uint32
}

// Open loads the maps pinned under pinPath by the classifier loader.
func Open(pinPath string, shardCount uint32) (*Classifier, error) {
	slots, err := ebpf.LoadPinnedMap(filepath.Join(pinPath, SlotsMapName), nil)
	if err != nil {
		return nil, fmt.Errorf("load pinned map %s: %w", SlotsMapName, err)
	}
	version, err := ebpf.LoadPinnedMap(filepath.Join(pinPath, VersionMapName), nil)
	if err != nil {
		_ = slots.Close()
		return nil, fmt.Errorf("load pinned map %s: %w", VersionMapName, err)
	}
	c, err := newClassifier(slots, version, shardCount)
	if err != nil {
		_ = slots.Close()
		_ = version.Close()
		return nil, err
	}
	return c, nil
}

func newClassifier(slots, version bpfMap, shardCount uint32) (*Classifier, error) {
	if shardCount == 0 {
		return nil, errors.New("shard count must be positive")
	}
	if slots.MaxEntries() < shardCount {
		return nil, fmt.Errorf("map %s holds %d entries, service needs %d", SlotsMapName, slots.MaxEntries(), shardCount)
	}
	if version.MaxEntries() < 1 {
		return nil, fmt.Errorf("map %s has no entries", VersionMapName)
	}
	return &Classifier{slots: slots, version: version, shardCount: shardCount}, nil
}

func (c *Classifier) ShardCount() uint32 {
	return c.shardCount
}

func (c *Classifier) ReadSlot(index uint32) (domain.ShardInstance, error) {
	if index >= c.shardCount {
		return domain.ShardInstance{}, fmt.Errorf("shard index %d out of range", index)
	}
	var v slotValue
	if err := c.slots.Lookup(index, &v); err != nil {
		return domain.ShardInstance{}, fmt.Errorf("lookup slot %d: %w", index, err)
	}
	return decodeSlot(index, v), nil
}

func (c *Classifier) WriteSlot(index uint32, inst domain.ShardInstance) error {
	if index >= c.shardCount {
		return fmt.Errorf("shard index %d out of range", index)
	}
	v, err := encodeSlot(inst)
	if err != nil {
		return fmt.Errorf("encode slot %d: %w", index, err)
	}
	if err := c.slots.Update(index, v, ebpf.UpdateAny); err != nil {
		return fmt.Errorf("update slot %d: %w", index, err)
	}
	return nil
}

func (c *Classifier) SetVersion(version uint64) error {
	if err := c.version.Update(uint32(0), version, ebpf.UpdateAny); err != nil {
		return fmt.Errorf("update version: %w", err)
	}
	return nil
}

func (c *Classifier) Version() (uint64, error) {
	var v uint64
	if err := c.version.Lookup(uint32(0), &v); err != nil {
		return 0, fmt.Errorf("lookup version: %w", err)
	}
	return v, nil
}

// Close releases the map handles; the pinned maps stay in place.
func (c *Classifier) Close() error {
	return errors.Join(c.slots.Close(), c.version.Close())
}

// encodeSlot requires an IP literal address; the packet path cannot resolve names.
func encodeSlot(inst domain.ShardInstance) (slotValue, error) {
	var v slotValue
	if inst.Address != "" {
		ap, err := netip.ParseAddrPort(inst.Address)
		if err != nil {
			return v, err
		}
		ip := ap.Addr().As16()
		copy(v[0:16], ip[:])
		binary.BigEndian.PutUint16(v[16:18], ap.Port())
	}
	v[18] = byte(inst.Health)
	binary.NativeEndian.PutUint64(v[24:32], inst.Generation)
	return v, nil
}

func decodeSlot(index uint32, v slotValue) domain.ShardInstance {
	inst := domain.ShardInstance{
		ShardIndex: index,
		Health:     domain.HealthState(v[18]),
		Generation: binary.NativeEndian.Uint64(v[24:32]),
	}
	var ip [16]byte
	copy(ip[:], v[0:16])
	port := binary.BigEndian.Uint16(v[16:18])
	addr := netip.AddrFrom16(ip)
	if port != 0 || !addr.IsUnspecified() {
		inst.Address = netip.AddrPortFrom(addr.Unmap(), port).String()
	}
	return inst
}
