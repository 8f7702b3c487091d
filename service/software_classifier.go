package service

import (
	"fmt"
	"sync/atomic"

	"shardctl/domain"
)

// SoftwareClassifier is the user-space classifier used when no kernel classifier is available.
// Each slot is an atomically swapped entry, so the packet path sees either the old or the new
// instance of a slot and never a torn one. Unprogrammed slots are not routable.
type SoftwareClassifier struct {
	rule    domain.KeyRule
	slots   []atomic.Pointer[domain.ShardInstance]
	version atomic.Uint64
}

// NewSoftwareClassifier creates an empty classifier for spec.
func NewSoftwareClassifier(spec domain.ShardSpec) *SoftwareClassifier {
	return &SoftwareClassifier{
		rule:  spec.KeyRule,
		slots: make([]atomic.Pointer[domain.ShardInstance], spec.ShardCount),
	}
}

func (c *SoftwareClassifier) ShardCount() uint32 {
	return uint32(len(c.slots))
}

func (c *SoftwareClassifier) ReadSlot(index uint32) (domain.ShardInstance, error) {
	if index >= uint32(len(c.slots)) {
		return domain.ShardInstance{}, fmt.Errorf("shard index %d out of range", index)
	}
	if inst := c.slots[index].Load(); inst != nil {
		return *inst, nil
	}
	return domain.ShardInstance{ShardIndex: index}, nil
}

func (c *SoftwareClassifier) WriteSlot(index uint32, inst domain.ShardInstance) error {
	if index >= uint32(len(c.slots)) {
		return fmt.Errorf("shard index %d out of range", index)
	}
	inst.ShardIndex = index
	c.slots[index].Store(&inst)
	return nil
}

func (c *SoftwareClassifier) SetVersion(version uint64) error {
	c.version.Store(version)
	return nil
}

func (c *SoftwareClassifier) Version() (uint64, error) {
	return c.version.Load(), nil
}

// Select picks the instance a packet is steered to.
// Returns false when the packet carries no key or its shard has no routable instance.
func (c *SoftwareClassifier) Select(packet []byte) (domain.ShardInstance, bool) {
	idx, ok := c.rule.ShardFor(packet, uint32(len(c.slots)))
	if !ok {
		return domain.ShardInstance{}, false
	}
	inst := c.slots[idx].Load()
	if inst == nil || !inst.Routable() {
		return domain.ShardInstance{}, false
	}
	return *inst, true
}
