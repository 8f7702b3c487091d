package service

import (
	"fmt"
	"sync"

	"shardctl/domain"
	"shardctl/helpers"
	"shardctl/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// slotProgrammer implements interfaces.Programmer on top of a ClassifierMap. It keeps the last
// table it fully programmed and writes only the slots that differ from it. The classifier version
// is written after every slot of an update is confirmed, so a reader never sees a version ahead of
// its slots. A failed write restores the slots already written in that update and leaves the version
// untouched; the baseline is then dropped so the next Program is a full write.
type slotProgrammer struct {
	classifier interfaces.ClassifierMap
	logger     log.Logger

	mu      sync.Mutex
	last    []domain.ShardInstance
	version uint64
}

// NewProgrammer creates a Programmer writing into classifier. Panics on nil classifier or logger.
func NewProgrammer(classifier interfaces.ClassifierMap, logger log.Logger) interfaces.Programmer {
	return &slotProgrammer{
		classifier: helpers.NilPanic(classifier, "service.programmer.go: classifier is required"),
		logger:     log.With(helpers.NilPanic(logger, "service.programmer.go: logger is required"), "component", "programmer"),
	}
}

type slotWrite struct {
	index    uint32
	previous domain.ShardInstance
}

// Program installs table. It never observes cancellation: the update either completes or is rolled back.
func (p *slotProgrammer) Program(table domain.ShardTable) error {
	if err := table.Validate(); err != nil {
		return NewProgramError("invalid table", err)
	}
	if table.ShardCount != p.classifier.ShardCount() {
		return NewProgramError(fmt.Sprintf("table has %d shards, classifier has %d", table.ShardCount, p.classifier.ShardCount()), nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	written := make([]slotWrite, 0, len(table.Instances))
	for _, inst := range table.Instances {
		if p.last != nil && p.last[inst.ShardIndex] == inst {
			continue
		}
		previous, err := p.classifier.ReadSlot(inst.ShardIndex)
		if err == nil {
			err = p.classifier.WriteSlot(inst.ShardIndex, inst)
		}
		if err != nil {
			p.abort(table.Version, written)
			return NewProgramError(fmt.Sprintf("write shard %d slot", inst.ShardIndex), err)
		}
		written = append(written, slotWrite{index: inst.ShardIndex, previous: previous})
	}

	if err := p.classifier.SetVersion(table.Version); err != nil {
		p.abort(table.Version, written)
		return NewProgramError("write classifier version", err)
	}

	p.last = append(p.last[:0], table.Instances...)
	p.version = table.Version
	level.Debug(p.logger).Log("msg", "table programmed", "version", table.Version, "slots_written", len(written))
	return nil
}

// abort restores written slots in reverse order. Caller must hold p.mu.
func (p *slotProgrammer) abort(version uint64, written []slotWrite) {
	restoreFailed := 0
	for i := len(written) - 1; i >= 0; i-- {
		if err := p.classifier.WriteSlot(written[i].index, written[i].previous); err != nil {
			restoreFailed++
			level.Error(p.logger).Log("msg", "restore shard slot failed", "shard", written[i].index, "err", err)
		}
	}
	p.last = nil
	level.Error(p.logger).Log(
		"msg", "dataplane update aborted, traffic may be misrouted until resync",
		"target_version", version,
		"programmed_version", p.version,
		"slots_restored", len(written)-restoreFailed,
		"slots_restore_failed", restoreFailed,
	)
}

func (p *slotProgrammer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = nil
}

func (p *slotProgrammer) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}
