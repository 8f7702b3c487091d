package interfaces

import "shardctl/domain"

// Programmer installs shard tables into the host classifier.
//
//go:generate moq -stub -out mock/programmer.go -pkg mock . Programmer
type Programmer interface {
	// Program writes every slot that differs from the last programmed table, then the table version.
	// On failure no version is advanced and the written slots are restored; the error is a program_error.
	Program(table domain.ShardTable) error

	// Reset forgets the last programmed table so the next Program writes every slot.
	Reset()

	// Version is the last table version fully programmed.
	Version() uint64
}

// ClassifierMap is the shared slot map consulted by the packet path.
// The Programmer is its only writer; each WriteSlot replaces one entry atomically.
//
//go:generate moq -stub -out mock/classifier_map.go -pkg mock . ClassifierMap
type ClassifierMap interface {
	ShardCount() uint32
	ReadSlot(index uint32) (domain.ShardInstance, error)
	WriteSlot(index uint32, inst domain.ShardInstance) error
	SetVersion(version uint64) error
	Version() (uint64, error)
}
