package volume

import "github.com/archivekit/diskutils/internal/registry"

// Partition is one entry of a PartitionTable: enough for the Volume
// Manager to carve a PhysicalVolumeInfo's Opener out of the parent
// disk stream without knowing the table format itself.
type Partition struct {
	Index    int
	First    int64 // first byte, inclusive, within the disk stream
	Count    int64
	BiosType BiosType
}

// PartitionTable is an external collaborator: this module consumes it,
// never implements it. Concrete formats (MBR, GPT, and anything else)
// live outside this module and register themselves via
// RegisterPartitionTableProbe.
type PartitionTable interface {
	Partitions() []Partition
}

// PartitionTableProbe recognizes and parses one partition-table
// format. IsPartitioned inspects diskContent (already positioned at
// byte 0) cheaply; GetPartitionTables does the full parse only once
// IsPartitioned has returned true.
type PartitionTableProbe interface {
	Name() string
	IsPartitioned(diskContent Disk) bool
	GetPartitionTables(disk Disk) ([]PartitionTable, error)
}

var partitionTableRegistry = registry.New(func() []PartitionTableProbe { return nil })

// RegisterPartitionTableProbe augments the process-wide probe list.
// Re-registering a probe already present (by Name) is a no-op.
func RegisterPartitionTableProbe(probe PartitionTableProbe) {
	partitionTableRegistry.Register(probe, func(a, b PartitionTableProbe) bool {
		return a.Name() == b.Name()
	})
}

func partitionTableProbes() []PartitionTableProbe {
	return partitionTableRegistry.Snapshot()
}
