// Package volume implements the discovery engine that walks disks,
// partition tables, and logical-volume factories to build the
// PhysicalVolumeInfo / LogicalVolumeInfo records file-system parsers
// consume as flat sparse.Stream address spaces.
package volume

import (
	"github.com/archivekit/diskutils/internal/generic"
	"github.com/archivekit/diskutils/sparse"
)

// Disk is the minimal shape a registered disk must satisfy: a stream
// over its raw bytes, and the ordinal it was added under (used as the
// disk-identity fallback and for stable factory map_disks ordering).
type Disk interface {
	Stream() sparse.Stream
	Ordinal() int
}

// Opener produces a fresh Sparse Stream for a volume each time it is
// called; PhysicalVolumeInfo and LogicalVolumeInfo hand these out
// rather than a live stream so that callers control their own
// lifetime and concurrency.
type Opener func() (sparse.Stream, error)

// BiosType classifies how a volume is addressed on its medium: MBR
// partition type byte, GPT partition type GUID, or unknown/whole-disk.
type BiosType uint8

const (
	_ BiosType = iota
	BiosTypeUnknown
	BiosTypeMBR
	BiosTypeGPT
	BiosTypeGPTProtective
)

func (b BiosType) String() string {
	switch b {
	case BiosTypeUnknown:
		return "unknown"
	case BiosTypeMBR:
		return "mbr"
	case BiosTypeGPT:
		return "gpt"
	case BiosTypeGPTProtective:
		return "gpt-protective"
	default:
		return "invalid"
	}
}

// ParseBiosType parses the String() form back into a BiosType.
func ParseBiosType(s string) (BiosType, error) {
	return generic.ParseEnum(BiosType(0), BiosType(5), s)
}

// VolumeStatus reports whether a logical volume is fully readable.
type VolumeStatus uint8

const (
	_ VolumeStatus = iota
	StatusHealthy
	StatusFailed
	// StatusFailedRedundancy marks a multi-disk logical volume (e.g. a
	// mirrored or striped set produced by a LogicalVolumeFactory) that
	// has lost redundancy but can still be read from its surviving
	// members.
	StatusFailedRedundancy
)

func (s VolumeStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusFailed:
		return "failed"
	case StatusFailedRedundancy:
		return "failed-redundancy"
	default:
		return "invalid"
	}
}

// ParseVolumeStatus parses the String() form back into a VolumeStatus.
func ParseVolumeStatus(s string) (VolumeStatus, error) {
	return generic.ParseEnum(VolumeStatus(0), VolumeStatus(4), s)
}

// PhysicalVolumeInfo describes one addressable region of a disk: a
// single partition, or the whole disk when it carries no partition
// table.
type PhysicalVolumeInfo struct {
	Identity       string
	DiskIdentity   string
	PartitionIndex int // -1 for whole-disk volumes
	Length         int64
	BiosType       BiosType
	Open           Opener
}

// LogicalVolumeInfo describes a file-system-visible volume. It may
// wrap a single PhysicalVolumeInfo one-to-one (the common case) or
// span several, as produced by a LogicalVolumeFactory.
type LogicalVolumeInfo struct {
	Identity string
	Length   int64
	BiosType BiosType
	Status   VolumeStatus
	Open     Opener
}
