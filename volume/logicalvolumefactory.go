package volume

import "github.com/archivekit/diskutils/internal/registry"

// LogicalVolumeFactory is an external collaborator that claims
// physical volumes belonging to some multi-disk scheme (software RAID,
// LVM-style pooling) and emits the composite LogicalVolumeInfo records
// for them. This module consumes the interface only; no concrete
// factory is implemented here.
type LogicalVolumeFactory interface {
	Name() string

	// HandlesPhysicalVolume reports whether this factory claims pvi.
	// The first factory (in registration order) to report true claims
	// the volume; later factories are not consulted for it.
	HandlesPhysicalVolume(pvi PhysicalVolumeInfo) bool

	// MapDisks may insert or override entries in result, keyed by
	// LogicalVolumeInfo.Identity, using disks and the physical volumes
	// already discovered. It runs once per scan after every physical
	// volume has been classified.
	MapDisks(disks []Disk, physical map[string]PhysicalVolumeInfo, result map[string]LogicalVolumeInfo)
}

var logicalVolumeFactoryRegistry = registry.New(func() []LogicalVolumeFactory { return nil })

// RegisterLogicalVolumeFactory augments the process-wide factory list.
// Re-registering a factory already present (by Name) is a no-op.
func RegisterLogicalVolumeFactory(factory LogicalVolumeFactory) {
	logicalVolumeFactoryRegistry.Register(factory, func(a, b LogicalVolumeFactory) bool {
		return a.Name() == b.Name()
	})
}

func logicalVolumeFactories() []LogicalVolumeFactory {
	return logicalVolumeFactoryRegistry.Snapshot()
}
