package volume

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/multiformats/go-multiaddr"
	"golang.org/x/sync/errgroup"

	"github.com/archivekit/diskutils/sparse"
)

// diskRecord pairs a registered Disk with its identity, computed once
// at AddDisk time (identity depends only on the disk's own bytes and
// ordinal, never on partition-table or factory scanning).
type diskRecord struct {
	disk     Disk
	identity string
}

type diskHandle struct {
	stream  sparse.Stream
	ordinal int
}

func (d *diskHandle) Stream() sparse.Stream { return d.stream }
func (d *diskHandle) Ordinal() int          { return d.ordinal }

// Manager maintains a mutable set of disks and, on demand, scans them
// into physical and logical volumes. Every exported method holds the
// Manager's own mutex, so concurrent calls on one instance are
// serialized.
type Manager struct {
	mu       sync.Mutex
	disks    []diskRecord
	physical map[string]PhysicalVolumeInfo
	logical  map[string]LogicalVolumeInfo
	dirty    bool
}

// NewManager returns an empty Manager with no registered disks.
func NewManager() *Manager {
	return &Manager{dirty: true}
}

// AddDisk registers a disk, identified either by an already-open
// sparse.Stream or by a multiaddr.Multiaddr /unix locator naming a
// path to open. It returns the disk's computed identity immediately;
// it does not trigger a physical/logical scan.
func (m *Manager) AddDisk(locator any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stream, err := m.resolveDiskStream(locator)
	if err != nil {
		return "", err
	}

	handle := &diskHandle{stream: stream, ordinal: len(m.disks)}
	identity, err := diskIdentity(handle)
	if err != nil {
		return "", err
	}

	m.disks = append(m.disks, diskRecord{disk: handle, identity: identity})
	m.dirty = true
	return identity, nil
}

func (m *Manager) resolveDiskStream(locator any) (sparse.Stream, error) {
	switch v := locator.(type) {
	case sparse.Stream:
		return v, nil
	case multiaddr.Multiaddr:
		return openMultiaddrDisk(v)
	default:
		return nil, fmt.Errorf("volume: unsupported disk locator type %T", locator)
	}
}

// openMultiaddrDisk resolves a /unix multiaddr to a file path and
// opens it read-write, falling back to read-only. A typed locator
// keeps callers from having to guess whether a bare string names an
// already-open stream or a path to open.
func openMultiaddrDisk(maddr multiaddr.Multiaddr) (sparse.Stream, error) {
	value, err := maddr.ValueForProtocol(multiaddr.P_UNIX)
	if err != nil {
		return nil, fmt.Errorf("volume: disk locator %q is not a /unix path: %w", maddr, err)
	}
	path, err := url.PathUnescape(value)
	if err != nil {
		return nil, fmt.Errorf("volume: disk locator %q has an invalid path component: %w", maddr, err)
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	writable := true
	if err != nil {
		file, err = os.Open(path)
		writable = false
	}
	if err != nil {
		return nil, err
	}
	return newFileStream(file, writable), nil
}

// GetPhysicalVolumes returns every discovered physical volume, sorted
// by identity for a stable, comparable ordering across calls.
func (m *Manager) GetPhysicalVolumes() ([]PhysicalVolumeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureScanned(); err != nil {
		return nil, err
	}
	out := make([]PhysicalVolumeInfo, 0, len(m.physical))
	for _, pvi := range m.physical {
		out = append(out, pvi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out, nil
}

// GetLogicalVolumes returns every discovered logical volume, sorted by
// identity.
func (m *Manager) GetLogicalVolumes() ([]LogicalVolumeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureScanned(); err != nil {
		return nil, err
	}
	out := make([]LogicalVolumeInfo, 0, len(m.logical))
	for _, lvi := range m.logical {
		out = append(out, lvi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out, nil
}

// VolumeKind distinguishes which of VolumeInfo's two payloads is set.
type VolumeKind uint8

const (
	_ VolumeKind = iota
	VolumeKindPhysical
	VolumeKindLogical
)

// VolumeInfo is a tagged union over the one identity namespace
// GetVolume searches (logical volumes first, then physical).
type VolumeInfo struct {
	Kind     VolumeKind
	Physical PhysicalVolumeInfo
	Logical  LogicalVolumeInfo
}

// GetVolume looks up identity among logical volumes, then physical
// volumes, triggering a scan first if the manager is dirty.
func (m *Manager) GetVolume(identity string) (VolumeInfo, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureScanned(); err != nil {
		return VolumeInfo{}, false, err
	}
	if lvi, ok := m.logical[identity]; ok {
		return VolumeInfo{Kind: VolumeKindLogical, Logical: lvi}, true, nil
	}
	if pvi, ok := m.physical[identity]; ok {
		return VolumeInfo{Kind: VolumeKindPhysical, Physical: pvi}, true, nil
	}
	return VolumeInfo{}, false, nil
}

// GetPhysicalVolumes is the static convenience form: it builds a
// throwaway single-disk Manager and returns that disk's physical
// volumes.
func GetPhysicalVolumes(locator any) ([]PhysicalVolumeInfo, error) {
	m := NewManager()
	if _, err := m.AddDisk(locator); err != nil {
		return nil, err
	}
	return m.GetPhysicalVolumes()
}

func (m *Manager) ensureScanned() error {
	if !m.dirty {
		return nil
	}

	type outcome struct {
		pvis []PhysicalVolumeInfo
		err  error
	}
	outcomes := make([]outcome, len(m.disks))

	var g errgroup.Group
	for i, rec := range m.disks {
		i, rec := i, rec
		g.Go(func() error {
			pvis, err := scanDiskPhysicalVolumes(rec)
			outcomes[i] = outcome{pvis: pvis, err: err}
			return nil
		})
	}
	_ = g.Wait() // goroutines never return a non-nil error; failures are collected below

	var scanErr *multierror.Error
	for _, o := range outcomes {
		if o.err != nil {
			scanErr = multierror.Append(scanErr, o.err)
		}
	}
	if scanErr != nil {
		return scanErr.ErrorOrNil()
	}

	physical := make(map[string]PhysicalVolumeInfo)
	for _, o := range outcomes {
		for _, pvi := range o.pvis {
			if _, exists := physical[pvi.Identity]; exists {
				panic(fmt.Sprintf("volume: duplicate physical volume identity %q", pvi.Identity))
			}
			physical[pvi.Identity] = pvi
		}
	}

	logical := make(map[string]LogicalVolumeInfo)
	factories := logicalVolumeFactories()
	for _, pvi := range physical {
		claimed := false
		for _, f := range factories {
			if f.HandlesPhysicalVolume(pvi) {
				claimed = true
				break
			}
		}
		if claimed {
			continue
		}
		lvi := LogicalVolumeInfo{
			Identity: pvi.Identity,
			Length:   pvi.Length,
			BiosType: pvi.BiosType,
			Status:   StatusHealthy,
			Open:     pvi.Open,
		}
		if _, exists := logical[lvi.Identity]; exists {
			panic(fmt.Sprintf("volume: duplicate logical volume identity %q", lvi.Identity))
		}
		logical[lvi.Identity] = lvi
	}

	disks := make([]Disk, len(m.disks))
	for i, rec := range m.disks {
		disks[i] = rec.disk
	}
	for _, f := range factories {
		f.MapDisks(disks, physical, logical)
	}

	m.physical = physical
	m.logical = logical
	m.dirty = false
	return nil
}

func scanDiskPhysicalVolumes(rec diskRecord) ([]PhysicalVolumeInfo, error) {
	disk := rec.disk
	for _, probe := range partitionTableProbes() {
		if _, err := disk.Stream().Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if !probe.IsPartitioned(disk) {
			continue
		}
		tables, err := probe.GetPartitionTables(disk)
		if err != nil {
			return nil, err
		}
		var pvis []PhysicalVolumeInfo
		for _, table := range tables {
			for _, part := range table.Partitions() {
				part := part
				pvis = append(pvis, PhysicalVolumeInfo{
					Identity:       fmt.Sprintf("%s:%d", rec.identity, part.Index),
					DiskIdentity:   rec.identity,
					PartitionIndex: part.Index,
					Length:         part.Count,
					BiosType:       part.BiosType,
					Open: func() (sparse.Stream, error) {
						return sparse.NewSubStream(disk.Stream(), part.First, part.Count, sparse.OwnershipNone), nil
					},
				})
			}
		}
		return pvis, nil
	}

	length, err := disk.Stream().Length()
	if err != nil {
		return nil, err
	}
	return []PhysicalVolumeInfo{{
		Identity:       rec.identity,
		DiskIdentity:   rec.identity,
		PartitionIndex: -1,
		Length:         length,
		BiosType:       BiosTypeUnknown,
		Open: func() (sparse.Stream, error) {
			return sparse.NewSubStream(disk.Stream(), 0, length, sparse.OwnershipNone), nil
		},
	}}, nil
}
