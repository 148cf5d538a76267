package volume

import (
	"io"

	"github.com/archivekit/diskutils/extent"
	"github.com/archivekit/diskutils/sparse"
)

// fakeStream is a minimal in-memory sparse.Stream used only by this
// package's tests, mirroring sparse_test's memStream without importing
// across package boundaries.
type fakeStream struct {
	data           []byte
	position       int64
	lengthOverride int64 // 0 means "use len(data)"; lets tests model a large disk without allocating it
}

func newFakeStream(data []byte) *fakeStream {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &fakeStream{data: buf}
}

func newFakeStreamWithLength(header []byte, length int64) *fakeStream {
	s := newFakeStream(header)
	s.lengthOverride = length
	return s
}

func (f *fakeStream) CanRead() bool  { return true }
func (f *fakeStream) CanWrite() bool { return true }
func (f *fakeStream) CanSeek() bool  { return true }

func (f *fakeStream) Position() int64 { return f.position }

func (f *fakeStream) Length() (int64, error) {
	if f.lengthOverride != 0 {
		return f.lengthOverride, nil
	}
	return int64(len(f.data)), nil
}

func (f *fakeStream) SetLength(n int64) error {
	if n <= int64(len(f.data)) {
		f.data = f.data[:n]
		return nil
	}
	grown := make([]byte, n)
	copy(grown, f.data)
	f.data = grown
	return nil
}

func (f *fakeStream) Read(p []byte) (int, error) {
	if f.position >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.position:])
	f.position += int64(n)
	return n, nil
}

func (f *fakeStream) Write(p []byte) (int, error) {
	end := f.position + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	n := copy(f.data[f.position:end], p)
	f.position += int64(n)
	return n, nil
}

func (f *fakeStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.position + offset
	case io.SeekEnd:
		target = int64(len(f.data)) + offset
	}
	f.position = target
	return target, nil
}

func (f *fakeStream) Extents() sparse.ExtentIterator {
	if len(f.data) == 0 {
		return emptyExtentIterator{}
	}
	return &onceExtentIterator{e: extent.New(0, int64(len(f.data)))}
}

func (f *fakeStream) PositionInBaseStream(base sparse.Stream, position int64) (int64, bool) {
	if sparse.Stream(f) == base {
		return position, true
	}
	return 0, false
}

func (f *fakeStream) Flush() error { return nil }
func (f *fakeStream) Close() error { return nil }

type fakeDisk struct {
	stream  sparse.Stream
	ordinal int
}

func (d *fakeDisk) Stream() sparse.Stream { return d.stream }
func (d *fakeDisk) Ordinal() int          { return d.ordinal }

// fakePartitionTableProbe claims only the specific disk instance it was
// built for (by interface equality), so tests that register a probe
// into the process-wide registry don't affect unrelated tests' disks
// within the same test binary.
type fakePartitionTableProbe struct {
	name         string
	targetStream sparse.Stream
	tables       []PartitionTable
	err          error
}

func (p *fakePartitionTableProbe) Name() string { return p.name }

func (p *fakePartitionTableProbe) IsPartitioned(disk Disk) bool {
	return disk.Stream() == p.targetStream
}

func (p *fakePartitionTableProbe) GetPartitionTables(disk Disk) ([]PartitionTable, error) {
	if disk.Stream() != p.targetStream {
		return nil, nil
	}
	return p.tables, p.err
}

type fakePartitionTable struct {
	partitions []Partition
}

func (t *fakePartitionTable) Partitions() []Partition { return t.partitions }

// fakeLogicalVolumeFactory claims volumes whose identity is in claims,
// and optionally injects one composite volume via MapDisks.
type fakeLogicalVolumeFactory struct {
	name   string
	claims map[string]bool
	inject *LogicalVolumeInfo
}

func (f *fakeLogicalVolumeFactory) Name() string { return f.name }

func (f *fakeLogicalVolumeFactory) HandlesPhysicalVolume(pvi PhysicalVolumeInfo) bool {
	return f.claims[pvi.Identity]
}

func (f *fakeLogicalVolumeFactory) MapDisks(_ []Disk, _ map[string]PhysicalVolumeInfo, result map[string]LogicalVolumeInfo) {
	if f.inject != nil {
		result[f.inject.Identity] = *f.inject
	}
}
