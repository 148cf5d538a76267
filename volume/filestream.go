package volume

import (
	"io"
	"os"

	"github.com/archivekit/diskutils/extent"
	"github.com/archivekit/diskutils/internal/generic"
	"github.com/archivekit/diskutils/sparse"
)

// fileStream adapts an *os.File to sparse.Stream for disks named by a
// /unix multiaddr locator rather than handed in already open. It
// treats the whole file as one populated extent; it performs no
// sparse-file hole detection (that would need platform-specific
// SEEK_HOLE/SEEK_DATA support out of scope for this module).
type fileStream struct {
	file     *os.File
	writable bool
	position int64
}

func newFileStream(file *os.File, writable bool) *fileStream {
	return &fileStream{file: file, writable: writable}
}

func (f *fileStream) CanRead() bool  { return true }
func (f *fileStream) CanWrite() bool { return f.writable }
func (f *fileStream) CanSeek() bool  { return true }

func (f *fileStream) Position() int64 { return f.position }

func (f *fileStream) Length() (int64, error) {
	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *fileStream) SetLength(n int64) error {
	if !f.writable {
		return &sparse.Error{
			Op:   "fileStream.SetLength",
			Kind: sparse.KindArgument,
			Err:  generic.ConstError("file stream opened read-only"),
		}
	}
	return f.file.Truncate(n)
}

func (f *fileStream) Read(p []byte) (int, error) {
	n, err := f.file.ReadAt(p, f.position)
	f.position += int64(n)
	return n, err
}

func (f *fileStream) Write(p []byte) (int, error) {
	n, err := f.file.WriteAt(p, f.position)
	f.position += int64(n)
	return n, err
}

func (f *fileStream) Seek(offset int64, whence int) (int64, error) {
	// Read and Write use ReadAt/WriteAt, which never move the file's own
	// offset, so a relative seek is resolved against f.position.
	if whence == io.SeekCurrent {
		offset += f.position
		whence = io.SeekStart
	}
	pos, err := f.file.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	f.position = pos
	return pos, nil
}

func (f *fileStream) Extents() sparse.ExtentIterator {
	length, err := f.Length()
	if err != nil || length == 0 {
		return emptyExtentIterator{}
	}
	return &onceExtentIterator{e: extent.New(0, length)}
}

func (f *fileStream) PositionInBaseStream(base sparse.Stream, position int64) (int64, bool) {
	if sparse.Stream(f) == base {
		return position, true
	}
	return 0, false
}

func (f *fileStream) Flush() error { return f.file.Sync() }

func (f *fileStream) Close() error { return f.file.Close() }

type emptyExtentIterator struct{}

func (emptyExtentIterator) Next() (extent.Extent, bool, error) { return extent.Extent{}, false, nil }

type onceExtentIterator struct {
	e    extent.Extent
	done bool
}

func (o *onceExtentIterator) Next() (extent.Extent, bool, error) {
	if o.done {
		return extent.Extent{}, false, nil
	}
	o.done = true
	return o.e, true, nil
}
