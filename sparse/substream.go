package sparse

import (
	"io"

	"github.com/archivekit/diskutils/extent"
)

// SubStream is a Sparse Stream view over a byte range [First, First+Count)
// of a parent stream. Reads are clipped to the window's end; a write
// that would cross the window's end is rejected whole, with nothing
// written.
// The Volume Manager uses this to present a disk partition as a stream
// without copying it.
type SubStream struct {
	parent    Stream
	first     int64
	count     int64
	position  int64
	ownership Ownership
	canWrite  bool
	closed    bool
}

// NewSubStream returns a window over parent covering [first, first+count).
// canWrite is clamped to parent.CanWrite().
func NewSubStream(parent Stream, first, count int64, ownership Ownership) *SubStream {
	if first < 0 || count < 0 {
		panic("sparse: negative SubStream bounds")
	}
	return &SubStream{
		parent:    parent,
		first:     first,
		count:     count,
		ownership: ownership,
		canWrite:  parent.CanWrite(),
	}
}

func (s *SubStream) checkOpen(op Op) error {
	if s.closed {
		return wrapErr(op, KindDisposed, ErrDisposed)
	}
	return nil
}

func (s *SubStream) CanRead() bool  { return true }
func (s *SubStream) CanWrite() bool { return s.canWrite }
func (s *SubStream) CanSeek() bool  { return true }

func (s *SubStream) Position() int64 { return s.position }

func (s *SubStream) Length() (int64, error) {
	if err := s.checkOpen("SubStream.Length"); err != nil {
		return 0, err
	}
	return s.count, nil
}

// SetLength is not supported: a window's extent is fixed by its parent.
func (s *SubStream) SetLength(int64) error {
	return newErr("SubStream.SetLength", KindArgument, "sub-stream length is fixed by its parent")
}

func (s *SubStream) Read(p []byte) (int, error) {
	const op Op = "SubStream.Read"
	if err := s.checkOpen(op); err != nil {
		return 0, err
	}
	remaining := s.count - s.position
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	if _, err := s.parent.Seek(s.first+s.position, io.SeekStart); err != nil {
		return 0, wrapErr(op, KindIO, err)
	}
	n, err := s.parent.Read(p)
	s.position += int64(n)
	return n, err
}

func (s *SubStream) Write(p []byte) (int, error) {
	const op Op = "SubStream.Write"
	if err := s.checkOpen(op); err != nil {
		return 0, err
	}
	if !s.canWrite {
		return 0, newErr(op, KindArgument, "sub-stream is read-only")
	}
	remaining := s.count - s.position
	if int64(len(p)) > remaining {
		return 0, newErr(op, KindArgument, "write would cross sub-stream bound")
	}
	if _, err := s.parent.Seek(s.first+s.position, io.SeekStart); err != nil {
		return 0, wrapErr(op, KindIO, err)
	}
	n, err := s.parent.Write(p)
	s.position += int64(n)
	return n, err
}

func (s *SubStream) Seek(offset int64, whence int) (int64, error) {
	const op Op = "SubStream.Seek"
	if err := s.checkOpen(op); err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.position + offset
	case io.SeekEnd:
		target = s.count + offset
	default:
		return 0, newErr(op, KindArgument, "invalid whence")
	}
	if target < 0 {
		return 0, errMoveBeforeBeginning(op)
	}
	s.position = target
	return target, nil
}

func (s *SubStream) Extents() ExtentIterator {
	it := s.parent.Extents()
	window := extent.New(s.first, s.count)
	return &clippedExtentIterator{inner: it, window: window}
}

type clippedExtentIterator struct {
	inner  ExtentIterator
	window extent.Extent
}

func (c *clippedExtentIterator) Next() (extent.Extent, bool, error) {
	for {
		e, ok, err := c.inner.Next()
		if err != nil || !ok {
			return extent.Extent{}, false, err
		}
		clipped := extent.Intersect([]extent.Extent{e}, []extent.Extent{c.window})
		if len(clipped) == 0 {
			continue
		}
		return clipped[0].Offset(-c.window.Start), true, nil
	}
}

func (s *SubStream) PositionInBaseStream(base Stream, position int64) (int64, bool) {
	if base == Stream(s) {
		return position, true
	}
	return s.parent.PositionInBaseStream(base, s.first+position)
}

func (s *SubStream) Flush() error {
	if err := s.checkOpen("SubStream.Flush"); err != nil {
		return err
	}
	return s.parent.Flush()
}

func (s *SubStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ownership == OwnershipDispose {
		return s.parent.Close()
	}
	return nil
}
