package sparse_test

import (
	"io"

	"github.com/archivekit/diskutils/extent"
	"github.com/archivekit/diskutils/sparse"
)

// memStream is a minimal, fully in-memory Stream used only by this
// package's tests. It always reports itself as one fully-populated
// extent and grows on writes past its current length, giving tests a
// writable zero-length tail to exercise boundary writes against.
type memStream struct {
	data     []byte
	position int64
	readOnly bool
	closed   bool
}

func newMemStream(data []byte, readOnly bool) *memStream {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &memStream{data: buf, readOnly: readOnly}
}

func (m *memStream) CanRead() bool  { return true }
func (m *memStream) CanWrite() bool { return !m.readOnly }
func (m *memStream) CanSeek() bool  { return true }

func (m *memStream) Position() int64 { return m.position }

func (m *memStream) Length() (int64, error) { return int64(len(m.data)), nil }

func (m *memStream) SetLength(n int64) error {
	if n <= int64(len(m.data)) {
		m.data = m.data[:n]
		return nil
	}
	grown := make([]byte, n)
	copy(grown, m.data)
	m.data = grown
	return nil
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.position >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.position:])
	m.position += int64(n)
	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	end := m.position + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	n := copy(m.data[m.position:end], p)
	m.position += int64(n)
	return n, nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.position + offset
	case io.SeekEnd:
		target = int64(len(m.data)) + offset
	}
	if target < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	m.position = target
	return target, nil
}

func (m *memStream) Extents() sparse.ExtentIterator {
	if len(m.data) == 0 {
		return emptyExtents{}
	}
	return &onceExtents{e: extent.New(0, int64(len(m.data)))}
}

func (m *memStream) PositionInBaseStream(base sparse.Stream, position int64) (int64, bool) {
	if sparse.Stream(m) == base {
		return position, true
	}
	return 0, false
}

func (m *memStream) Flush() error { return nil }

func (m *memStream) Close() error {
	m.closed = true
	return nil
}

type emptyExtents struct{}

func (emptyExtents) Next() (extent.Extent, bool, error) { return extent.Extent{}, false, nil }

type onceExtents struct {
	e    extent.Extent
	done bool
}

func (o *onceExtents) Next() (extent.Extent, bool, error) {
	if o.done {
		return extent.Extent{}, false, nil
	}
	o.done = true
	return o.e, true, nil
}
