package sparse

import "io"

// defaultBufferSize is small enough to keep per-stream overhead low,
// large enough to absorb typical partition-table and superblock reads.
const defaultBufferSize = 64 * 1024

// Buffered wraps a Stream with a single read-ahead buffer, so repeated
// small sequential reads (partition table parsers are the chief caller)
// don't each cost a Seek+Read round trip on the wrapped stream. Writes
// bypass the buffer and invalidate it.
type Buffered struct {
	inner     Stream
	ownership Ownership
	buf       []byte
	bufStart  int64 // absolute offset of buf[0] in inner
	bufLen    int   // valid bytes in buf
	position  int64
	closed    bool
}

// NewBuffered wraps inner in a read-ahead buffer of the given size.
// A non-positive size selects defaultBufferSize.
func NewBuffered(inner Stream, size int, ownership Ownership) *Buffered {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Buffered{
		inner:     inner,
		ownership: ownership,
		buf:       make([]byte, size),
		position:  inner.Position(),
	}
}

func (b *Buffered) checkOpen(op Op) error {
	if b.closed {
		return wrapErr(op, KindDisposed, ErrDisposed)
	}
	return nil
}

func (b *Buffered) CanRead() bool  { return b.inner.CanRead() }
func (b *Buffered) CanWrite() bool { return b.inner.CanWrite() }
func (b *Buffered) CanSeek() bool  { return b.inner.CanSeek() }

func (b *Buffered) Position() int64 { return b.position }

func (b *Buffered) Length() (int64, error) {
	if err := b.checkOpen("Buffered.Length"); err != nil {
		return 0, err
	}
	return b.inner.Length()
}

func (b *Buffered) SetLength(value int64) error {
	if err := b.checkOpen("Buffered.SetLength"); err != nil {
		return err
	}
	b.invalidate()
	return b.inner.SetLength(value)
}

func (b *Buffered) invalidate() { b.bufLen = 0 }

func (b *Buffered) fill() error {
	if _, err := b.inner.Seek(b.position, io.SeekStart); err != nil {
		return err
	}
	n, err := io.ReadFull(b.inner, b.buf)
	if n == 0 && err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	b.bufStart = b.position
	b.bufLen = n
	return nil
}

func (b *Buffered) Read(p []byte) (int, error) {
	const op Op = "Buffered.Read"
	if err := b.checkOpen(op); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	inBuf := b.bufLen > 0 && b.position >= b.bufStart && b.position < b.bufStart+int64(b.bufLen)
	if !inBuf {
		if err := b.fill(); err != nil {
			return 0, wrapErr(op, KindIO, err)
		}
		inBuf = b.bufLen > 0 && b.position >= b.bufStart && b.position < b.bufStart+int64(b.bufLen)
	}
	if !inBuf {
		return 0, io.EOF
	}
	off := int(b.position - b.bufStart)
	n := copy(p, b.buf[off:b.bufLen])
	b.position += int64(n)
	return n, nil
}

func (b *Buffered) Write(p []byte) (int, error) {
	const op Op = "Buffered.Write"
	if err := b.checkOpen(op); err != nil {
		return 0, err
	}
	b.invalidate()
	if _, err := b.inner.Seek(b.position, io.SeekStart); err != nil {
		return 0, wrapErr(op, KindIO, err)
	}
	n, err := b.inner.Write(p)
	b.position += int64(n)
	return n, err
}

func (b *Buffered) Seek(offset int64, whence int) (int64, error) {
	const op Op = "Buffered.Seek"
	if err := b.checkOpen(op); err != nil {
		return 0, err
	}
	// The inner stream's offset runs ahead of b.position after a
	// buffered read, so a relative seek is resolved against b.position.
	if whence == io.SeekCurrent {
		offset += b.position
		whence = io.SeekStart
	}
	pos, err := b.inner.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	b.position = pos
	return pos, nil
}

func (b *Buffered) Extents() ExtentIterator { return b.inner.Extents() }

func (b *Buffered) PositionInBaseStream(base Stream, position int64) (int64, bool) {
	if Stream(b) == base {
		return position, true
	}
	return b.inner.PositionInBaseStream(base, position)
}

func (b *Buffered) Flush() error {
	if err := b.checkOpen("Buffered.Flush"); err != nil {
		return err
	}
	return b.inner.Flush()
}

func (b *Buffered) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.invalidate()
	if b.ownership == OwnershipDispose {
		return b.inner.Close()
	}
	return nil
}
