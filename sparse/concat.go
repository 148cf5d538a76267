package sparse

import (
	"io"

	"github.com/u-root/uio/ulog"

	"github.com/archivekit/diskutils/extent"
	"github.com/archivekit/diskutils/internal/generic"
)

// element pairs a sub-stream with its ownership and caches nothing else;
// its cumulative start offset is recomputed on demand from the owning
// Concat's element slice rather than stored redundantly.
type element struct {
	stream    Stream
	ownership Ownership
}

// Concat is a Sparse Stream composed of an ordered, immutable list of
// sub-streams. It is the central composition primitive the Volume
// Manager uses to present a multi-extent logical volume, or a disk
// partition split across several backing slices, as one flat address
// space.
type Concat struct {
	elements []element // immutable after construction
	canWrite bool
	position int64
	closed   bool
	log      ulog.Logger
}

// ConcatOption configures a Concat at construction time.
type ConcatOption func(*Concat) error

// NewConcat builds a Concat over streams in order. ownership applies
// uniformly to every element; use WithElementOwnership for a distinct
// ownership per element if that's insufficient.
//
// CanWrite is computed once, here, by folding over the stored slice,
// never over the caller's original streams argument, which might be a
// one-shot iterator the caller can no longer re-enumerate safely.
func NewConcat(streams []Stream, ownership Ownership, opts ...ConcatOption) (*Concat, error) {
	stored := generic.CompactSlice(streams)
	c := &Concat{elements: make([]element, len(stored)), log: ulog.Null}
	for i, s := range stored {
		c.elements[i] = element{stream: s, ownership: ownership}
	}
	if err := generic.ApplyOptions(c, opts...); err != nil {
		return nil, err
	}
	c.canWrite = true
	for _, e := range c.elements {
		if !e.stream.CanWrite() {
			c.canWrite = false
			break
		}
	}
	return c, nil
}

// WithElementOwnership overrides the ownership of a single element by
// index at construction time, for callers that mix owned and borrowed
// sub-streams in one Concat.
func WithElementOwnership(index int, ownership Ownership) ConcatOption {
	return func(c *Concat) error {
		if index < 0 || index >= len(c.elements) {
			return newErr("WithElementOwnership", KindArgument, "element index out of range")
		}
		c.elements[index].ownership = ownership
		return nil
	}
}

// WithLog supplies a logger the Concat uses to report Close errors it
// otherwise only returns to the caller.
func WithLog(log ulog.Logger) ConcatOption {
	const name = "WithLog"
	return func(c *Concat) error {
		err := generic.ErrIfOptionWasSet(name, c.log, ulog.Null)
		c.log = log
		return err
	}
}

func (c *Concat) checkOpen(op Op) error {
	if c.closed {
		return wrapErr(op, KindDisposed, ErrDisposed)
	}
	return nil
}

func (c *Concat) CanRead() bool  { return true }
func (c *Concat) CanWrite() bool { return c.canWrite }
func (c *Concat) CanSeek() bool  { return true }

func (c *Concat) Position() int64 { return c.position }

// Length returns the sum of every element's length.
func (c *Concat) Length() (int64, error) {
	if err := c.checkOpen("Concat.Length"); err != nil {
		return 0, err
	}
	var total int64
	for _, e := range c.elements {
		l, err := e.stream.Length()
		if err != nil {
			return 0, err
		}
		total += l
	}
	return total, nil
}

// selected is the result of the stream-selection scan: which element is
// active for a given absolute position, and that element's cumulative
// start offset.
type selected struct {
	index int
	start int64
}

// selectElement scans elements in order, accumulating the cumulative
// start offset, and stops at the first element whose range contains t,
// or at the last element if none does (so a position at or past the
// total length always resolves to the tail, letting writes there
// extend it). Errors from a sub-stream's Length() abort the scan.
func (c *Concat) selectElement(t int64) (selected, error) {
	var start int64
	for k, e := range c.elements {
		if k == len(c.elements)-1 {
			return selected{index: k, start: start}, nil
		}
		l, err := e.stream.Length()
		if err != nil {
			return selected{}, err
		}
		if start+l > t {
			return selected{index: k, start: start}, nil
		}
		start += l
	}
	return selected{}, newErr("Concat.selectElement", KindArgument, "concat has no elements")
}

func (c *Concat) Read(p []byte) (int, error) {
	const op Op = "Concat.Read"
	if err := c.checkOpen(op); err != nil {
		return 0, err
	}
	var total int
	for total < len(p) {
		sel, err := c.selectElement(c.position)
		if err != nil {
			return total, wrapErr(op, KindIO, err)
		}
		e := c.elements[sel.index]
		if _, err := e.stream.Seek(c.position-sel.start, io.SeekStart); err != nil {
			return total, wrapErr(op, KindIO, err)
		}
		n, err := e.stream.Read(p[total:])
		total += n
		c.position += int64(n)
		if n == 0 {
			if err != nil && err != io.EOF {
				return total, err
			}
			break
		}
	}
	if total == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

func (c *Concat) Write(p []byte) (int, error) {
	const op Op = "Concat.Write"
	if err := c.checkOpen(op); err != nil {
		return 0, err
	}
	if !c.canWrite {
		return 0, newErr(op, KindArgument, "concat stream is read-only")
	}
	var total int
	for total < len(p) {
		sel, err := c.selectElement(c.position)
		if err != nil {
			return total, wrapErr(op, KindIO, err)
		}
		e := c.elements[sel.index]
		inStreamOffset := c.position - sel.start
		chunk := p[total:]
		if sel.index < len(c.elements)-1 {
			l, err := e.stream.Length()
			if err != nil {
				return total, wrapErr(op, KindIO, err)
			}
			remaining := l - inStreamOffset
			if int64(len(chunk)) > remaining {
				chunk = chunk[:remaining]
			}
			if len(chunk) == 0 {
				// No room left in this non-tail element at this offset:
				// report the lack of progress instead of looping.
				return total, newErr(op, KindIO, "write could not make progress")
			}
		}
		if _, err := e.stream.Seek(inStreamOffset, io.SeekStart); err != nil {
			return total, wrapErr(op, KindIO, err)
		}
		n, werr := e.stream.Write(chunk)
		total += n
		c.position += int64(n)
		if werr != nil {
			return total, werr
		}
		if n == 0 {
			return total, newErr(op, KindIO, "write could not make progress")
		}
	}
	return total, nil
}

func (c *Concat) Seek(offset int64, whence int) (int64, error) {
	const op Op = "Concat.Seek"
	if err := c.checkOpen(op); err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = c.position + offset
	case io.SeekEnd:
		length, err := c.Length()
		if err != nil {
			return 0, err
		}
		target = length + offset
	default:
		return 0, newErr(op, KindArgument, "invalid whence")
	}
	if target < 0 {
		return 0, errMoveBeforeBeginning(op)
	}
	c.position = target
	return target, nil
}

// SetLength delegates to the final element only; shrinking earlier
// elements is never supported because it would invalidate the address
// space of later ones.
func (c *Concat) SetLength(newLength int64) error {
	const op Op = "Concat.SetLength"
	if err := c.checkOpen(op); err != nil {
		return err
	}
	length, err := c.Length()
	if err != nil {
		return err
	}
	sel, err := c.selectElement(length)
	if err != nil {
		return wrapErr(op, KindIO, err)
	}
	if newLength < sel.start {
		return errReduceBelow(op, sel.start)
	}
	last := c.elements[sel.index].stream
	return last.SetLength(newLength - sel.start)
}

// concatExtentIterator lazily walks each element's own iterator in
// turn, translating every extent by that element's cumulative start.
// It never materializes the full extent list, satisfying the laziness
// requirement even though Concat knows each element's length up front.
type concatExtentIterator struct {
	c       *Concat
	index   int
	start   int64
	current ExtentIterator
}

func (c *Concat) Extents() ExtentIterator {
	return &concatExtentIterator{c: c}
}

func (it *concatExtentIterator) Next() (extent.Extent, bool, error) {
	for {
		if it.current == nil {
			if it.index >= len(it.c.elements) {
				return extent.Extent{}, false, nil
			}
			it.current = it.c.elements[it.index].stream.Extents()
		}
		e, ok, err := it.current.Next()
		if err != nil {
			return extent.Extent{}, false, err
		}
		if !ok {
			l, err := it.c.elements[it.index].stream.Length()
			if err != nil {
				return extent.Extent{}, false, err
			}
			it.start += l
			it.index++
			it.current = nil
			continue
		}
		return e.Offset(it.start), true, nil
	}
}

// PositionInBaseStream returns position unchanged if base is this
// Concat itself; otherwise it delegates to whichever element is active
// at position, translating position into that element's own space.
func (c *Concat) PositionInBaseStream(base Stream, position int64) (int64, bool) {
	if Stream(c) == base {
		return position, true
	}
	sel, err := c.selectElement(position)
	if err != nil {
		return 0, false
	}
	return c.elements[sel.index].stream.PositionInBaseStream(base, position-sel.start)
}

// Flush flushes every element in order, stopping at the first error.
func (c *Concat) Flush() error {
	if err := c.checkOpen("Concat.Flush"); err != nil {
		return err
	}
	for _, e := range c.elements {
		if err := e.stream.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every owned element in order, idempotently, joining
// any errors encountered rather than stopping at the first one so that
// a failure to release one element doesn't leak the rest.
func (c *Concat) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var owned []io.Closer
	for _, e := range c.elements {
		if e.ownership == OwnershipDispose {
			owned = append(owned, e.stream)
		}
	}
	err := generic.CloseWithError(nil, owned...)
	if err != nil {
		c.log.Printf("Concat.Close: %v", err)
	}
	return err
}
