// Package sparse implements the seekable, sparse, read/write stream
// contract shared by every file-system parser this module's callers
// bring their own: a byte-addressable view with per-region extent
// reporting, and the Concat composition that virtualises many such
// streams into one.
package sparse

import (
	"io"

	"github.com/archivekit/diskutils/extent"
	"github.com/archivekit/diskutils/internal/generic"
)

type (
	// Lengther reports and changes the logical length of a stream.
	Lengther interface {
		Length() (int64, error)
		SetLength(int64) error
	}

	// Extenter reports the populated regions of a stream lazily:
	// implementations must not materialize their full extent list
	// just to let a caller read a prefix of it.
	Extenter interface {
		Extents() ExtentIterator
	}

	// Stream is the polymorphic byte stream every sub-stream,
	// Concat, and volume opener returns. It is a capability set
	// (composed of small interfaces), not a base class; Concat is one
	// implementation among many composed from the same small pieces.
	Stream interface {
		io.Reader
		io.Writer
		io.Seeker
		io.Closer
		Lengther
		Extenter

		CanRead() bool
		CanWrite() bool
		CanSeek() bool

		// Position is the current absolute byte offset, kept in sync
		// with Seek/Read/Write.
		Position() int64

		// PositionInBaseStream returns the offset within base that
		// corresponds to position in this view, if a direct mapping
		// exists. Used for I/O elision by callers that want to reach
		// past this view directly into the underlying device.
		PositionInBaseStream(base Stream, position int64) (int64, bool)

		Flush() error
	}

	// ExtentIterator is a pull iterator over a stream's populated
	// regions. Next returns (extent, true, nil) for each element,
	// then (extent.Extent{}, false, nil) once exhausted, or a non-nil
	// error if the underlying stream failed mid-enumeration.
	ExtentIterator interface {
		Next() (extent.Extent, bool, error)
	}
)

// Ownership selects whether a container releases a child stream when
// the container itself is disposed.
type Ownership uint8

const (
	_ Ownership = iota
	// OwnershipNone: caller retains lifetime responsibility.
	OwnershipNone
	// OwnershipDispose: the container closes the child on its own Close.
	OwnershipDispose
)

func (o Ownership) String() string {
	switch o {
	case OwnershipNone:
		return "none"
	case OwnershipDispose:
		return "dispose"
	default:
		return "invalid"
	}
}

// ParseOwnership parses the String() form back into an Ownership.
func ParseOwnership(s string) (Ownership, error) {
	return generic.ParseEnum(Ownership(0), Ownership(3), s)
}

// sliceExtentIterator adapts an already-materialized slice to
// ExtentIterator. None of this package's streams uses it: SubStream
// clips its parent's own iterator instead.
type sliceExtentIterator struct {
	extents []extent.Extent
	i       int
}

func newSliceExtentIterator(extents []extent.Extent) ExtentIterator {
	return &sliceExtentIterator{extents: extents}
}

func (it *sliceExtentIterator) Next() (extent.Extent, bool, error) {
	if it.i >= len(it.extents) {
		return extent.Extent{}, false, nil
	}
	e := it.extents[it.i]
	it.i++
	return e, true, nil
}
