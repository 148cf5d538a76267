package sparse

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/archivekit/diskutils/internal/generic"
)

// Kind classifies the way an *Error failed. It deliberately isn't a
// POSIX-style errno set; a byte-addressable stream has only a handful
// of distinct failure shapes.
type Kind uint8

const (
	KindOther       Kind = iota // Unclassified.
	KindIO                      // Seek/SetLength violated stream bounds.
	KindArgument                // Caller misused ownership, wrote to a read-only stream, etc.
	KindDisposed                // Stream was used after Close.
	KindInvalidData             // Propagated verbatim from a sub-stream; never raised here.
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindArgument:
		return "invalid argument"
	case KindDisposed:
		return "object disposed"
	case KindInvalidData:
		return "invalid data"
	default:
		return "error"
	}
}

// Op names the operation that failed, e.g. "Concat.Seek".
type Op string

// Error is the concrete error type returned by this package.
// Its shape mirrors filesystem/errors.Error (Op + Kind + wrapped cause)
// without the fs.PathError embedding, which had no meaning for a
// stream that isn't addressed by a file system path.
type Error struct {
	Op   Op
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	var b bytes.Buffer
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	if e.Kind != KindOther {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if b.Len() != 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "sparse: error"
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// newErr builds an *Error from a static message, avoiding an
// allocation per call for the message itself.
func newErr(op Op, kind Kind, msg string) error {
	return &Error{Op: op, Kind: kind, Err: generic.ConstError(msg)}
}

func wrapErr(op Op, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// ErrDisposed is the cause wrapped by the error a closed Concat returns
// from Read, Write, Seek, Length, SetLength and Flush. Extents and
// PositionInBaseStream do not check whether the Concat is closed.
var ErrDisposed = newErr("", KindDisposed, "object disposed")

// IsDisposed reports whether err (or any error it wraps) is ErrDisposed.
func IsDisposed(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindDisposed
}

func errMoveBeforeBeginning(op Op) error {
	return newErr(op, KindIO, "move before beginning")
}

func errReduceBelow(op Op, start int64) error {
	return wrapErr(op, KindIO,
		fmt.Errorf("unable to reduce stream length to less than %d", start))
}
