package generic

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// Enum is the small closed set of integer-backed, string-rendering
// types this module declares (sparse.Ownership, volume.BiosType,
// volume.VolumeStatus): constraints.Integer for arithmetic over the
// zero-value-is-invalid convention, fmt.Stringer for ParseEnum's
// lookup.
type Enum interface {
	constraints.Integer
	fmt.Stringer
}

// ParseEnum looks up s (case-insensitively) among the String() forms
// of every value strictly between start and end, returning start and
// an error if none match. Every Enum in this module reserves its zero
// value as "invalid", so callers pass that zero value as start and
// one past their last valid member as end.
//
// TODO(enum): a real constructor (NewEnum(start, end) + bound Parse
// method) would let callers drop the repeated start/end pair at each
// call site; not worth it for three small enums.
func ParseEnum[e Enum](start, end e, s string) (e, error) {
	want := strings.ToLower(s)
	for v := start + 1; v != end; v++ {
		if strings.ToLower(v.String()) == want {
			return v, nil
		}
	}
	return start, fmt.Errorf("invalid Enum: \"%s\"", s)
}
