// Package extent implements the half-open byte range used to describe
// the populated regions of a sparse stream.
package extent

import (
	"fmt"
	"sort"

	"github.com/archivekit/diskutils/internal/generic"
)

// Extent is the half-open byte range [Start, Start+Length).
type Extent struct {
	Start, Length int64
}

// New constructs an Extent, panicking if length is negative.
// A negative length is always a caller bug, never recoverable data.
func New(start, length int64) Extent {
	if length < 0 {
		panic(fmt.Sprintf("extent: negative length %d", length))
	}
	return Extent{Start: start, Length: length}
}

// End returns the (exclusive) end of the range.
func (e Extent) End() int64 { return e.Start + e.Length }

// Empty reports whether the extent covers zero bytes.
func (e Extent) Empty() bool { return e.Length == 0 }

// Offset returns a copy of e translated by delta.
func (e Extent) Offset(delta int64) Extent { return Extent{Start: e.Start + delta, Length: e.Length} }

// Overlaps reports whether e and other share at least one byte,
// or are directly adjacent (touching ranges are considered overlapping
// for the purposes of merge/normalize).
func (e Extent) Overlaps(other Extent) bool {
	return e.Start <= other.End() && other.Start <= e.End()
}

func (e Extent) String() string {
	return fmt.Sprintf("[%d, %d)", e.Start, e.End())
}

// Normalize returns a sorted, merged, non-overlapping copy of extents.
// Zero-length extents are dropped.
func Normalize(extents []Extent) []Extent {
	filtered := make([]Extent, 0, len(extents))
	for _, e := range extents {
		if !e.Empty() {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return filtered
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Start < filtered[j].Start })

	merged := make([]Extent, 0, len(filtered))
	current := filtered[0]
	for _, e := range filtered[1:] {
		if e.Start <= current.End() {
			if e.End() > current.End() {
				current.Length = e.End() - current.Start
			}
			continue
		}
		merged = append(merged, current)
		current = e
	}
	merged = append(merged, current)
	return merged
}

// Union returns the normalized union of a and b.
func Union(a, b []Extent) []Extent {
	combined := make([]Extent, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	return Normalize(combined)
}

// Intersect returns the normalized intersection of a and b.
func Intersect(a, b []Extent) []Extent {
	var (
		na, nb = Normalize(a), Normalize(b)
		out    = make([]Extent, 0)
		i, j   = 0, 0
	)
	for i < len(na) && j < len(nb) {
		lo := generic.Max(na[i].Start, nb[j].Start)
		hi := generic.Min(na[i].End(), nb[j].End())
		if lo < hi {
			out = append(out, Extent{Start: lo, Length: hi - lo})
		}
		if na[i].End() < nb[j].End() {
			i++
		} else {
			j++
		}
	}
	return out
}

// Subtract returns the normalized result of removing every range in
// remove from base.
func Subtract(base, remove []Extent) []Extent {
	nb := Normalize(remove)
	out := make([]Extent, 0, len(base))
	for _, e := range Normalize(base) {
		segments := []Extent{e}
		for _, r := range nb {
			var next []Extent
			for _, seg := range segments {
				if !seg.Overlaps(r) || r.Start == seg.End() || r.End() == seg.Start {
					next = append(next, seg)
					continue
				}
				if r.Start > seg.Start {
					next = append(next, Extent{Start: seg.Start, Length: r.Start - seg.Start})
				}
				if r.End() < seg.End() {
					next = append(next, Extent{Start: r.End(), Length: seg.End() - r.End()})
				}
			}
			segments = next
		}
		out = append(out, segments...)
	}
	return Normalize(out)
}
