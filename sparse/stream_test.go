package sparse_test

import (
	"testing"

	"github.com/archivekit/diskutils/sparse"
)

func TestOwnershipStringRoundTrip(t *testing.T) {
	for _, want := range []sparse.Ownership{sparse.OwnershipNone, sparse.OwnershipDispose} {
		got, err := sparse.ParseOwnership(want.String())
		if err != nil {
			t.Fatalf("ParseOwnership(%q): %v", want.String(), err)
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %v, want %v", got, want)
		}
	}
}

func TestParseOwnershipRejectsUnknown(t *testing.T) {
	if _, err := sparse.ParseOwnership("bogus"); err == nil {
		t.Fatal("expected error parsing unknown ownership string")
	}
}
