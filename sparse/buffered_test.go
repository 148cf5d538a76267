package sparse_test

import (
	"io"
	"testing"

	"github.com/archivekit/diskutils/sparse"
)

func TestBufferedReadMatchesUnbuffered(t *testing.T) {
	inner := newMemStream([]byte("the quick brown fox"), false)
	b := sparse.NewBuffered(inner, 8, sparse.OwnershipNone)

	first := make([]byte, 3)
	if _, err := io.ReadFull(b, first); err != nil {
		t.Fatal(err)
	}
	if string(first) != "the" {
		t.Fatalf("got %q, want %q", first, "the")
	}

	second := make([]byte, 6)
	if _, err := io.ReadFull(b, second); err != nil {
		t.Fatal(err)
	}
	if string(second) != " quick" {
		t.Fatalf("got %q, want %q", second, " quick")
	}
}

func TestBufferedWriteInvalidatesBuffer(t *testing.T) {
	inner := newMemStream([]byte("0123456789"), false)
	b := sparse.NewBuffered(inner, 4, sparse.OwnershipNone)

	buf := make([]byte, 4)
	if _, err := io.ReadFull(b, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "0123" {
		t.Fatalf("got %q, want %q", buf, "0123")
	}

	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Write([]byte("XX")); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 4)
	if _, err := io.ReadFull(b, out); err != nil {
		t.Fatal(err)
	}
	if string(out) != "XX23" {
		t.Fatalf("got %q, want %q", out, "XX23")
	}
}

func TestBufferedCloseDisposesInnerOnlyWhenOwned(t *testing.T) {
	borrowed := newMemStream([]byte("01234"), false)
	nb := sparse.NewBuffered(borrowed, 0, sparse.OwnershipNone)
	if err := nb.Close(); err != nil {
		t.Fatal(err)
	}
	if borrowed.closed {
		t.Fatal("inner should not be closed when ownership is None")
	}

	inner := newMemStream([]byte("01234"), false)
	b := sparse.NewBuffered(inner, 0, sparse.OwnershipDispose)
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if !inner.closed {
		t.Fatal("inner should be closed when ownership is Dispose")
	}
}
