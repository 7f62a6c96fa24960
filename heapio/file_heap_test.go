// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapio

import (
	"os"
	"testing"
)

func TestFileHeapExtendAndRoundTrip(t *testing.T) {
	f, err := os.CreateTemp("", "heapio-file-heap-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	h, err := NewFileHeap(f)
	if err != nil {
		t.Fatal(err)
	}

	base, err := h.Extend(64)
	if err != nil {
		t.Fatal(err)
	}
	if base != 0 {
		t.Fatalf("Extend base = %d, want 0", base)
	}

	want := []byte("filebacked")
	if _, err := h.WriteAt(want, 10); err != nil {
		t.Fatal(err)
	}

	got := make([]byte, len(want))
	if _, err := h.ReadAt(got, 10); err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Fatalf("ReadAt = %q, want %q", got, want)
	}

	if _, err := h.Extend(32); err != nil {
		t.Fatal(err)
	}
	if h.Size() != 96 {
		t.Fatalf("Size() = %d, want 96", h.Size())
	}

	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFileHeapDiscardsExistingContent(t *testing.T) {
	f, err := os.CreateTemp("", "heapio-file-heap-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if _, err := f.Write([]byte("stale")); err != nil {
		t.Fatal(err)
	}

	h, err := NewFileHeap(f)
	if err != nil {
		t.Fatal(err)
	}

	if h.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 after NewFileHeap truncates", h.Size())
	}
}
