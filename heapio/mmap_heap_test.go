// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

package heapio

import "testing"

func TestMmapHeapExtendAndRoundTrip(t *testing.T) {
	h, err := NewMmapHeap(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	base, err := h.Extend(64)
	if err != nil {
		t.Fatal(err)
	}
	if base != 0 {
		t.Fatalf("Extend base = %d, want 0", base)
	}

	want := []byte("mmapbacked")
	if _, err := h.WriteAt(want, 8); err != nil {
		t.Fatal(err)
	}

	got := make([]byte, len(want))
	if _, err := h.ReadAt(got, 8); err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Fatalf("ReadAt = %q, want %q", got, want)
	}
}

func TestMmapHeapExtendBeyondReservationFails(t *testing.T) {
	h, err := NewMmapHeap(4096)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := h.Extend(4096); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Extend(1); err == nil {
		t.Fatal("Extend beyond the reservation should fail")
	}
}

func TestMmapHeapExtendIntoPartialLastPage(t *testing.T) {
	// A reservation that isn't a whole number of pages forces Extend's
	// page-rounded commit target to be clamped back down to len(h.mem).
	h, err := NewMmapHeap(4096 + 10)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := h.Extend(4096 + 10); err != nil {
		t.Fatal(err)
	}

	if _, err := h.WriteAt([]byte("x"), 4096+9); err != nil {
		t.Fatal(err)
	}
}

func TestMmapHeapDefaultReservation(t *testing.T) {
	h, err := NewMmapHeap(0)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := h.Extend(DefaultReservation); err != nil {
		t.Fatal(err)
	}
}
