// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

// A Provider backed directly by anonymous virtual memory, reserved once
// and committed incrementally as the managed region grows. Grounded on
// the mmap-a-pool technique used by the buddy allocator example
// (alewtschuk-balloc), adapted from "split one fixed pool into buddies"
// to "reserve a large range, commit a monotonically growing prefix".

package heapio

import (
	"github.com/cznic/mathutil"
	"golang.org/x/sys/unix"
)

var _ Provider = (*MmapHeap)(nil) // Ensure MmapHeap is a Provider.

// DefaultReservation is the virtual address range MmapHeap reserves by
// default: 1 GiB. Only committed pages actually consume RAM.
const DefaultReservation = 1 << 30

// MmapHeap is a Provider backed by an anonymous mmap reservation. Extend
// grows the committed prefix of the reservation by mprotect-ing
// additional pages to PROT_READ|PROT_WRITE; it fails once the
// reservation is exhausted.
type MmapHeap struct {
	mem       []byte // the full PROT_NONE reservation
	committed int64  // bytes currently PROT_READ|PROT_WRITE, from offset 0
	pageSize  int64
}

// NewMmapHeap reserves reservation bytes of anonymous virtual memory. If
// reservation is <= 0, DefaultReservation is used.
func NewMmapHeap(reservation int64) (*MmapHeap, error) {
	if reservation <= 0 {
		reservation = DefaultReservation
	}

	mem, err := unix.Mmap(-1, 0, int(reservation), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &ErrFailed{Op: "mmap reserve", Arg: reservation}
	}

	return &MmapHeap{mem: mem, pageSize: int64(unix.Getpagesize())}, nil
}

// Low implements Provider.
func (h *MmapHeap) Low() int64 { return 0 }

// High implements Provider.
func (h *MmapHeap) High() int64 { return h.committed - 1 }

// Size implements Provider.
func (h *MmapHeap) Size() int64 { return h.committed }

// Extend implements Provider.
func (h *MmapHeap) Extend(n int64) (int64, error) {
	if n <= 0 {
		return 0, &ErrFailed{Op: "Extend", Arg: n}
	}

	base := h.committed
	want := base + n
	if want > int64(len(h.mem)) {
		return 0, &ErrFailed{Op: "Extend", Arg: n}
	}

	// Rounding want up to a page boundary can overshoot the reservation
	// when want falls in its last, possibly partial, page.
	commitTo := mathutil.MinInt64(roundUpPage(want, h.pageSize), int64(len(h.mem)))

	if err := unix.Mprotect(h.mem[:commitTo], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return 0, &ErrFailed{Op: "mprotect", Arg: n}
	}

	h.committed = want
	return base, nil
}

// ReadAt implements Provider.
func (h *MmapHeap) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > h.committed {
		return 0, &ErrFailed{Op: "ReadAt", Arg: off}
	}

	return copy(b, h.mem[off:off+int64(len(b))]), nil
}

// WriteAt implements Provider.
func (h *MmapHeap) WriteAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > h.committed {
		return 0, &ErrFailed{Op: "WriteAt", Arg: off}
	}

	return copy(h.mem[off:off+int64(len(b))], b), nil
}

// Close implements Provider. It unmaps the entire reservation.
func (h *MmapHeap) Close() error {
	if h.mem == nil {
		return nil
	}

	err := unix.Munmap(h.mem)
	h.mem = nil
	return err
}

func roundUpPage(n, pageSize int64) int64 {
	if pageSize <= 0 {
		return n
	}

	return (n + pageSize - 1) &^ (pageSize - 1)
}
