// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// A memory-only implementation of Provider.

package heapio

var _ Provider = (*MemHeap)(nil) // Ensure MemHeap is a Provider.

// MemHeap is a Provider backed by a single contiguous, grow-only []byte
// buffer. It never fails to Extend by a positive n (it panics on
// out-of-memory instead, as does Go's own append()); n <= 0 is rejected
// with *ErrFailed. This makes it suitable for tests and for
// exercising the allocator's fast paths without I/O.
type MemHeap struct {
	buf []byte
}

// NewMemHeap returns a new, empty MemHeap.
func NewMemHeap() *MemHeap {
	return &MemHeap{}
}

// Low implements Provider.
func (h *MemHeap) Low() int64 { return 0 }

// High implements Provider.
func (h *MemHeap) High() int64 { return int64(len(h.buf)) - 1 }

// Size implements Provider.
func (h *MemHeap) Size() int64 { return int64(len(h.buf)) }

// Extend implements Provider.
func (h *MemHeap) Extend(n int64) (int64, error) {
	if n <= 0 {
		return 0, &ErrFailed{Op: "Extend", Arg: n}
	}

	base := int64(len(h.buf))
	h.buf = append(h.buf, make([]byte, n)...)
	return base, nil
}

// ReadAt implements Provider.
func (h *MemHeap) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > int64(len(h.buf)) {
		return 0, &ErrFailed{Op: "ReadAt", Arg: off}
	}

	return copy(b, h.buf[off:off+int64(len(b))]), nil
}

// WriteAt implements Provider.
func (h *MemHeap) WriteAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > int64(len(h.buf)) {
		return 0, &ErrFailed{Op: "WriteAt", Arg: off}
	}

	return copy(h.buf[off:off+int64(len(b))], b), nil
}

// Close implements Provider. Close is a nop for MemHeap.
func (h *MemHeap) Close() error { return nil }

// Bytes returns the current backing buffer, for callers that want to scan
// the raw region directly. Nothing in package mm calls it; the allocator
// and its integrity checker read the region through ReadAt.
func (h *MemHeap) Bytes() []byte { return h.buf }
