// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// A file-backed implementation of Provider, with no structural integrity
// support - like lldb's SimpleFileFiler, a crash or a partial write can
// leave the file corrupted. Use MemHeap if that's not acceptable.

package heapio

import "os"

var _ Provider = (*FileHeap)(nil) // Ensure FileHeap is a Provider.

// FileHeap is a Provider backed by an *os.File. The file is truncated to
// zero length when opened fresh and grows monotonically as Extend is
// called; it is never shrunk.
type FileHeap struct {
	f    *os.File
	size int64
}

// NewFileHeap returns a new FileHeap using f, which must be open for
// reading and writing. The file's existing content, if any, is discarded.
func NewFileHeap(f *os.File) (*FileHeap, error) {
	if err := f.Truncate(0); err != nil {
		return nil, err
	}

	return &FileHeap{f: f}, nil
}

// Low implements Provider.
func (h *FileHeap) Low() int64 { return 0 }

// High implements Provider.
func (h *FileHeap) High() int64 { return h.size - 1 }

// Size implements Provider.
func (h *FileHeap) Size() int64 { return h.size }

// Extend implements Provider.
func (h *FileHeap) Extend(n int64) (int64, error) {
	if n <= 0 {
		return 0, &ErrFailed{Op: "Extend", Arg: n}
	}

	base := h.size
	if err := h.f.Truncate(base + n); err != nil {
		return 0, &ErrFailed{Op: "Extend", Arg: n}
	}

	h.size = base + n
	return base, nil
}

// ReadAt implements Provider.
func (h *FileHeap) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > h.size {
		return 0, &ErrFailed{Op: "ReadAt", Arg: off}
	}

	return h.f.ReadAt(b, off)
}

// WriteAt implements Provider.
func (h *FileHeap) WriteAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > h.size {
		return 0, &ErrFailed{Op: "WriteAt", Arg: off}
	}

	return h.f.WriteAt(b, off)
}

// Close implements Provider.
func (h *FileHeap) Close() error { return h.f.Close() }
