// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mm

import "log"

// Free deallocates the block at addr. addr must have been returned by a
// still-valid Allocate or Reallocate call; passing any other value is
// undefined behavior, except that freeing a block already marked free
// is detected and reported rather than corrupting the heap.
func (al *Allocator) Free(addr Addr) error {
	b := addr.block()
	if b < al.heapStart || b > al.p.High() {
		return &ErrINVAL{"mm.Free: address out of range", int64(addr)}
	}

	size, allocated, err := readHeader(al.p, b)
	if err != nil {
		return err
	}

	if !allocated {
		log.Printf("mm: double free at %#x ignored", int64(addr))
		return nil
	}

	if err := writeHeaderFooter(al.p, b, size, false); err != nil {
		return err
	}

	mergedB, mergedSize, err := al.coalesce(b, size)
	if err != nil {
		return err
	}

	return al.insert(mergedB, mergedSize)
}
