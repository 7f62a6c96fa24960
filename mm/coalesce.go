// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The coalescer: merges free physical neighbors so that freeing a block
// never leaves two adjacent free blocks behind.

package mm

// coalesce merges b with any free physical neighbor(s). b must already
// have its header/footer written with the allocated bit clear, and must
// NOT yet be in any free list. It returns the (possibly moved) base
// offset and size of the merged block; neither of its physical neighbors
// is free afterward (I3). The caller is responsible for inserting the
// result into the appropriate bucket.
func (al *Allocator) coalesce(b, size int64) (newB, newSize int64, err error) {
	newB, newSize = b, size

	if next := nextBlock(newB, newSize); next <= al.p.High() {
		nSize, nAllocated, err := readHeader(al.p, next)
		if err != nil {
			return 0, 0, err
		}

		if !nAllocated {
			if err := al.unlink(next, nSize); err != nil {
				return 0, 0, err
			}

			newSize += nSize
			if err := writeHeaderFooter(al.p, newB, newSize, false); err != nil {
				return 0, 0, err
			}
		}
	}

	if newB > al.heapStart {
		prev, err := prevBlock(al.p, newB, al.heapStart)
		if err != nil {
			return 0, 0, err
		}

		pSize, pAllocated, err := readHeader(al.p, prev)
		if err != nil {
			return 0, 0, err
		}

		if !pAllocated {
			if err := al.unlink(prev, pSize); err != nil {
				return 0, 0, err
			}

			newSize = pSize + newSize
			newB = prev
			if err := writeHeaderFooter(al.p, newB, newSize, false); err != nil {
				return 0, 0, err
			}
		}
	}

	return newB, newSize, nil
}
