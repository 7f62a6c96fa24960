// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The placement engine: Allocate.

package mm

// lastBlockGrowThreshold is the tunable "small blocks clustered" knob:
// above this size, a free last block is grown by exactly what's needed;
// at or below it, the heap is grown by a fresh region instead, leaving
// the small free tail for a later small request.
const lastBlockGrowThreshold = 50 * wordSize

// Allocate reserves s bytes and returns an 8-byte-aligned Addr. It
// returns the zero Addr and a nil error if s <= 0, and an error if the
// Provider cannot grow to satisfy the request.
func (al *Allocator) Allocate(s int64) (Addr, error) {
	if s <= 0 {
		return 0, nil
	}

	need := align(s + 2*wordSize)
	if need < minBlockSize {
		need = minBlockSize
	}

	b, err := al.findFit(need)
	if err != nil {
		return 0, err
	}

	if b != 0 {
		if err := al.placeInFreeBlock(b, need); err != nil {
			return 0, err
		}

		return blockAddr(b), nil
	}

	b, err = al.growForAllocation(need)
	if err != nil {
		return 0, err
	}

	if err := writeHeaderFooter(al.p, b, need, true); err != nil {
		return 0, err
	}

	return blockAddr(b), nil
}

// findFit performs a first-fit scan: starting at bucket
// bucketIndex(need), scan head-to-tail for the first block with size >=
// need; if none is found in that bucket, advance to the next non-empty
// bucket and repeat. Returns 0 if no block anywhere satisfies need.
func (al *Allocator) findFit(need int64) (int64, error) {
	for i := bucketIndex(need); i < numBuckets; i++ {
		head, err := al.readHead(i)
		if err != nil {
			return 0, err
		}

		cur := head
		for cur != 0 {
			size, allocated, err := readHeader(al.p, cur)
			if err != nil {
				return 0, err
			}

			if allocated {
				return 0, &ErrILSEQ{Type: ErrAllocatedBlockInBucketList, Off: cur}
			}

			if size >= need {
				return cur, nil
			}

			_, next, err := readLinks(al.p, cur)
			if err != nil {
				return 0, err
			}

			cur = next
		}
	}

	return 0, nil
}

// placeInFreeBlock unlinks the free block at b (which must be >= need
// bytes) and installs an allocated block of size need there, splitting
// off and re-inserting a free tail if the residue is at least
// minBlockSize.
func (al *Allocator) placeInFreeBlock(b, need int64) error {
	old, _, err := readHeader(al.p, b)
	if err != nil {
		return err
	}

	if err := al.unlink(b, old); err != nil {
		return err
	}

	allocSize := old
	if old-need >= minBlockSize {
		allocSize = need
		tail := b + need
		tailSize := old - need
		if err := writeHeaderFooter(al.p, tail, tailSize, false); err != nil {
			return err
		}

		if err := al.insert(tail, tailSize); err != nil {
			return err
		}
	}

	return writeHeaderFooter(al.p, b, allocSize, true)
}

// growForAllocation grows the heap when no existing free block fits,
// applying the "small blocks clustered" policy around whatever the
// current last block looks like. It returns the base offset of a
// fresh, not-yet-written block of exactly need bytes, ready for the
// caller to mark allocated.
func (al *Allocator) growForAllocation(need int64) (int64, error) {
	if !al.empty() {
		lastB, lastSize, err := al.lastBlock()
		if err != nil {
			return 0, err
		}

		_, lastAllocated, err := readHeader(al.p, lastB)
		if err != nil {
			return 0, err
		}

		if !lastAllocated {
			if lastSize > lastBlockGrowThreshold {
				// findFit already failed, so lastSize < need: grow by
				// exactly the shortfall and consume the whole block.
				if _, err := al.p.Extend(need - lastSize); err != nil {
					return 0, err
				}

				if err := al.unlink(lastB, lastSize); err != nil {
					return 0, err
				}

				return lastB, nil
			}

			// Small free tail: leave it alone, grow fresh instead.
			base, err := al.p.Extend(need)
			if err != nil {
				return 0, err
			}

			return base, nil
		}
	}

	// Heap empty, or last block allocated.
	if need > lastBlockGrowThreshold {
		base, err := al.p.Extend(need)
		if err != nil {
			return 0, err
		}

		return base, nil
	}

	base, err := al.p.Extend(2 * need)
	if err != nil {
		return 0, err
	}

	freeB := base + need
	if err := writeHeaderFooter(al.p, freeB, need, false); err != nil {
		return 0, err
	}

	if err := al.insert(freeB, need); err != nil {
		return 0, err
	}

	return base, nil
}
