// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The reallocation engine. Five grow paths are tried in order -
// sandwich, forward-only, backward-only, tail growth, fallback - and
// the shrink path splits off a free tail when the residue is large
// enough.

package mm

// payloadLen returns the number of payload bytes a block of the given
// size makes available (size minus header and footer).
func payloadLen(size int64) int64 {
	return size - 2*wordSize
}

// neighbor describes one physical neighbor of a block, as seen by the
// reallocation engine.
type neighbor struct {
	present bool
	free    bool
	base    int64
	size    int64
}

func (al *Allocator) nextNeighbor(b, size int64) (neighbor, error) {
	n := nextBlock(b, size)
	if n > al.p.High() {
		return neighbor{}, nil
	}

	nSize, nAllocated, err := readHeader(al.p, n)
	if err != nil {
		return neighbor{}, err
	}

	return neighbor{present: true, free: !nAllocated, base: n, size: nSize}, nil
}

func (al *Allocator) prevNeighbor(b int64) (neighbor, error) {
	if b <= al.heapStart {
		return neighbor{}, nil
	}

	p, err := prevBlock(al.p, b, al.heapStart)
	if err != nil {
		return neighbor{}, err
	}

	pSize, pAllocated, err := readHeader(al.p, p)
	if err != nil {
		return neighbor{}, err
	}

	return neighbor{present: true, free: !pAllocated, base: p, size: pSize}, nil
}

// moveTail copies the valid payload of a block of size `oldSize`
// currently at `from` to the payload area of a block now based at `to`,
// via a staging buffer so that overlapping source/destination ranges
// (the sandwich and backward-neighbor paths relocate within a few words
// of the original block) are handled correctly - the whole payload is
// read through the Provider's ReadAt before any of it is written back
// with WriteAt, which gives C's memmove semantics regardless of relative
// offsets.
func (al *Allocator) moveTail(from, to, oldSize int64) error {
	if from == to {
		return nil
	}

	n := payloadLen(oldSize)
	buf := make([]byte, n)
	if _, err := al.p.ReadAt(buf, from+wordSize); err != nil {
		return &ErrILSEQ{Type: ErrOther, Off: from, More: err}
	}

	if _, err := al.p.WriteAt(buf, to+wordSize); err != nil {
		return &ErrILSEQ{Type: ErrOther, Off: to, More: err}
	}

	return nil
}

// Reallocate resizes the block at addr to hold s bytes, preserving its
// content up to min(old, new) usable bytes, and returns the (possibly
// different) address of the resized block. addr == 0 is treated as a
// plain Allocate(s), matching the realloc(NULL, s) convention.
func (al *Allocator) Reallocate(addr Addr, s int64) (Addr, error) {
	if s <= 0 {
		return 0, nil
	}

	if addr == 0 {
		return al.Allocate(s)
	}

	b := addr.block()
	if b < al.heapStart || b > al.p.High() {
		return 0, &ErrINVAL{"mm.Reallocate: address out of range", int64(addr)}
	}

	cur, allocated, err := readHeader(al.p, b)
	if err != nil {
		return 0, err
	}

	if !allocated {
		return 0, &ErrINVAL{"mm.Reallocate: address is not allocated", int64(addr)}
	}

	need := align(s + 2*wordSize)
	if need < minBlockSize {
		need = minBlockSize
	}

	if need <= cur {
		return al.reallocShrink(b, cur, need)
	}

	return al.reallocGrow(b, cur, need, s)
}

func (al *Allocator) reallocShrink(b, cur, need int64) (Addr, error) {
	// Spec.md §9 Open Question 1: the shrink residue check is strict
	// (">"), unlike allocate's split check (">="); preserved as written.
	if cur-need <= minBlockSize {
		return blockAddr(b), nil
	}

	if err := writeHeaderFooter(al.p, b, need, true); err != nil {
		return 0, err
	}

	tailB := b + need
	tailSize := cur - need
	if err := writeHeaderFooter(al.p, tailB, tailSize, false); err != nil {
		return 0, err
	}

	mergedB, mergedSize, err := al.coalesce(tailB, tailSize)
	if err != nil {
		return 0, err
	}

	if err := al.insert(mergedB, mergedSize); err != nil {
		return 0, err
	}

	return blockAddr(b), nil
}

func (al *Allocator) reallocGrow(b, cur, need, s int64) (Addr, error) {
	prev, err := al.prevNeighbor(b)
	if err != nil {
		return 0, err
	}

	next, err := al.nextNeighbor(b, cur)
	if err != nil {
		return 0, err
	}

	// 1. Sandwich.
	if prev.present && prev.free && next.present && next.free && prev.size+cur+next.size >= need {
		return al.reallocSandwich(b, cur, need, prev, next)
	}

	// 2. Forward-only neighbor.
	if next.present && next.free && cur+next.size >= need {
		return al.reallocForward(b, cur, need, next)
	}

	// 3. Backward-only neighbor.
	if prev.present && prev.free && prev.size+cur >= need {
		return al.reallocBackward(b, cur, need, prev)
	}

	// 4. Grow the tail.
	if !next.present {
		return al.reallocTail(b, cur, need, prev)
	}

	// 5. Fallback: allocate fresh, copy, free.
	return al.reallocFallback(b, cur, s)
}

func (al *Allocator) reallocSandwich(b, cur, need int64, prev, next neighbor) (Addr, error) {
	if err := al.unlink(prev.base, prev.size); err != nil {
		return 0, err
	}

	if err := al.unlink(next.base, next.size); err != nil {
		return 0, err
	}

	sum := prev.size + cur + next.size
	slack := sum - need

	if slack < minBlockSize {
		if err := al.moveTail(b, prev.base, cur); err != nil {
			return 0, err
		}

		if err := writeHeaderFooter(al.p, prev.base, sum, true); err != nil {
			return 0, err
		}

		return blockAddr(prev.base), nil
	}

	base := next.base + next.size - need
	if err := al.moveTail(b, base, cur); err != nil {
		return 0, err
	}

	if err := writeHeaderFooter(al.p, base, need, true); err != nil {
		return 0, err
	}

	if err := writeHeaderFooter(al.p, prev.base, slack, false); err != nil {
		return 0, err
	}

	if err := al.insert(prev.base, slack); err != nil {
		return 0, err
	}

	return blockAddr(base), nil
}

func (al *Allocator) reallocForward(b, cur, need int64, next neighbor) (Addr, error) {
	if err := al.unlink(next.base, next.size); err != nil {
		return 0, err
	}

	sum := cur + next.size
	residue := sum - need
	if residue < minBlockSize {
		if err := writeHeaderFooter(al.p, b, sum, true); err != nil {
			return 0, err
		}

		return blockAddr(b), nil
	}

	if err := writeHeaderFooter(al.p, b, need, true); err != nil {
		return 0, err
	}

	// The block physically after next was allocated before this call (I3:
	// next was free, so its other neighbor can't have been too), so the
	// split-off residue has no free neighbor to merge with.
	tailB := b + need
	if err := writeHeaderFooter(al.p, tailB, residue, false); err != nil {
		return 0, err
	}

	if err := al.insert(tailB, residue); err != nil {
		return 0, err
	}

	return blockAddr(b), nil
}

func (al *Allocator) reallocBackward(b, cur, need int64, prev neighbor) (Addr, error) {
	if err := al.unlink(prev.base, prev.size); err != nil {
		return 0, err
	}

	sum := prev.size + cur
	residue := sum - need
	if residue < minBlockSize {
		if err := al.moveTail(b, prev.base, cur); err != nil {
			return 0, err
		}

		if err := writeHeaderFooter(al.p, prev.base, sum, true); err != nil {
			return 0, err
		}

		return blockAddr(prev.base), nil
	}

	base := b + cur - need
	if err := al.moveTail(b, base, cur); err != nil {
		return 0, err
	}

	if err := writeHeaderFooter(al.p, base, need, true); err != nil {
		return 0, err
	}

	if err := writeHeaderFooter(al.p, prev.base, residue, false); err != nil {
		return 0, err
	}

	if err := al.insert(prev.base, residue); err != nil {
		return 0, err
	}

	return blockAddr(base), nil
}

func (al *Allocator) reallocTail(b, cur, need int64, prev neighbor) (Addr, error) {
	base := b
	combined := cur

	if prev.present && prev.free {
		if err := al.unlink(prev.base, prev.size); err != nil {
			return 0, err
		}

		if err := al.moveTail(b, prev.base, cur); err != nil {
			return 0, err
		}

		base = prev.base
		combined = prev.size + cur
	}

	extra := need - combined
	if extra > 0 {
		if _, err := al.p.Extend(extra); err != nil {
			return 0, err
		}
	}

	if err := writeHeaderFooter(al.p, base, need, true); err != nil {
		return 0, err
	}

	return blockAddr(base), nil
}

func (al *Allocator) reallocFallback(b, cur, s int64) (Addr, error) {
	newAddr, err := al.Allocate(s)
	if err != nil {
		return 0, err
	}

	n := payloadLen(cur)
	buf := make([]byte, n)
	if _, err := al.p.ReadAt(buf, b+wordSize); err != nil {
		return 0, &ErrILSEQ{Type: ErrOther, Off: b, More: err}
	}

	if _, err := al.p.WriteAt(buf, newAddr.block()+wordSize); err != nil {
		return 0, &ErrILSEQ{Type: ErrOther, Off: int64(newAddr), More: err}
	}

	if err := al.Free(blockAddr(b)); err != nil {
		return 0, err
	}

	return newAddr, nil
}
