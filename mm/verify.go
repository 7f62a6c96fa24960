// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The optional integrity checker (P1-P7). Verify is diagnostic-only: it
// never mutates the heap and has no side effects beyond the returned
// error.

package mm

import (
	"log"
	"os"
)

// Verify walks every block from heapStart to the end of the heap,
// checking P1 (header == footer), P4 (no two adjacent free blocks) and
// P6 (sizes and addresses are multiples of 8) along the way, then walks
// every bucket list checking P2 (no allocated block appears in a free
// list), P3 (every free block is in the bucket its size maps to), P5
// (every free block found by the block walk is also found by some
// bucket walk) and P7 (sizes are non-decreasing within a bucket).
//
// It returns the first violation found as an *ErrILSEQ, or nil if the
// heap is consistent.
func (al *Allocator) Verify() error {
	seenFree := map[int64]bool{}
	prevWasFree := false

	for b := al.heapStart; b <= al.p.High(); {
		size, allocated, err := readHeader(al.p, b)
		if err != nil {
			return err
		}

		if size%8 != 0 || b%8 != 0 {
			return &ErrILSEQ{Type: ErrSizeNotMultipleOf8, Off: b, Arg: size}
		}

		if size < minBlockSize {
			return &ErrILSEQ{Type: ErrSizeTooSmall, Off: b, Arg: size}
		}

		footer, err := readWord(al.p, footerOff(b, size))
		if err != nil {
			return err
		}

		header, err := readWord(al.p, b)
		if err != nil {
			return err
		}

		if header != footer {
			return &ErrILSEQ{Type: ErrHeaderFooterMismatch, Off: b, Arg: int64(header), Arg2: int64(footer)}
		}

		if !allocated {
			if prevWasFree {
				return &ErrILSEQ{Type: ErrAdjacentFreeBlocks, Off: b}
			}

			seenFree[b] = true

			i := bucketIndex(size)
			lo := minSizeOfBucket(i)
			if i < numBuckets-1 && size >= minSizeOfBucket(i+1) {
				return &ErrILSEQ{Type: ErrFreeBlockWrongBucket, Off: b, Arg: size, Arg2: int64(i)}
			}

			if size < lo {
				return &ErrILSEQ{Type: ErrFreeBlockSizeBelowBucketMin, Off: b, Arg: size, Arg2: lo}
			}
		}

		prevWasFree = !allocated
		b = nextBlock(b, size)
	}

	for i := 0; i < numBuckets; i++ {
		head, err := al.readHead(i)
		if err != nil {
			return err
		}

		lastSize := int64(-1)
		visited := map[int64]bool{}
		for cur := head; cur != 0; {
			if visited[cur] {
				return &ErrILSEQ{Type: ErrBucketListCycle, Off: cur, Arg: int64(i)}
			}
			visited[cur] = true

			size, allocated, err := readHeader(al.p, cur)
			if err != nil {
				return err
			}

			if allocated {
				return &ErrILSEQ{Type: ErrAllocatedBlockInBucketList, Off: cur, Arg: int64(i)}
			}

			if bucketIndex(size) != i {
				return &ErrILSEQ{Type: ErrFreeBlockWrongBucket, Off: cur, Arg: size, Arg2: int64(i)}
			}

			if lastSize >= 0 && size < lastSize {
				return &ErrILSEQ{Type: ErrBucketListOutOfOrder, Off: cur, Arg: size, Arg2: lastSize}
			}

			lastSize = size
			delete(seenFree, cur)

			_, next, err := readLinks(al.p, cur)
			if err != nil {
				return err
			}

			cur = next
		}
	}

	for off := range seenFree {
		return &ErrILSEQ{Type: ErrFreeBlockNotInBucketList, Off: off}
	}

	return nil
}

// minSizeOfBucket returns 2^(i+5), the minimum size of a block in
// bucket i (I4).
func minSizeOfBucket(i int) int64 {
	return int64(1) << uint(i+5)
}

// VerifyOrDie runs Verify and, on failure, logs the violation and
// terminates the process: an internal invariant violation should be
// unreachable in a correct program, and is not worth trying to recover
// from. It is never called automatically by Allocate/Free/Reallocate.
func (al *Allocator) VerifyOrDie() {
	if err := al.Verify(); err != nil {
		log.Printf("mm: fatal heap corruption: %v", err)
		os.Exit(2)
	}
}
