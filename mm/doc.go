// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package mm implements a boundary-tagged, segregated-fit heap allocator
over a heapio.Provider - a contiguous, monotonically growable byte
region. It exposes the classical triad Allocate/Free/Reallocate for a
single-threaded address space with no concurrent mutators.

Heap layout

The Provider's region is laid out as:

	offset 0                 : numBuckets bucket-head words (8 bytes each)
	offset align(numBuckets*8): the first block's header

Every block is a contiguous run of bytes:

	offset 0      : header word = size | allocated-bit (bit 0)
	offset W      : payload, or the free list's prev pointer if free
	offset 2W     : payload, or the free list's next pointer if free
	...
	offset size-W : footer word, a duplicate of the header

size is always a multiple of W (so bit 0 of the header is free for the
allocated flag) and at least 4W - enough room for header, two link
words and footer.

Free blocks are linked, in each of numBuckets size-class buckets, into a
doubly-linked list stored in-band in the free block's own payload bytes;
the bucket heads themselves live in the Provider's prefix region, not in
any Go-level struct, so two Allocator values sharing one Provider would
observe the same free lists (Allocator itself holds no cached state).

Handles returned by Allocate are Addr values - the byte offset, within
the Provider's region, of the first payload byte. They remain valid
until the matching Free, and are invalidated by it.
*/
package mm
