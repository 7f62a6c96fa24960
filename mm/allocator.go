// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The allocator's top-level state and construction. See mm's package doc
// comment (doc.go) for the heap layout.

package mm

import (
	"github.com/heapa-project/heapa/heapio"
)

// Addr is the address of an allocated block's payload, as returned by
// Allocate and consumed by Free and Reallocate. The zero Addr is never a
// valid allocation.
type Addr int64

// block returns the offset of the header belonging to the block whose
// payload starts at a.
func (a Addr) block() int64 { return int64(a) - wordSize }

func blockAddr(b int64) Addr { return Addr(b + wordSize) }

// Allocator is a heap allocator over a heapio.Provider. Its zero value is
// not usable; construct one with New or Init.
type Allocator struct {
	p         heapio.Provider
	heapStart int64 // offset of the first block, == align(numBuckets*wordSize)
}

// prefixSize is the number of bytes reserved at the start of the
// Provider's region for the bucket-head array.
var prefixSize = align(numBuckets * wordSize)

// New wraps an already-initialized Provider (one on which Init has
// already succeeded, possibly in a previous process) in an Allocator.
func New(p heapio.Provider) *Allocator {
	return &Allocator{p: p, heapStart: prefixSize}
}

// Init prepares a fresh, empty Provider for use: it reserves and
// zero-fills the bucket-head prefix. Init must be called exactly once
// per Provider, before any Allocate/Free/Reallocate call, and the
// Provider must be empty (Size() == 0).
//
// Init returns an error if the Provider refuses to grow by the initial
// prefixSize bytes.
func Init(p heapio.Provider) (*Allocator, error) {
	if p.Size() != 0 {
		return nil, &ErrINVAL{"mm.Init: provider is not empty", p.Size()}
	}

	if _, err := p.Extend(prefixSize); err != nil {
		return nil, err
	}

	return &Allocator{p: p, heapStart: prefixSize}, nil
}

func (al *Allocator) headOffset(i int) int64 { return int64(i) * wordSize }

func (al *Allocator) readHead(i int) (int64, error) {
	v, err := readWord(al.p, al.headOffset(i))
	if err != nil {
		return 0, err
	}

	return int64(v), nil
}

func (al *Allocator) writeHead(i int, b int64) error {
	return writeWord(al.p, al.headOffset(i), uint64(b))
}

// empty reports whether the heap has no blocks at all yet.
func (al *Allocator) empty() bool {
	return al.p.High() < al.heapStart
}

// lastBlock returns the base offset and size of the last (highest
// address) block in the heap, by reading its footer word. It must not be
// called when the heap is empty.
func (al *Allocator) lastBlock() (b, size int64, err error) {
	footerOffset := al.p.High() - wordSize + 1
	v, err := readWord(al.p, footerOffset)
	if err != nil {
		return 0, 0, err
	}

	size, _ = unpackHeader(v)
	if size <= 0 {
		return 0, 0, &ErrILSEQ{Type: ErrSizeTooSmall, Off: footerOffset, Arg: size}
	}

	return footerOffset - size + wordSize, size, nil
}
