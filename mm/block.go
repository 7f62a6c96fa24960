// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Block layout: pure address arithmetic over a heapio.Provider. A block
// is identified by the byte offset of its header word. Nothing in this
// file touches the free list or the placement policy - it only knows
// how to read and write the header, footer and in-band link words of
// one block at a time.

package mm

import (
	"encoding/binary"

	"github.com/heapa-project/heapa/heapio"
)

const (
	wordSize   = 8  // W: the size of a header/footer/link word, in bytes
	numBuckets = 25 // K: the number of segregated-fit size-class buckets

	// minBlockSize is 4W: header, two link words, footer.
	minBlockSize = 4 * wordSize

	allocBit uint64 = 1
)

// align rounds n up to the next multiple of wordSize.
func align(n int64) int64 {
	return (n + wordSize - 1) &^ (wordSize - 1)
}

func readWord(p heapio.Provider, off int64) (uint64, error) {
	var buf [wordSize]byte
	if _, err := p.ReadAt(buf[:], off); err != nil {
		return 0, &ErrILSEQ{Type: ErrOther, Off: off, More: err}
	}

	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeWord(p heapio.Provider, off int64, v uint64) error {
	var buf [wordSize]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	if _, err := p.WriteAt(buf[:], off); err != nil {
		return &ErrILSEQ{Type: ErrOther, Off: off, More: err}
	}

	return nil
}

func packHeader(size int64, allocated bool) uint64 {
	v := uint64(size)
	if allocated {
		v |= allocBit
	}

	return v
}

func unpackHeader(v uint64) (size int64, allocated bool) {
	return int64(v &^ allocBit), v&allocBit != 0
}

// footerOff returns the offset of b's footer word, given its size.
func footerOff(b, size int64) int64 {
	return b + size - wordSize
}

// readHeader returns the size and allocated-bit of the block whose
// header is at offset b.
func readHeader(p heapio.Provider, b int64) (size int64, allocated bool, err error) {
	v, err := readWord(p, b)
	if err != nil {
		return 0, false, err
	}

	size, allocated = unpackHeader(v)
	return
}

// writeHeaderFooter writes both the header and the footer of a block
// based at b with the given size and allocated bit, preserving I1
// (header == footer).
func writeHeaderFooter(p heapio.Provider, b, size int64, allocated bool) error {
	v := packHeader(size, allocated)
	if err := writeWord(p, b, v); err != nil {
		return err
	}

	return writeWord(p, footerOff(b, size), v)
}

// nextBlock returns the offset of the block physically following b,
// given b's size. The caller is responsible for checking the result
// against the heap's high-water mark before dereferencing it.
func nextBlock(b, size int64) int64 {
	return b + size
}

// prevBlock returns the offset of the block physically preceding b, by
// reading the word immediately before b (which is the preceding block's
// footer) and using its size to step back. heapStart is the offset of
// the first block in the heap; prevBlock must not be called when
// b == heapStart.
func prevBlock(p heapio.Provider, b, heapStart int64) (int64, error) {
	v, err := readWord(p, b-wordSize)
	if err != nil {
		return 0, err
	}

	size, _ := unpackHeader(v)
	if size <= 0 {
		return 0, &ErrILSEQ{Type: ErrSizeTooSmall, Off: b - wordSize, Arg: size}
	}

	prev := b - size
	if prev < heapStart {
		return 0, &ErrILSEQ{Type: ErrWalkPastHeap, Off: b - wordSize, Arg: prev}
	}

	return prev, nil
}

// readLinks returns the prev/next in-band free-list pointers stored in
// the payload of the free block based at b.
func readLinks(p heapio.Provider, b int64) (prev, next int64, err error) {
	pv, err := readWord(p, b+wordSize)
	if err != nil {
		return 0, 0, err
	}

	nv, err := readWord(p, b+2*wordSize)
	if err != nil {
		return 0, 0, err
	}

	return int64(pv), int64(nv), nil
}

// writeLinks sets the prev/next in-band free-list pointers stored in the
// payload of the free block based at b.
func writeLinks(p heapio.Provider, b, prev, next int64) error {
	if err := writeWord(p, b+wordSize, uint64(prev)); err != nil {
		return err
	}

	return writeWord(p, b+2*wordSize, uint64(next))
}
