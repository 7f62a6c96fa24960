// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mm

import (
	"testing"

	"github.com/heapa-project/heapa/heapio"
)

func TestVerifyCleanHeap(t *testing.T) {
	h := heapio.NewMemHeap()
	al, err := Init(h)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []int64{16, 200, 4096} {
		if _, err := al.Allocate(s); err != nil {
			t.Fatal(err)
		}
	}

	if err := al.Verify(); err != nil {
		t.Fatalf("Verify on a clean heap: %v", err)
	}
}

func TestVerifyDetectsHeaderFooterMismatch(t *testing.T) {
	h := heapio.NewMemHeap()
	al, err := Init(h)
	if err != nil {
		t.Fatal(err)
	}

	addr, err := al.Allocate(64)
	if err != nil {
		t.Fatal(err)
	}

	// Corrupt the footer directly, simulating a payload overrun.
	size, _, err := readHeader(h, addr.block())
	if err != nil {
		t.Fatal(err)
	}
	if err := writeWord(h, footerOff(addr.block(), size), 0xdeadbeef); err != nil {
		t.Fatal(err)
	}

	err = al.Verify()
	if err == nil {
		t.Fatal("Verify did not detect a header/footer mismatch")
	}

	ilseq, ok := err.(*ErrILSEQ)
	if !ok {
		t.Fatalf("Verify returned %T, want *ErrILSEQ", err)
	}
	if ilseq.Type != ErrHeaderFooterMismatch {
		t.Fatalf("ErrILSEQ.Type = %d, want ErrHeaderFooterMismatch", ilseq.Type)
	}
}

func TestVerifyDetectsAdjacentFreeBlocks(t *testing.T) {
	h := heapio.NewMemHeap()
	al, err := Init(h)
	if err != nil {
		t.Fatal(err)
	}

	a, err := al.Allocate(64)
	if err != nil {
		t.Fatal(err)
	}
	b, err := al.Allocate(64)
	if err != nil {
		t.Fatal(err)
	}

	// Mark both free without going through Free/coalesce, to simulate a
	// bug that breaks I3 directly.
	sizeA, _, err := readHeader(h, a.block())
	if err != nil {
		t.Fatal(err)
	}
	sizeB, _, err := readHeader(h, b.block())
	if err != nil {
		t.Fatal(err)
	}
	if err := writeHeaderFooter(h, a.block(), sizeA, false); err != nil {
		t.Fatal(err)
	}
	if err := writeHeaderFooter(h, b.block(), sizeB, false); err != nil {
		t.Fatal(err)
	}

	err = al.Verify()
	if err == nil {
		t.Fatal("Verify did not detect adjacent free blocks")
	}

	ilseq, ok := err.(*ErrILSEQ)
	if !ok {
		t.Fatalf("Verify returned %T, want *ErrILSEQ", err)
	}
	if ilseq.Type != ErrAdjacentFreeBlocks {
		t.Fatalf("ErrILSEQ.Type = %d, want ErrAdjacentFreeBlocks", ilseq.Type)
	}
}
