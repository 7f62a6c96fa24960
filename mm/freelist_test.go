// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mm

import (
	"testing"

	"github.com/heapa-project/heapa/heapio"
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()

	h := heapio.NewMemHeap()
	al, err := Init(h)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	return al
}

// growRaw extends the heap and writes a free block there without going
// through Allocate, for tests that want direct control over freelist
// contents.
func growRaw(t *testing.T, al *Allocator, size int64) int64 {
	t.Helper()

	base, err := al.p.Extend(size)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if err := writeHeaderFooter(al.p, base, size, false); err != nil {
		t.Fatalf("writeHeaderFooter: %v", err)
	}

	return base
}

func TestInsertSingleBucketOrder(t *testing.T) {
	al := newTestAllocator(t)

	b1 := growRaw(t, al, 64)
	b2 := growRaw(t, al, 120)
	b3 := growRaw(t, al, 96)

	if err := al.insert(b1, 64); err != nil {
		t.Fatal(err)
	}
	if err := al.insert(b2, 120); err != nil {
		t.Fatal(err)
	}
	if err := al.insert(b3, 96); err != nil {
		t.Fatal(err)
	}

	i := bucketIndex(64)
	head, err := al.readHead(i)
	if err != nil {
		t.Fatal(err)
	}

	var order []int64
	for cur := head; cur != 0; {
		size, _, err := readHeader(al.p, cur)
		if err != nil {
			t.Fatal(err)
		}
		order = append(order, size)

		_, next, err := readLinks(al.p, cur)
		if err != nil {
			t.Fatal(err)
		}
		cur = next
	}

	want := []int64{64, 96, 120}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v (non-decreasing size, I5)", order, want)
		}
	}
}

func TestUnlinkHeadMiddleTail(t *testing.T) {
	al := newTestAllocator(t)

	b1 := growRaw(t, al, 64)
	b2 := growRaw(t, al, 64)
	b3 := growRaw(t, al, 64)

	for _, b := range []int64{b1, b2, b3} {
		if err := al.insert(b, 64); err != nil {
			t.Fatal(err)
		}
	}

	if err := al.unlink(b2, 64); err != nil {
		t.Fatal(err)
	}

	i := bucketIndex(64)
	head, err := al.readHead(i)
	if err != nil {
		t.Fatal(err)
	}
	// Equal sizes are spliced in front of the existing entries, so the
	// list was b3, b2, b1 before b2 was unlinked.
	if head != b3 {
		t.Fatalf("head = %d, want %d", head, b3)
	}

	_, next, err := readLinks(al.p, b3)
	if err != nil {
		t.Fatal(err)
	}
	if next != b1 {
		t.Fatalf("b3.next = %d, want %d", next, b1)
	}

	if err := al.unlink(b1, 64); err != nil {
		t.Fatal(err)
	}
	if err := al.unlink(b3, 64); err != nil {
		t.Fatal(err)
	}

	head, err = al.readHead(i)
	if err != nil {
		t.Fatal(err)
	}
	if head != 0 {
		t.Fatalf("head = %d, want 0 (bucket empty)", head)
	}
}
