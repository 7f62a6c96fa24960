// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Per-bucket doubly linked free lists, stored in-band in the free
// blocks themselves: no separate free-list node allocation is needed.

package mm

import "github.com/heapa-project/heapa/heapio"

// insert adds the free block b (of the given size, already marked free
// in its header/footer) to the appropriate bucket, maintaining I5
// (non-decreasing size order within a bucket).
func (al *Allocator) insert(b, size int64) error {
	i := bucketIndex(size)
	head, err := al.readHead(i)
	if err != nil {
		return err
	}

	if head == 0 {
		if err := writeLinks(al.p, b, 0, 0); err != nil {
			return err
		}

		return al.writeHead(i, b)
	}

	// Walk until the first successor with size >= size(b), or the end
	// of the list, splicing b in before it.
	prev := int64(0)
	cur := head
	for cur != 0 {
		curSize, _, err := readHeader(al.p, cur)
		if err != nil {
			return err
		}

		if curSize >= size {
			break
		}

		_, curNext, err := readLinks(al.p, cur)
		if err != nil {
			return err
		}

		prev = cur
		cur = curNext
	}

	if err := writeLinks(al.p, b, prev, cur); err != nil {
		return err
	}

	if cur != 0 {
		if err := setLinkPrev(al.p, cur, b); err != nil {
			return err
		}
	}

	if prev == 0 {
		return al.writeHead(i, b)
	}

	return setLinkNext(al.p, prev, b)
}

// unlink removes the free block b (of the given size) from its bucket's
// list.
func (al *Allocator) unlink(b, size int64) error {
	i := bucketIndex(size)
	prev, next, err := readLinks(al.p, b)
	if err != nil {
		return err
	}

	switch {
	case prev == 0 && next == 0:
		return al.writeHead(i, 0)
	case prev == 0 && next != 0:
		if err := setLinkPrev(al.p, next, 0); err != nil {
			return err
		}

		return al.writeHead(i, next)
	case prev != 0 && next == 0:
		return setLinkNext(al.p, prev, 0)
	default:
		if err := setLinkNext(al.p, prev, next); err != nil {
			return err
		}

		return setLinkPrev(al.p, next, prev)
	}
}

// setLinkPrev sets b.prev without disturbing b.next.
func setLinkPrev(p heapio.Provider, b, prev int64) error {
	_, next, err := readLinks(p, b)
	if err != nil {
		return err
	}

	return writeLinks(p, b, prev, next)
}

// setLinkNext sets b.next without disturbing b.prev.
func setLinkNext(p heapio.Provider, b, next int64) error {
	prev, _, err := readLinks(p, b)
	if err != nil {
		return err
	}

	return writeLinks(p, b, prev, next)
}
