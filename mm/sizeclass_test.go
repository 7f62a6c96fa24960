// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mm

import "testing"

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		size int64
		want int
	}{
		{32, 0},
		{63, 0},
		{64, 1},
		{127, 1},
		{128, 2},
		{1016, 4},
		{1 << 30, numBuckets - 1},
	}

	for _, c := range cases {
		if got := bucketIndex(c.size); got != c.want {
			t.Errorf("bucketIndex(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestBucketIndexMonotonic(t *testing.T) {
	prev := bucketIndex(32)
	for size := int64(33); size < 1<<20; size += 8 {
		i := bucketIndex(size)
		if i < prev {
			t.Fatalf("bucketIndex(%d) = %d < bucketIndex(%d) = %d", size, i, size-8, prev)
		}
		prev = i
	}
}
