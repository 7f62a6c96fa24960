// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The segregated-fit size-class index.

package mm

import "math/bits"

// bucketIndex maps a block size (in bytes) to one of the numBuckets
// buckets. Bucket i covers sizes in [2^(i+5), 2^(i+6)), except the last
// bucket, which catches everything >= 2^(numBuckets+4).
func bucketIndex(size int64) int {
	if size < 64 {
		return 0
	}

	// bits.Len64(size) == floor(log2(size)) + 1 for size > 0.
	i := bits.Len64(uint64(size)) - 1 - 5
	if i < 0 {
		i = 0
	}
	if i >= numBuckets {
		i = numBuckets - 1
	}

	return i
}
