// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command heapbench drives an mm.Allocator through a random mix of
// allocate, reallocate and free calls and reports throughput, modeled on
// lldb's own alloc/realloc/free workload generators.
package main

import (
	"flag"
	"log"
	"math/rand"
	"runtime"
	"time"

	"github.com/heapa-project/heapa/heapio"
	"github.com/heapa-project/heapa/mm"
)

var (
	maxLive   = flag.Int("live", 2000, "target number of simultaneously live blocks")
	ops       = flag.Int("ops", 200000, "total number of allocate/reallocate/free calls to perform")
	maxSize   = flag.Int("size", 1<<16, "maximum request size in bytes")
	seed      = flag.Int64("seed", 42, "PRNG seed")
	verifyAll = flag.Bool("verify", false, "run the integrity checker after every operation (slow)")
)

func main() {
	flag.Parse()

	h := heapio.NewMemHeap()
	al, err := mm.Init(h)
	if err != nil {
		log.Fatal(err)
	}

	rng := rand.New(rand.NewSource(*seed))
	var live []mm.Addr

	runtime.GC()
	t0 := time.Now()
	secs := time.Tick(time.Second)

	for i := 0; i < *ops; i++ {
		select {
		case <-secs:
			log.Printf("op %d/%d, %d live, heap size %d", i, *ops, len(live), h.Size())
		default:
		}

		switch {
		case len(live) == 0 || rng.Intn(3) == 0:
			s := int64(rng.Intn(*maxSize) + 1)
			addr, err := al.Allocate(s)
			if err != nil {
				log.Fatalf("Allocate(%d): %v", s, err)
			}
			live = append(live, addr)

		case rng.Intn(2) == 0:
			j := rng.Intn(len(live))
			s := int64(rng.Intn(*maxSize) + 1)
			addr, err := al.Reallocate(live[j], s)
			if err != nil {
				log.Fatalf("Reallocate(%v, %d): %v", live[j], s, err)
			}
			live[j] = addr

		default:
			j := rng.Intn(len(live))
			if err := al.Free(live[j]); err != nil {
				log.Fatalf("Free(%v): %v", live[j], err)
			}
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		if len(live) > *maxLive {
			if err := al.Free(live[0]); err != nil {
				log.Fatalf("Free(%v): %v", live[0], err)
			}
			live = live[1:]
		}

		if *verifyAll {
			al.VerifyOrDie()
		}
	}

	elapsed := time.Since(t0)
	log.Printf("%d ops in %s (%.0f ops/sec), final heap size %d bytes, %d blocks live",
		*ops, elapsed, float64(*ops)/elapsed.Seconds(), h.Size(), len(live))

	if !*verifyAll {
		al.VerifyOrDie()
	}
}
