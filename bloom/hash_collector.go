// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"iter"
	"sync"
)

// hashCollector buffers the key hashes of one filter until Finish knows how
// many lines to allocate.
//
// Only a hash equal to the one added just before it is dropped, so runs of the
// same key (as produced by a sorted key stream) are counted once while
// duplicates that are not adjacent are kept and counted again. Setting the same
// bits twice is harmless; only the size estimate is affected.
//
// Hashes are kept as uint64. Fast local filters add their 64-bit hash as is;
// legacy filters go through AddLegacy, which zero-extends the 32-bit hash and
// is undone by truncating to uint32 when the bits are set.
//
// Storage is a list of fixed-size chunks taken from chunkPool. Reset returns
// every chunk to the pool, so a builder reused across filter blocks does not
// reallocate.
type hashCollector struct {
	chunks []*hashChunk
	// chunksBuf backs chunks for the first few chunks.
	chunksBuf [16]*hashChunk
	n         uint
	last      uint64
}

const hashChunkLen = 8192

type hashChunk [hashChunkLen]uint64

var chunkPool = sync.Pool{
	New: func() interface{} {
		return new(hashChunk)
	},
}

func (hc *hashCollector) Init() {
	hc.chunks = hc.chunksBuf[:0]
}

// Add records h unless it equals the previously added hash.
func (hc *hashCollector) Add(h uint64) {
	if hc.n > 0 && hc.last == h {
		return
	}
	i := hc.n % hashChunkLen
	if i == 0 {
		hc.chunks = append(hc.chunks, chunkPool.Get().(*hashChunk))
	}
	hc.chunks[len(hc.chunks)-1][i] = h
	hc.n++
	hc.last = h
}

// AddLegacy records a 32-bit legacy hash.
func (hc *hashCollector) AddLegacy(h uint32) {
	hc.Add(uint64(h))
}

// NumHashes returns the number of hashes kept.
func (hc *hashCollector) NumHashes() uint {
	return hc.n
}

// Blocks yields the kept hashes in insertion order, one chunk at a time. The
// last chunk is trimmed to its filled prefix. Nothing is yielded when no hash
// was added.
func (hc *hashCollector) Blocks() iter.Seq[[]uint64] {
	return func(yield func([]uint64) bool) {
		remaining := hc.n
		for _, c := range hc.chunks {
			if remaining == 0 {
				return
			}
			k := min(remaining, hashChunkLen)
			if !yield(c[:k]) {
				return
			}
			remaining -= k
		}
	}
}

// Reset returns all chunks to the pool and empties the collector.
func (hc *hashCollector) Reset() {
	for i, c := range hc.chunks {
		chunkPool.Put(c)
		hc.chunks[i] = nil
	}
	*hc = hashCollector{}
	hc.Init()
}
