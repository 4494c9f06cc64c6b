// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/cockroachdb/fastbloom/internal/invariants"
)

// The fast local filter format:
//   - numLines * cacheLineSize bytes of filter bits
//   - 1 byte: newImplMarker
//   - 1 byte: fastLocalSubImpl
//   - 1 byte: number of probes
//   - 1 byte: log2(line size / 64), always 0
//   - 1 byte: reserved, always 0
//
// A key's 64-bit hash is split in two: the upper half selects the cache line
// and the lower half generates the probes inside it.

// maxFastLocalLines keeps the filter length representable in 32 bits.
const maxFastLocalLines = (math.MaxUint32 - metadataLen) / cacheLineSize

// fastLocalNumLines returns the number of cache lines for numEntries keys.
func fastLocalNumLines(numEntries int, millibitsPerKey int) uint32 {
	if numEntries <= 0 || millibitsPerKey <= 0 {
		return 0
	}
	const millibitsPerLine = cacheLineBits * 1000
	n := (uint64(numEntries)*uint64(millibitsPerKey) + millibitsPerLine - 1) / millibitsPerLine
	return uint32(min(n, maxFastLocalLines))
}

// fastLocalMaxKeys returns the largest key count for which
// CalculateNumEntries(CalculateSpace(n)) >= n holds. Past it the filter stays
// at maxFastLocalLines lines and the false positive rate degrades.
func fastLocalMaxKeys(millibitsPerKey int) int {
	if millibitsPerKey <= 0 {
		return 0
	}
	n := uint64(maxFastLocalLines) * cacheLineBits * 1000 / uint64(millibitsPerKey)
	return int(min(n, math.MaxInt32))
}

func fastLocalHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// fastLocalLine returns the cache line selected by h.
func fastLocalLine(bits []byte, numLines uint32, h uint64) *[cacheLineSize]byte {
	lineIdx := uint32(h>>32) % numLines
	invariants.CheckBounds(lineIdx, numLines)
	return (*[cacheLineSize]byte)(bits[lineIdx*cacheLineSize : (lineIdx+1)*cacheLineSize])
}

// fastLocalSet sets the probe bits of h in its cache line. Probe i is bit
// (h + i*delta) % cacheLineBits; delta is odd so the probes are distinct.
func fastLocalSet(line *[cacheLineSize]byte, numProbes int, h uint32) {
	delta := (h>>17 | h<<15) | 1
	for range numProbes {
		bitpos := h & (cacheLineBits - 1)
		line[bitpos>>3] |= 1 << (bitpos & 7)
		h += delta
	}
}

func fastLocalProbe(line *[cacheLineSize]byte, numProbes int, h uint32) bool {
	delta := (h>>17 | h<<15) | 1
	for range numProbes {
		bitpos := h & (cacheLineBits - 1)
		if line[bitpos>>3]&(1<<(bitpos&7)) == 0 {
			return false
		}
		h += delta
	}
	return true
}

// fastLocalBuilder implements base.FilterBitsBuilder for fast local filters.
type fastLocalBuilder struct {
	millibitsPerKey int
	numProbes       int

	hc hashCollector
}

var _ base.FilterBitsBuilder = (*fastLocalBuilder)(nil)

func newFastLocalBuilder(millibitsPerKey int) *fastLocalBuilder {
	b := &fastLocalBuilder{
		millibitsPerKey: millibitsPerKey,
		numProbes:       fastLocalNumProbes(millibitsPerKey),
	}
	b.hc.Init()
	return b
}

// AddKey implements the base.FilterBitsBuilder interface.
func (b *fastLocalBuilder) AddKey(key []byte) {
	b.hc.Add(fastLocalHash(key))
}

// NumAdded implements the base.FilterBitsBuilder interface.
func (b *fastLocalBuilder) NumAdded() int {
	return int(b.hc.NumHashes())
}

// CalculateSpace implements the base.FilterBitsBuilder interface. The space
// stops growing at fastLocalMaxKeys keys.
func (b *fastLocalBuilder) CalculateSpace(numEntries int) int {
	return int(fastLocalNumLines(numEntries, b.millibitsPerKey))*cacheLineSize + metadataLen
}

// CalculateNumEntries implements the base.FilterBitsBuilder interface.
func (b *fastLocalBuilder) CalculateNumEntries(space int) int {
	if space <= metadataLen || b.millibitsPerKey <= 0 {
		return 0
	}
	numLines := uint64(space-metadataLen) / cacheLineSize
	n := numLines * cacheLineBits * 1000 / uint64(b.millibitsPerKey)
	return int(min(n, math.MaxInt32))
}

// EstimatedFpRate implements the base.FilterBitsBuilder interface.
func (b *fastLocalBuilder) EstimatedFpRate(numKeys, numBytes int) float64 {
	if numKeys <= 0 {
		return 0
	}
	bits := float64(numBytes-metadataLen) * 8
	if bits <= 0 {
		return 1
	}
	filterRate := cacheLocalFpRate(bits/float64(numKeys), b.numProbes, cacheLineBits)
	return clampProbability(independentProbabilitySum(filterRate, fingerprintFpRate(numKeys, 64)))
}

// Finish implements the base.FilterBitsBuilder interface.
func (b *fastLocalBuilder) Finish() []byte {
	numLines := fastLocalNumLines(int(b.hc.NumHashes()), b.millibitsPerKey)
	nBytes := int(numLines) * cacheLineSize
	data := make([]byte, nBytes+metadataLen)
	if numLines > 0 {
		bits := data[:nBytes]
		for blk := range b.hc.Blocks() {
			for _, h := range blk {
				fastLocalSet(fastLocalLine(bits, numLines, h), b.numProbes, uint32(h))
			}
		}
		if invariants.Sometimes(10) {
			for blk := range b.hc.Blocks() {
				for _, h := range blk {
					invariants.Check(fastLocalProbe(fastLocalLine(bits, numLines, h), b.numProbes, uint32(h)),
						"bloom: fast local filter misses hash %x", h)
				}
			}
		}
	}
	trailer := data[nBytes:]
	trailer[0] = newImplMarker
	trailer[1] = fastLocalSubImpl
	trailer[2] = byte(b.numProbes)
	// trailer[3] (line size) and trailer[4] (reserved) stay zero.
	invariants.Check(len(data) == b.CalculateSpace(int(b.hc.NumHashes())),
		"bloom: fast local filter length %d does not match CalculateSpace", len(data))
	b.hc.Reset()
	return data
}

// fastLocalReader implements base.FilterBitsReader for fast local filters.
type fastLocalReader struct {
	bits      []byte
	numLines  uint32
	numProbes int
}

var _ base.FilterBitsReader = (*fastLocalReader)(nil)

func (r *fastLocalReader) mayMatchHash(h uint64) bool {
	return fastLocalProbe(fastLocalLine(r.bits, r.numLines, h), r.numProbes, uint32(h))
}

// MayMatch implements the base.FilterBitsReader interface.
func (r *fastLocalReader) MayMatch(key []byte) bool {
	return r.mayMatchHash(fastLocalHash(key))
}

// MayMatchMulti implements the base.FilterBitsReader interface.
func (r *fastLocalReader) MayMatchMulti(keys [][]byte, results []bool) {
	results = results[:len(keys)]
	for i := range keys {
		results[i] = r.mayMatchHash(fastLocalHash(keys[i]))
	}
}
