// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"encoding/binary"

	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/cockroachdb/fastbloom/internal/invariants"
)

// The legacy filter format:
//   - numLines * cacheLineSize bytes of filter bits
//   - 1 byte: number of probes, in [1, maxLegacyProbes]
//   - 4 bytes: number of lines (little-endian)
//
// The bit array is sized in an odd number of cache lines, but probes are not
// confined to a line: each probe may touch any bit of the array.

// maxLegacyLines keeps the number of bits representable in 32 bits. It is odd.
const maxLegacyLines = 1<<23 - 1

func legacyNumLines(numEntries int, wholeBitsPerKey int) uint32 {
	if numEntries <= 0 || wholeBitsPerKey <= 0 {
		return 0
	}
	n := (uint64(numEntries)*uint64(wholeBitsPerKey) + cacheLineBits - 1) / cacheLineBits
	// Make nLines an odd number to make sure more bits are involved when
	// determining which bit to probe.
	return uint32(min(n|1, maxLegacyLines))
}

// legacyMaxKeys returns the largest key count for which
// CalculateNumEntries(CalculateSpace(n)) >= n holds. Past it the filter stays
// at maxLegacyLines lines.
func legacyMaxKeys(wholeBitsPerKey int) int {
	if wholeBitsPerKey <= 0 {
		return 0
	}
	return maxLegacyLines * cacheLineBits / wholeBitsPerKey
}

// legacySet sets the probe bits of h in a bit array of totalBits bits.
func legacySet(bits []byte, totalBits uint32, numProbes int, h uint32) {
	delta := h>>17 | h<<15 // rotate right 17 bits
	for range numProbes {
		bitpos := h % totalBits
		bits[bitpos/8] |= 1 << (bitpos % 8)
		h += delta
	}
}

func legacyProbe(bits []byte, totalBits uint32, numProbes int, h uint32) bool {
	delta := h>>17 | h<<15 // rotate right 17 bits
	for range numProbes {
		bitpos := h % totalBits
		if bits[bitpos/8]&(1<<(bitpos%8)) == 0 {
			return false
		}
		h += delta
	}
	return true
}

// legacyBuilder implements base.FilterBitsBuilder for legacy filters.
type legacyBuilder struct {
	wholeBitsPerKey int
	numProbes       int

	hc hashCollector
}

var _ base.FilterBitsBuilder = (*legacyBuilder)(nil)

func newLegacyBuilder(wholeBitsPerKey int) *legacyBuilder {
	b := &legacyBuilder{
		wholeBitsPerKey: wholeBitsPerKey,
		numProbes:       legacyNumProbes(wholeBitsPerKey),
	}
	b.hc.Init()
	return b
}

// AddKey implements the base.FilterBitsBuilder interface.
func (b *legacyBuilder) AddKey(key []byte) {
	b.hc.AddLegacy(hash(key))
}

// NumAdded implements the base.FilterBitsBuilder interface.
func (b *legacyBuilder) NumAdded() int {
	return int(b.hc.NumHashes())
}

// CalculateSpace implements the base.FilterBitsBuilder interface. The space
// stops growing at legacyMaxKeys keys: about 429M keys at 10 bits per key.
func (b *legacyBuilder) CalculateSpace(numEntries int) int {
	return int(legacyNumLines(numEntries, b.wholeBitsPerKey))*cacheLineSize + metadataLen
}

// CalculateNumEntries implements the base.FilterBitsBuilder interface.
func (b *legacyBuilder) CalculateNumEntries(space int) int {
	if space <= metadataLen || b.wholeBitsPerKey <= 0 {
		return 0
	}
	numLines := invariants.SafeSub(space, metadataLen) / cacheLineSize
	return numLines * cacheLineBits / b.wholeBitsPerKey
}

// EstimatedFpRate implements the base.FilterBitsBuilder interface.
func (b *legacyBuilder) EstimatedFpRate(numKeys, numBytes int) float64 {
	if numKeys <= 0 {
		return 0
	}
	bits := float64(numBytes-metadataLen) * 8
	if bits <= 0 {
		return 1
	}
	filterRate := standardFpRate(bits/float64(numKeys), b.numProbes)
	return clampProbability(independentProbabilitySum(filterRate, fingerprintFpRate(numKeys, 32)))
}

// Finish implements the base.FilterBitsBuilder interface.
func (b *legacyBuilder) Finish() []byte {
	numLines := legacyNumLines(int(b.hc.NumHashes()), b.wholeBitsPerKey)
	nBytes := int(numLines) * cacheLineSize
	data := make([]byte, nBytes+metadataLen)
	if numLines > 0 {
		totalBits := numLines * cacheLineBits
		for blk := range b.hc.Blocks() {
			for _, h := range blk {
				legacySet(data[:nBytes], totalBits, b.numProbes, uint32(h))
			}
		}
	}
	data[nBytes] = byte(b.numProbes)
	binary.LittleEndian.PutUint32(data[nBytes+1:], numLines)
	invariants.Check(len(data) == b.CalculateSpace(int(b.hc.NumHashes())),
		"bloom: legacy filter length %d does not match CalculateSpace", len(data))
	b.hc.Reset()
	return data
}

// legacyReader implements base.FilterBitsReader for legacy filters.
type legacyReader struct {
	bits      []byte
	totalBits uint32
	numProbes int
}

var _ base.FilterBitsReader = (*legacyReader)(nil)

// MayMatch implements the base.FilterBitsReader interface.
func (r *legacyReader) MayMatch(key []byte) bool {
	return legacyProbe(r.bits, r.totalBits, r.numProbes, hash(key))
}

// MayMatchMulti implements the base.FilterBitsReader interface.
func (r *legacyReader) MayMatchMulti(keys [][]byte, results []bool) {
	results = results[:len(keys)]
	for i := range keys {
		results[i] = legacyProbe(r.bits, r.totalBits, r.numProbes, hash(keys[i]))
	}
}
