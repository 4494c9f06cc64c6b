// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"slices"

	"github.com/cockroachdb/fastbloom/internal/base"
)

// The block-based filter format is the LevelDB one:
//   - ceil(max(64, n*bitsPerKey) / 8) bytes of filter bits
//   - 1 byte: number of probes
//
// There is no marker. These filters live in their own filter blocks and must
// not be passed to Policy.NewReader.

const minBlockBasedBits = 64

// blockBasedFilter implements base.BlockBasedFilterPolicy.
type blockBasedFilter struct {
	wholeBitsPerKey int
	numProbes       int
}

var _ base.BlockBasedFilterPolicy = blockBasedFilter{}

func newBlockBasedFilter(wholeBitsPerKey int) blockBasedFilter {
	return blockBasedFilter{
		wholeBitsPerKey: wholeBitsPerKey,
		numProbes:       legacyNumProbes(wholeBitsPerKey),
	}
}

// CreateFilter implements the base.BlockBasedFilterPolicy interface.
func (f blockBasedFilter) CreateFilter(keys [][]byte, dst []byte) []byte {
	nBits := max(len(keys)*f.wholeBitsPerKey, minBlockBasedBits)
	nBytes := (nBits + 7) / 8
	nBits = min(nBytes*8, maxLegacyLines*cacheLineBits)
	nBytes = nBits / 8

	start := len(dst)
	dst = slices.Grow(dst, nBytes+1)[:start+nBytes+1]
	clear(dst[start:])
	bits := dst[start : start+nBytes]
	for _, key := range keys {
		legacySet(bits, uint32(nBits), f.numProbes, hash(key))
	}
	dst[start+nBytes] = byte(f.numProbes)
	return dst
}

// KeyMayMatch implements the base.BlockBasedFilterPolicy interface.
func (f blockBasedFilter) KeyMayMatch(key, filter []byte) bool {
	return blockBasedKeyMayMatch(key, filter)
}

// blockBasedKeyMayMatch reads a block-based filter. The probe count comes from
// the filter itself, so no policy parameters are needed.
func blockBasedKeyMayMatch(key, filter []byte) bool {
	n := len(filter) - 1
	if n < 1 || n > maxLegacyLines*cacheLineSize {
		// Too short to have been written by CreateFilter, or too large to
		// address; fail open.
		return true
	}
	numProbes := int(filter[n])
	if numProbes > maxLegacyProbes {
		// Reserved for potentially new encodings for short bloom filters.
		// Consider it a match.
		return true
	}
	return legacyProbe(filter[:n], uint32(n*8), numProbes, hash(key))
}
