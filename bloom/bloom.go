// Copyright 2013 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package bloom implements the built-in Bloom filter policy.
//
// Three encodings exist:
//
//   - The fast local Bloom filter confines all probes for a key to a single
//     64-byte cache line. It is the default for new filters.
//   - The legacy Bloom filter uses whole bits per key and probes the entire bit
//     array. It is written only for tables whose format version predates the
//     fast local filter.
//   - The deprecated block-based filter is the LevelDB per-data-block filter.
//     It is only produced by policies explicitly configured for it and is not
//     decodable through the builder/reader interfaces.
//
// The fast local and legacy encodings both end in a 5-byte trailer; readers
// use the trailer alone to pick the decoding logic, so a policy can always
// read filters written under any other mode.
package bloom

import "github.com/cockroachdb/fastbloom/internal/base"

// Family name for bloom filters. This string looks arbitrary, but its value is
// written to LevelDB .sst files, and should be this exact value to be
// compatible with those files and with the C++ LevelDB code.
const Family = "rocksdb.BuiltinBloomFilter"

const (
	cacheLineSize = 64
	cacheLineBits = cacheLineSize * 8

	// metadataLen is the size of the trailer of fast local and legacy filters.
	metadataLen = 5

	// newImplMarker occupies the first trailer byte of filters written by the
	// fast local implementation (and any later one). Legacy filters store the
	// probe count there, which never exceeds maxLegacyProbes.
	newImplMarker = 0xff
	// fastLocalSubImpl is the second trailer byte of fast local filters.
	fastLocalSubImpl = 0

	maxLegacyProbes    = 30
	maxFastLocalProbes = 24

	// minBitsPerKey and maxBitsPerKey bound non-zero configured bits per key.
	minBitsPerKey = 1.0
	maxBitsPerKey = 100.0
)

// hash implements a hashing algorithm similar to the Murmur hash. It is used by
// the legacy and block-based filters.
func hash(b []byte) uint32 {
	const (
		seed = 0xbc9f1d34
		m    = 0xc6a4a793
	)
	h := uint32(seed) ^ (uint32(len(b)) * m)
	for ; len(b) >= 4; b = b[4:] {
		h += uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		h *= m
		h ^= h >> 16
	}

	// The code below first casts each byte to a signed 8-bit integer. This is
	// necessary to match RocksDB's behavior. Note that the `byte` type in Go is
	// unsigned. What is the difference between casting a signed 8-bit value vs
	// unsigned 8-bit value into an unsigned 32-bit value?
	// Sign-extension. Consider the value 250 which has the bit pattern 11111010:
	//
	//   uint32(250)        = 00000000000000000000000011111010
	//   uint32(int8(250))  = 11111111111111111111111111111010
	//
	// Note that the original LevelDB code did not explicitly cast to a signed
	// 8-bit value which left the behavior dependent on whether C characters were
	// signed or unsigned which is a compiler flag for gcc (-funsigned-char).
	switch len(b) {
	case 3:
		h += uint32(int8(b[2])) << 16
		fallthrough
	case 2:
		h += uint32(int8(b[1])) << 8
		fallthrough
	case 1:
		h += uint32(int8(b[0]))
		h *= m
		h ^= h >> 24
	}
	return h
}

// fastLocalNumProbes returns the number of probes used by the fast local
// filter: ln(2) * bits per key, rounded half up and clamped to
// [1, maxFastLocalProbes]. Integer arithmetic keeps the result identical on
// every platform.
func fastLocalNumProbes(millibitsPerKey int) int {
	const ln2Nanos = 693147
	k := int((int64(millibitsPerKey)*ln2Nanos + 500_000_000) / 1_000_000_000)
	return min(max(k, 1), maxFastLocalProbes)
}

// legacyNumProbes returns the number of probes used by the legacy and
// block-based filters (0.69 ~= ln(2), rounded down).
func legacyNumProbes(wholeBitsPerKey int) int {
	k := wholeBitsPerKey * 69 / 100
	return min(max(k, 1), maxLegacyProbes)
}

// millibitsToWholeBits rounds millibits per key to whole bits per key, half
// up.
func millibitsToWholeBits(millibitsPerKey int) int {
	return (millibitsPerKey + 500) / 1000
}

var _ base.FilterPolicy = (*Policy)(nil)
