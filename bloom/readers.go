// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/cockroachdb/redact"
)

// ReaderKind identifies the decoding logic selected for an encoded filter.
type ReaderKind uint8

const (
	// ReaderFastLocal decodes a fast local filter.
	ReaderFastLocal ReaderKind = iota
	// ReaderLegacy decodes a legacy filter.
	ReaderLegacy
	// ReaderEmpty is used for well-formed filters built from zero keys; it
	// never matches.
	ReaderEmpty
	// ReaderMalformed is used for truncated or inconsistent filters; it always
	// matches.
	ReaderMalformed
	// ReaderUnsupported is used for filters written by an implementation this
	// code does not know; it always matches.
	ReaderUnsupported
)

var readerKindNames = [...]string{
	ReaderFastLocal:   "fast_local",
	ReaderLegacy:      "legacy",
	ReaderEmpty:       "empty",
	ReaderMalformed:   "malformed",
	ReaderUnsupported: "unsupported",
}

func (k ReaderKind) String() string {
	if int(k) < len(readerKindNames) {
		return readerKindNames[k]
	}
	return fmt.Sprintf("ReaderKind(%d)", uint8(k))
}

// SafeValue implements redact.SafeValue.
func (k ReaderKind) SafeValue() {}

var _ redact.SafeValue = ReaderKind(0)

// FilterInfo describes an encoded filter, as decoded from its trailer.
type FilterInfo struct {
	Kind ReaderKind
	// Len is the total length of the encoded filter.
	Len int
	// NumProbes and NumLines are only set for fast local and legacy filters.
	NumProbes int
	NumLines  uint32
}

func (i FilterInfo) String() string {
	switch i.Kind {
	case ReaderFastLocal, ReaderLegacy:
		return fmt.Sprintf("%s: %d bytes, %d lines, %d probes", i.Kind, i.Len, i.NumLines, i.NumProbes)
	default:
		return fmt.Sprintf("%s: %d bytes", i.Kind, i.Len)
	}
}

// DescribeFilter decodes the trailer of an encoded fast local or legacy
// filter. It never fails; contents it cannot decode are reported as
// ReaderMalformed or ReaderUnsupported. A trailer-only filter is only
// ReaderEmpty if its trailer is valid, since an empty reader matches no key.
func DescribeFilter(contents []byte) FilterInfo {
	info := FilterInfo{Len: len(contents)}
	if len(contents) < metadataLen {
		info.Kind = ReaderMalformed
		return info
	}
	n := len(contents) - metadataLen
	trailer := contents[n:]

	if trailer[0] == newImplMarker {
		if trailer[1] != fastLocalSubImpl || trailer[3] != 0 {
			// A newer implementation, or a line size we don't support.
			info.Kind = ReaderUnsupported
			return info
		}
		numProbes := int(trailer[2])
		if numProbes < 1 || numProbes > maxLegacyProbes || trailer[4] != 0 ||
			n%cacheLineSize != 0 || n/cacheLineSize > maxFastLocalLines {
			info.Kind = ReaderMalformed
			return info
		}
		if n == 0 {
			info.Kind = ReaderEmpty
			return info
		}
		info.Kind = ReaderFastLocal
		info.NumProbes = numProbes
		info.NumLines = uint32(n / cacheLineSize)
		return info
	}

	numProbes := int(trailer[0])
	numLines := binary.LittleEndian.Uint32(trailer[1:])
	if numProbes < 1 || numProbes > maxLegacyProbes || numLines > maxLegacyLines ||
		uint64(n) != uint64(numLines)*cacheLineSize {
		info.Kind = ReaderMalformed
		return info
	}
	if n == 0 {
		info.Kind = ReaderEmpty
		return info
	}
	info.Kind = ReaderLegacy
	info.NumProbes = numProbes
	info.NumLines = numLines
	return info
}

// newReader returns the reader for contents. It depends only on the trailer.
func newReader(contents []byte) (base.FilterBitsReader, ReaderKind) {
	info := DescribeFilter(contents)
	switch info.Kind {
	case ReaderFastLocal:
		return &fastLocalReader{
			bits:      contents[:info.NumLines*cacheLineSize],
			numLines:  info.NumLines,
			numProbes: info.NumProbes,
		}, info.Kind
	case ReaderLegacy:
		return &legacyReader{
			bits:      contents[:info.NumLines*cacheLineSize],
			totalBits: info.NumLines * cacheLineBits,
			numProbes: info.NumProbes,
		}, info.Kind
	case ReaderEmpty:
		return alwaysFalseReader{}, info.Kind
	default:
		return alwaysTrueReader{}, info.Kind
	}
}

// alwaysTrueReader is used for filters that cannot be decoded: it forces the
// caller to consult the table.
type alwaysTrueReader struct{}

var _ base.FilterBitsReader = alwaysTrueReader{}

// MayMatch implements the base.FilterBitsReader interface.
func (alwaysTrueReader) MayMatch([]byte) bool { return true }

// MayMatchMulti implements the base.FilterBitsReader interface.
func (alwaysTrueReader) MayMatchMulti(keys [][]byte, results []bool) {
	for i := range keys {
		results[i] = true
	}
}

// alwaysFalseReader is used for filters built from no keys.
type alwaysFalseReader struct{}

var _ base.FilterBitsReader = alwaysFalseReader{}

// MayMatch implements the base.FilterBitsReader interface.
func (alwaysFalseReader) MayMatch([]byte) bool { return false }

// MayMatchMulti implements the base.FilterBitsReader interface.
func (alwaysFalseReader) MayMatchMulti(keys [][]byte, results []bool) {
	for i := range keys {
		results[i] = false
	}
}
