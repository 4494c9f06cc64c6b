// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"

	"github.com/cockroachdb/redact"
)

// TableFormatVersion is the on-disk format version of the table that will
// store a filter block. It is the minimum version of the reading code that
// must be able to decode the block.
type TableFormatVersion uint32

const (
	// FormatVersionUnspecified is the zero value; it is treated as
	// FormatVersionLatest.
	FormatVersionUnspecified TableFormatVersion = 0
	// FormatVersionFastLocalBloom is the first table format version whose
	// readers understand the cache-local Bloom filter encoding. Older versions
	// can only read the legacy encoding.
	FormatVersionFastLocalBloom TableFormatVersion = 5
	// FormatVersionLatest is the most recent table format version.
	FormatVersionLatest TableFormatVersion = FormatVersionFastLocalBloom
)

// Resolve returns the effective format version, mapping the unspecified value
// to FormatVersionLatest.
func (v TableFormatVersion) Resolve() TableFormatVersion {
	if v == FormatVersionUnspecified {
		return FormatVersionLatest
	}
	return v
}

// FilterBuildingContext carries the information a filter policy needs to pick
// a concrete filter implementation for one filter block. A context is only
// valid for the duration of the NewBuilder call it is passed to.
type FilterBuildingContext struct {
	// FormatVersion is the table format version the filter block is written
	// for. The zero value means the latest version.
	FormatVersion TableFormatVersion
	// BlockBasedFilter is set when the table builds one filter per data block.
	// Such filters use the deprecated block-based shape and are created through
	// BlockBasedFilterPolicy, so no FilterBitsBuilder applies.
	BlockBasedFilter bool
	// Partitioned is set when the filter covers a single partition of the
	// table rather than the whole table.
	Partitioned bool
	// Logger receives policy diagnostics. If nil, DefaultLogger is used.
	Logger Logger
	// FilterPolicy is the table's configured filter policy, if any. It is only
	// consulted by NewBuilderFromContext.
	FilterPolicy FilterPolicy
}

// GetLogger returns the context's logger, or DefaultLogger. It is valid to
// call GetLogger on a nil receiver.
func (c *FilterBuildingContext) GetLogger() Logger {
	if c == nil || c.Logger == nil {
		return DefaultLogger{}
	}
	return c.Logger
}

// SafeFormat implements redact.SafeFormatter.
func (c *FilterBuildingContext) SafeFormat(w redact.SafePrinter, _ rune) {
	if c == nil {
		w.SafeString("<default context>")
		return
	}
	w.Printf("format_version=%d block_based=%t partitioned=%t",
		redact.Safe(uint32(c.FormatVersion)), redact.Safe(c.BlockBasedFilter), redact.Safe(c.Partitioned))
}

// String implements fmt.Stringer.
func (c *FilterBuildingContext) String() string {
	return redact.StringWithoutMarkers(c)
}

// FilterBitsBuilder accumulates the keys of one filter block and encodes them.
// A builder is owned by a single goroutine and is not reusable once Finish has
// been called.
type FilterBitsBuilder interface {
	// AddKey records a key. Adding the same key more than once is allowed.
	AddKey(key []byte)

	// NumAdded returns the number of key hashes recorded so far. Consecutive
	// duplicates are only counted once.
	NumAdded() int

	// CalculateSpace returns the size in bytes, trailer included, of a filter
	// built from numEntries keys. Filters have a maximum size; past the key
	// count that fills it, the space no longer grows with numEntries.
	CalculateSpace(numEntries int) int

	// CalculateNumEntries returns the number of keys that fit in a filter of
	// the given size. CalculateNumEntries(CalculateSpace(n)) >= n for any n up
	// to the implementation's maximum key count.
	CalculateNumEntries(space int) int

	// EstimatedFpRate returns an estimate of the false positive rate of a
	// filter holding numKeys keys encoded in numBytes bytes.
	EstimatedFpRate(numKeys, numBytes int) float64

	// Finish encodes all recorded keys.
	Finish() []byte
}

// FilterBitsReader queries an encoded filter block. Readers are immutable and
// safe for concurrent use.
type FilterBitsReader interface {
	// MayMatch returns false only if the key was definitely not added to the
	// filter.
	MayMatch(key []byte) bool

	// MayMatchMulti sets results[i] to MayMatch(keys[i]). len(results) must be
	// at least len(keys).
	MayMatchMulti(keys [][]byte, results []bool)
}

// FilterPolicy is an algorithm for probabilistically encoding a set of keys.
// The canonical implementation is a Bloom filter.
//
// Every FilterPolicy has a name. The name is recorded alongside the filter
// block so that readers know which family of filters wrote it; the encoded
// bytes themselves identify the concrete implementation inside the family.
type FilterPolicy interface {
	// Name names the filter family.
	Name() string

	// NewBuilder returns a builder for one filter block. ok is false when the
	// policy does not build filters through a FilterBitsBuilder in the given
	// context. ctx may be nil.
	NewBuilder(ctx *FilterBuildingContext) (_ FilterBitsBuilder, ok bool)

	// NewReader returns a reader for a filter block produced by any builder of
	// this family. Malformed or unrecognized contents produce a reader that
	// never excludes a key.
	NewReader(contents []byte) FilterBitsReader
}

// BlockBasedFilterPolicy is the optional capability of filter policies that
// can produce and read the deprecated per-data-block filters. These filters
// are unrelated to the FilterBitsBuilder encodings.
type BlockBasedFilterPolicy interface {
	// CreateFilter appends a filter for keys to dst and returns the extended
	// slice.
	CreateFilter(keys [][]byte, dst []byte) []byte

	// KeyMayMatch returns false only if key was definitely not passed to the
	// CreateFilter call that produced filter.
	KeyMayMatch(key, filter []byte) bool
}

// NewBuilderFromContext returns a builder from the filter policy configured in
// ctx. It returns ok=false if ctx has no policy or the policy does not apply to
// ctx.
func NewBuilderFromContext(ctx *FilterBuildingContext) (_ FilterBitsBuilder, ok bool) {
	if ctx == nil || ctx.FilterPolicy == nil {
		return nil, false
	}
	return ctx.FilterPolicy.NewBuilder(ctx)
}

// FilterPolicyName returns the name of p, or "none" if p is nil.
func FilterPolicyName(p FilterPolicy) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}

var _ fmt.Stringer = (*FilterBuildingContext)(nil)
