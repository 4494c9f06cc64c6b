// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/cockroachdb/redact"
)

// Mode selects the filter implementation a Policy builds. The numeric values
// are stable and may be persisted in configuration.
type Mode uint8

const (
	// LegacyBloom always builds legacy filters. Testing only: it ignores the
	// format version and does not use the best compatible implementation.
	LegacyBloom Mode = 0
	// DeprecatedBlockBased builds LevelDB per-data-block filters through
	// Policy.BlockBased. NewBuilder never returns a builder in this mode.
	DeprecatedBlockBased Mode = 1
	// FastLocalBloom always builds fast local filters. Testing only: it does
	// not check the format version.
	FastLocalBloom Mode = 2
	// Auto builds fast local filters when the table format version supports
	// them and legacy filters otherwise. It is the recommended mode.
	Auto Mode = 100
)

// AllFixedImpls lists the modes that always use a single implementation.
var AllFixedImpls = []Mode{LegacyBloom, DeprecatedBlockBased, FastLocalBloom}

// AllUserModes lists the modes exposed to users.
var AllUserModes = []Mode{DeprecatedBlockBased, Auto}

var allModes = []Mode{LegacyBloom, DeprecatedBlockBased, FastLocalBloom, Auto}

func (m Mode) String() string {
	switch m {
	case LegacyBloom:
		return "legacy"
	case DeprecatedBlockBased:
		return "block_based"
	case FastLocalBloom:
		return "fast_local"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// SafeValue implements redact.SafeValue.
func (m Mode) SafeValue() {}

var _ redact.SafeValue = Mode(0)

func (m Mode) valid() bool {
	return slices.Contains(allModes, m)
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range allModes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, base.InvalidFilterPolicyf("bloom: unknown mode %q", s)
}

// impl is a concrete builder implementation.
type impl uint8

const (
	implNone impl = iota
	implLegacy
	implFastLocal
)

func (i impl) String() string {
	switch i {
	case implLegacy:
		return "legacy"
	case implFastLocal:
		return "fast_local"
	default:
		return "none"
	}
}

// selectImpl maps a mode and a building context to the implementation that
// builds the filter. fellBack is set when Auto mode had to settle for the
// legacy implementation because of the format version.
func selectImpl(mode Mode, ctx *base.FilterBuildingContext) (_ impl, fellBack bool) {
	if ctx != nil && ctx.BlockBasedFilter {
		return implNone, false
	}
	switch mode {
	case LegacyBloom:
		return implLegacy, false
	case DeprecatedBlockBased:
		return implNone, false
	case FastLocalBloom:
		return implFastLocal, false
	case Auto:
		version := base.FormatVersionUnspecified
		if ctx != nil {
			version = ctx.FormatVersion
		}
		if version.Resolve() >= base.FormatVersionFastLocalBloom {
			return implFastLocal, false
		}
		return implLegacy, true
	default:
		panic(errors.AssertionFailedf("bloom: unknown mode %s", mode))
	}
}

// PolicyOptions configures a Policy.
type PolicyOptions struct {
	// BitsPerKey is the approximate number of filter bits per key. A good value
	// is 10, which yields a filter with ~1% false positive rate. Values in
	// (0, 1) are raised to 1 and values over 100 are lowered to 100. Zero
	// disables filter building.
	BitsPerKey float64
	// Mode selects the implementation.
	Mode Mode
	// Metrics, if set, is updated when builders and readers are created.
	Metrics *Metrics
}

// Policy is the built-in Bloom filter policy. It is safe for concurrent use.
type Policy struct {
	// millibitsPerKey is the configured bits per key, in thousandths of a bit,
	// used by fast local filters.
	millibitsPerKey int
	// wholeBitsPerKey is millibitsPerKey rounded to whole bits, used by legacy
	// and block-based filters.
	wholeBitsPerKey int
	mode            Mode
	metrics         *Metrics

	// warned is set once a diagnostic has been logged, so that each policy
	// logs at most one.
	warned atomic.Bool
}

// NewPolicy returns a Policy with the given bits per key and mode.
func NewPolicy(bitsPerKey float64, mode Mode) (*Policy, error) {
	return New(PolicyOptions{BitsPerKey: bitsPerKey, Mode: mode})
}

// New returns a Policy configured by opts.
func New(opts PolicyOptions) (*Policy, error) {
	bitsPerKey := opts.BitsPerKey
	if math.IsNaN(bitsPerKey) || math.IsInf(bitsPerKey, 0) || bitsPerKey < 0 {
		return nil, base.InvalidFilterPolicyf("bloom: invalid bits per key %v", bitsPerKey)
	}
	if !opts.Mode.valid() {
		return nil, base.InvalidFilterPolicyf("bloom: unknown mode %s", opts.Mode)
	}
	var millibits int
	if bitsPerKey > 0 {
		bitsPerKey = min(max(bitsPerKey, minBitsPerKey), maxBitsPerKey)
		// Round to thousandths of a bit, half up, for predictable behavior
		// across floating point implementations.
		millibits = int(math.Floor(bitsPerKey*1000 + 0.5))
	}
	return &Policy{
		millibitsPerKey: millibits,
		wholeBitsPerKey: millibitsToWholeBits(millibits),
		mode:            opts.Mode,
		metrics:         opts.Metrics,
	}, nil
}

// Name implements the base.FilterPolicy interface. All modes share the name;
// the encoded filters identify their implementation.
func (p *Policy) Name() string {
	return Family
}

// Mode returns the configured mode.
func (p *Policy) Mode() Mode {
	return p.mode
}

// MillibitsPerKey returns the configured bits per key in thousandths of a bit.
func (p *Policy) MillibitsPerKey() int {
	return p.millibitsPerKey
}

// WholeBitsPerKey returns the configured bits per key rounded to a whole
// number, as used by the legacy and block-based filters.
func (p *Policy) WholeBitsPerKey() int {
	return p.wholeBitsPerKey
}

// String implements fmt.Stringer.
func (p *Policy) String() string {
	return redact.StringWithoutMarkers(p)
}

// SafeFormat implements redact.SafeFormatter.
func (p *Policy) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("bloom(%s, %d.%03d bits/key)", p.mode,
		redact.Safe(p.millibitsPerKey/1000), redact.Safe(p.millibitsPerKey%1000))
}

// NewBuilder implements the base.FilterPolicy interface. It returns ok=false
// in DeprecatedBlockBased mode, for contexts that require block-based filters,
// and when filters are disabled (zero bits per key).
func (p *Policy) NewBuilder(ctx *base.FilterBuildingContext) (_ base.FilterBitsBuilder, ok bool) {
	if p.millibitsPerKey == 0 {
		p.metrics.builderNotApplicable()
		return nil, false
	}
	im, fellBack := selectImpl(p.mode, ctx)
	switch im {
	case implFastLocal:
		p.metrics.builderCreated(im)
		return newFastLocalBuilder(p.millibitsPerKey), true

	case implLegacy:
		if fellBack {
			p.metrics.legacyFallback()
		}
		if fellBack || p.millibitsPerKey%1000 != 0 {
			p.warnLegacy(ctx, fellBack)
		}
		p.metrics.builderCreated(im)
		return newLegacyBuilder(p.wholeBitsPerKey), true

	default:
		p.metrics.builderNotApplicable()
		return nil, false
	}
}

// buildsFilters reports whether NewBuilder returns a builder for ctx, without
// creating one, updating metrics or logging.
func (p *Policy) buildsFilters(ctx *base.FilterBuildingContext) bool {
	if p.millibitsPerKey == 0 {
		return false
	}
	im, _ := selectImpl(p.mode, ctx)
	return im != implNone
}

// warnLegacy logs, at most once per policy, why a legacy filter is being
// built with a degraded configuration.
func (p *Policy) warnLegacy(ctx *base.FilterBuildingContext, fellBack bool) {
	if !p.warned.CompareAndSwap(false, true) {
		return
	}
	var buf strings.Builder
	if fellBack {
		fmt.Fprintf(&buf, "bloom: using legacy Bloom filter for %s; format_version>=%d supports the cache-local Bloom filter",
			ctx, base.FormatVersionFastLocalBloom)
	} else {
		buf.WriteString("bloom: using legacy Bloom filter")
	}
	if p.millibitsPerKey%1000 != 0 {
		fmt.Fprintf(&buf, "; %d.%03d bits/key rounded to %d",
			p.millibitsPerKey/1000, p.millibitsPerKey%1000, p.wholeBitsPerKey)
	}
	ctx.GetLogger().Infof("%s", buf.String())
}

// NewReader implements the base.FilterPolicy interface. The reader is chosen
// from the trailer of contents, regardless of the policy's mode, so filters
// written under any mode (except DeprecatedBlockBased) can be read. The
// returned reader references contents, which must not be modified.
func (p *Policy) NewReader(contents []byte) base.FilterBitsReader {
	r, kind := newReader(contents)
	p.metrics.readerCreated(kind)
	return r
}

// BlockBased returns the deprecated block-based filter capability. It is only
// available in DeprecatedBlockBased mode.
func (p *Policy) BlockBased() (_ base.BlockBasedFilterPolicy, ok bool) {
	if p.mode != DeprecatedBlockBased || p.wholeBitsPerKey == 0 {
		return nil, false
	}
	return newBlockBasedFilter(p.wholeBitsPerKey), true
}

// KeyMayMatch reads a filter produced by a block-based CreateFilter. It is
// available in every mode so that old block-based filters stay readable.
func (p *Policy) KeyMayMatch(key, filter []byte) bool {
	return blockBasedKeyMayMatch(key, filter)
}
