// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/cockroachdb/fastbloom/internal/testutils"
	"github.com/stretchr/testify/require"
)

// TestDataDriven runs the testdata/policy and testdata/describe files.
//
// Commands:
//
//	policy bits-per-key=<float> mode=<mode>
//	build keys=<n> [format-version=<v>] [block-based] [partitioned]
//	create-block-based keys=<n>
//	describe [zeros=<n>]
//	<hex trailer>
func TestDataDriven(t *testing.T) {
	var p *Policy
	var log testutils.RecordingLogger
	logged := 0

	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			switch td.Cmd {
			case "policy":
				var bitsPerKeyStr, mode string
				td.ScanArgs(t, "bits-per-key", &bitsPerKeyStr)
				td.ScanArgs(t, "mode", &mode)
				bitsPerKey, err := strconv.ParseFloat(bitsPerKeyStr, 64)
				if err != nil {
					td.Fatalf(t, "%v", err)
				}
				m, err := ParseMode(mode)
				if err != nil {
					return err.Error()
				}
				p, err = NewPolicy(bitsPerKey, m)
				if err != nil {
					return err.Error()
				}
				return p.String()

			case "build":
				var numKeys int
				var version int
				td.ScanArgs(t, "keys", &numKeys)
				td.MaybeScanArgs(t, "format-version", &version)
				ctx := &base.FilterBuildingContext{
					FormatVersion:    base.TableFormatVersion(version),
					BlockBasedFilter: td.HasArg("block-based"),
					Partitioned:      td.HasArg("partitioned"),
					Logger:           &log,
				}
				b, ok := p.NewBuilder(ctx)
				if !ok {
					return "no builder"
				}
				for i := range numKeys {
					b.AddKey([]byte(fmt.Sprintf("key-%d", i)))
				}
				f := b.Finish()
				var buf strings.Builder
				fmt.Fprintf(&buf, "%s\n", DescribeFilter(f))
				fmt.Fprintf(&buf, "trailer: % x\n", f[len(f)-metadataLen:])
				msgs := log.Messages()
				for _, m := range msgs[logged:] {
					fmt.Fprintf(&buf, "log: %s\n", m)
				}
				logged = len(msgs)
				return buf.String()

			case "create-block-based":
				var numKeys int
				td.ScanArgs(t, "keys", &numKeys)
				bb, ok := p.BlockBased()
				if !ok {
					return "not block-based"
				}
				keys := make([][]byte, numKeys)
				for i := range keys {
					keys[i] = []byte(fmt.Sprintf("key-%d", i))
				}
				f := bb.CreateFilter(keys, nil)
				return fmt.Sprintf("%d bytes, %d probes", len(f), f[len(f)-1])

			case "describe":
				var zeros int
				td.MaybeScanArgs(t, "zeros", &zeros)
				trailer, err := hex.DecodeString(strings.Join(strings.Fields(td.Input), ""))
				if err != nil {
					td.Fatalf(t, "%v", err)
				}
				contents := append(make([]byte, zeros), trailer...)
				info := DescribeFilter(contents)
				// Readers for filters that cannot be decoded must not reject
				// any key.
				r, kind := newReader(contents)
				require.Equal(t, info.Kind, kind)
				switch kind {
				case ReaderMalformed, ReaderUnsupported:
					require.True(t, r.MayMatch([]byte("foo")))
				case ReaderEmpty:
					require.False(t, r.MayMatch([]byte("foo")))
				}
				return info.String()

			default:
				td.Fatalf(t, "unknown command: %s", td.Cmd)
				return ""
			}
		})
	})
}

// TestTruncatedFilter checks that chopping bytes off the end of a filter never
// produces a reader with false negatives.
func TestTruncatedFilter(t *testing.T) {
	keys := make([][]byte, 100)
	for i := range keys {
		keys[i] = le32(i)
	}
	for _, mode := range []Mode{FastLocalBloom, LegacyBloom} {
		t.Run(mode.String(), func(t *testing.T) {
			p := newTestPolicy(t, 10, mode)
			f := buildFilter(t, p, nil, keys...)
			for _, n := range []int{0, 1, 2, 3, 4, len(f) - metadataLen + 1, len(f) - 1} {
				info := DescribeFilter(f[:n])
				require.Contains(t, []ReaderKind{ReaderMalformed, ReaderUnsupported}, info.Kind, "n=%d", n)
				r := p.NewReader(f[:n])
				for _, key := range keys {
					require.True(t, r.MayMatch(key))
				}
			}
		})
	}
}

// TestCorruptTrailer checks that filters whose trailer was altered are
// rejected rather than decoded with the wrong geometry.
func TestCorruptTrailer(t *testing.T) {
	keys := make([][]byte, 1000)
	for i := range keys {
		keys[i] = le32(i)
	}
	for _, mode := range []Mode{FastLocalBloom, LegacyBloom} {
		t.Run(mode.String(), func(t *testing.T) {
			p := newTestPolicy(t, 10, mode)
			f := buildFilter(t, p, nil, keys...)
			// Appending a cache line keeps the length valid for fast local
			// filters but not for legacy ones.
			extended := append(bytes.Clone(f[:len(f)-metadataLen]), make([]byte, cacheLineSize)...)
			extended = append(extended, f[len(f)-metadataLen:]...)
			info := DescribeFilter(extended)
			if mode == LegacyBloom {
				require.Equal(t, ReaderMalformed, info.Kind)
			} else {
				require.Equal(t, ReaderFastLocal, info.Kind)
			}

			// The fast local probe count follows the marker and the
			// sub-implementation.
			probesIdx := 0
			if mode == FastLocalBloom {
				probesIdx = 2
			}
			for _, numProbes := range []byte{0, maxLegacyProbes + 1} {
				corrupt := bytes.Clone(f)
				corrupt[len(corrupt)-metadataLen+probesIdx] = numProbes
				require.Equal(t, ReaderMalformed, DescribeFilter(corrupt).Kind)
				r := p.NewReader(corrupt)
				for _, key := range keys[:10] {
					require.True(t, r.MayMatch(key))
				}
			}
		})
	}
}

// TestTrailerOnlyFilter checks that a filter with no bits is only read as
// empty, matching nothing, when its trailer is one a builder could write.
func TestTrailerOnlyFilter(t *testing.T) {
	p := newTestPolicy(t, 10, Auto)
	for _, tc := range []struct {
		trailer []byte
		kind    ReaderKind
	}{
		{[]byte{0x06, 0, 0, 0, 0}, ReaderEmpty},
		{[]byte{0xff, 0, 0x07, 0, 0}, ReaderEmpty},
		{[]byte{0x00, 0, 0, 0, 0}, ReaderMalformed},
		{[]byte{0xc8, 0, 0, 0, 0}, ReaderMalformed},
		{[]byte{0xff, 0, 0x00, 0, 0}, ReaderMalformed},
		{[]byte{0xff, 0, 0xc8, 0, 0}, ReaderMalformed},
		{[]byte{0xff, 0, 0x07, 0, 0x55}, ReaderMalformed},
	} {
		t.Run(fmt.Sprintf("%x", tc.trailer), func(t *testing.T) {
			require.Equal(t, tc.kind, DescribeFilter(tc.trailer).Kind)
			require.Equal(t, tc.kind == ReaderMalformed, p.NewReader(tc.trailer).MayMatch([]byte("foo")))
		})
	}
}

func TestMayMatchMulti(t *testing.T) {
	keys := make([][]byte, 300)
	for i := range keys {
		keys[i] = le32(i)
	}
	queries := make([][]byte, 0, 600)
	for i := range 600 {
		queries = append(queries, le32(i))
	}
	contents := map[string][]byte{
		"fast_local": buildFilter(t, newTestPolicy(t, 10, FastLocalBloom), nil, keys...),
		"legacy":     buildFilter(t, newTestPolicy(t, 10, LegacyBloom), nil, keys...),
		"empty":      buildFilter(t, newTestPolicy(t, 10, FastLocalBloom), nil),
		"malformed":  {1, 2, 3},
	}
	for name, f := range contents {
		t.Run(name, func(t *testing.T) {
			r := newTestPolicy(t, 10, Auto).NewReader(f)
			results := make([]bool, len(queries)+5)
			r.MayMatchMulti(queries, results)
			for i, q := range queries {
				require.Equal(t, r.MayMatch(q), results[i], "query %d", i)
			}
		})
	}
}
