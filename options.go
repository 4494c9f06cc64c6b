// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fastbloom

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/fastbloom/bloom"
	"github.com/cockroachdb/fastbloom/internal/base"
)

// NewBloomFilterPolicy returns the built-in Bloom filter policy with the given
// number of bits per key. A good value is 10, which yields a filter with ~1%
// false positive rate.
//
// With useBlockBasedBuilder the policy produces the deprecated per-data-block
// filters (see bloom.Policy.BlockBased); otherwise it picks the best filter
// implementation the table format version allows.
func NewBloomFilterPolicy(bitsPerKey float64, useBlockBasedBuilder bool) (*bloom.Policy, error) {
	mode := bloom.Auto
	if useBlockBasedBuilder {
		mode = bloom.DeprecatedBlockBased
	}
	return bloom.NewPolicy(bitsPerKey, mode)
}

// ParseFilterPolicy parses a filter policy from its configuration string. The
// accepted forms are:
//
//	none                                          no filter (nil policy)
//	rocksdb.BuiltinBloomFilter                    10 bits/key, auto mode
//	bloom(<bits>)                                 auto mode
//	bloomfilter:<bits>[:<use_block_based_builder>]
//	bloomfilter:<bits>:<mode>                     mode is one of legacy,
//	                                              block_based, fast_local, auto
func ParseFilterPolicy(s string) (*bloom.Policy, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "none" || s == "nullptr":
		return nil, nil

	case s == bloom.Family:
		return NewBloomFilterPolicy(10, false)

	case strings.HasPrefix(s, "bloom(") && strings.HasSuffix(s, ")"):
		bitsPerKey, err := parseBitsPerKey(s[len("bloom(") : len(s)-1])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing filter policy %q", s)
		}
		return NewBloomFilterPolicy(bitsPerKey, false)

	case strings.HasPrefix(s, "bloomfilter:"):
		parts := strings.Split(s[len("bloomfilter:"):], ":")
		if len(parts) > 2 {
			return nil, base.InvalidFilterPolicyf("parsing filter policy %q: too many fields", s)
		}
		bitsPerKey, err := parseBitsPerKey(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing filter policy %q", s)
		}
		if len(parts) == 1 {
			return NewBloomFilterPolicy(bitsPerKey, false)
		}
		if useBlockBased, err := strconv.ParseBool(parts[1]); err == nil {
			return NewBloomFilterPolicy(bitsPerKey, useBlockBased)
		}
		mode, err := bloom.ParseMode(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing filter policy %q", s)
		}
		return bloom.NewPolicy(bitsPerKey, mode)

	default:
		return nil, base.InvalidFilterPolicyf("unknown filter policy %q", s)
	}
}

func parseBitsPerKey(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, base.MarkInvalidFilterPolicy(errors.Wrapf(err, "invalid bits per key %q", s))
	}
	return v, nil
}
