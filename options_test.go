// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fastbloom

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/fastbloom/bloom"
	"github.com/stretchr/testify/require"
)

func TestParseFilterPolicy(t *testing.T) {
	testCases := []struct {
		s    string
		want string
	}{
		{"", "none"},
		{"none", "none"},
		{"nullptr", "none"},
		{"rocksdb.BuiltinBloomFilter", "bloom(auto, 10.000 bits/key)"},
		{"bloom(10)", "bloom(auto, 10.000 bits/key)"},
		{" bloom(9.5) ", "bloom(auto, 9.500 bits/key)"},
		{"bloomfilter:10", "bloom(auto, 10.000 bits/key)"},
		{"bloomfilter:10:false", "bloom(auto, 10.000 bits/key)"},
		{"bloomfilter:10:true", "bloom(block_based, 10.000 bits/key)"},
		{"bloomfilter:12.25:legacy", "bloom(legacy, 12.250 bits/key)"},
		{"bloomfilter:16:fast_local", "bloom(fast_local, 16.000 bits/key)"},
		{"bloomfilter:0", "bloom(auto, 0.000 bits/key)"},
		{"bloomfilter:250", "bloom(auto, 100.000 bits/key)"},
	}
	for _, tc := range testCases {
		t.Run(tc.s, func(t *testing.T) {
			p, err := ParseFilterPolicy(tc.s)
			require.NoError(t, err)
			if p == nil {
				require.Equal(t, tc.want, "none")
				return
			}
			require.Equal(t, tc.want, p.String())
			require.Equal(t, bloom.Family, p.Name())
		})
	}
}

func TestParseFilterPolicyErrors(t *testing.T) {
	for _, s := range []string{
		"bloom",
		"bloom()",
		"bloom(ten)",
		"bloom(-1)",
		"bloom(NaN)",
		"bloomfilter:",
		"bloomfilter:10:ribbon",
		"bloomfilter:10:true:1",
		"bloomfilter:inf",
		"ribbonfilter:10",
	} {
		t.Run(s, func(t *testing.T) {
			p, err := ParseFilterPolicy(s)
			require.Nil(t, p)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidFilterPolicy), "%v", err)
		})
	}
}

func TestNewBloomFilterPolicy(t *testing.T) {
	p, err := NewBloomFilterPolicy(10, false)
	require.NoError(t, err)
	require.Equal(t, bloom.Auto, p.Mode())

	p, err = NewBloomFilterPolicy(10, true)
	require.NoError(t, err)
	require.Equal(t, bloom.DeprecatedBlockBased, p.Mode())
	_, ok := p.BlockBased()
	require.True(t, ok)

	var fp FilterPolicy = p
	_, ok = fp.NewBuilder(&FilterBuildingContext{FormatVersion: FormatVersionLatest})
	require.False(t, ok)

	_, err = NewBloomFilterPolicy(-3, false)
	require.True(t, errors.Is(err, ErrInvalidFilterPolicy))
}
