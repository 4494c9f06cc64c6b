// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(hc *hashCollector) []uint64 {
	var res []uint64
	for blk := range hc.Blocks() {
		res = append(res, blk...)
	}
	return res
}

func TestHashCollector(t *testing.T) {
	var hc hashCollector
	hc.Init()
	require.Empty(t, collect(&hc))

	for _, n := range []int{1, hashChunkLen - 1, hashChunkLen, hashChunkLen + 1, 3*hashChunkLen + 17} {
		var want []uint64
		for i := range n {
			h := uint64(i) * 0x9e3779b97f4a7c15
			hc.Add(h)
			// Consecutive duplicates are dropped.
			hc.Add(h)
			want = append(want, h)
		}
		require.Equal(t, uint(n), hc.NumHashes())
		require.Equal(t, want, collect(&hc))

		hc.Reset()
		require.Zero(t, hc.NumHashes())
		require.Empty(t, collect(&hc))
	}
}

func TestHashCollectorZeroHash(t *testing.T) {
	var hc hashCollector
	hc.Init()
	// A zero first hash must not be mistaken for a duplicate.
	hc.Add(0)
	hc.Add(0)
	hc.Add(1)
	hc.Add(0)
	require.Equal(t, []uint64{0, 1, 0}, collect(&hc))
}

func TestHashCollectorDuplicates(t *testing.T) {
	var hc hashCollector
	hc.Init()
	// Only adjacent duplicates are dropped; a repeat after another hash is
	// kept.
	for _, h := range []uint64{5, 5, 5, 7, 5, 7, 7} {
		hc.Add(h)
	}
	require.Equal(t, []uint64{5, 7, 5, 7}, collect(&hc))
	require.Equal(t, uint(4), hc.NumHashes())
}

func TestHashCollectorLegacy(t *testing.T) {
	var hc hashCollector
	hc.Init()
	hc.AddLegacy(0xffffffff)
	hc.AddLegacy(0xffffffff)
	hc.AddLegacy(1)
	// Legacy hashes are zero-extended, and truncate back unchanged.
	require.Equal(t, []uint64{0xffffffff, 1}, collect(&hc))
	for _, h := range collect(&hc) {
		require.Equal(t, h, uint64(uint32(h)))
	}

	hc.Reset()
	require.Empty(t, hc.chunks)
	require.Empty(t, collect(&hc))
}

func TestHashCollectorEarlyStop(t *testing.T) {
	var hc hashCollector
	hc.Init()
	for i := range 2*hashChunkLen + 1 {
		hc.Add(uint64(i))
	}
	var lens []int
	for blk := range hc.Blocks() {
		lens = append(lens, len(blk))
		if len(lens) == 2 {
			break
		}
	}
	require.Equal(t, []int{hashChunkLen, hashChunkLen}, lens)
	hc.Reset()
}
