// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package fastbloom provides the built-in Bloom filter policy of an LSM
// storage engine's table format: builders that encode the keys of a filter
// block, readers that query encoded blocks, and the policy that decides which
// encoding a block gets.
//
// Policies are usually created from configuration strings:
//
//	p, err := fastbloom.ParseFilterPolicy("bloomfilter:10")
//	...
//	b, ok := p.NewBuilder(&fastbloom.FilterBuildingContext{FormatVersion: 5})
//	if ok {
//		for _, k := range keys {
//			b.AddKey(k)
//		}
//		block := b.Finish()
//		r := p.NewReader(block)
//		_ = r.MayMatch(k)
//	}
//
// Readers never reject a key unless the filter proves it absent; filters that
// cannot be decoded match everything.
package fastbloom
