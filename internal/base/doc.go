// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package base defines the contracts shared by filter implementations and
// their callers: the builder and reader interfaces, the filter policy, the
// per-build context supplied by the table writer, and logging.
//
// # Builders and readers
//
// A [FilterBitsBuilder] turns a stream of keys into an encoded filter block.
// The block is persisted by the table layer and later handed to
// [FilterPolicy.NewReader], which inspects the block's trailer to find the
// implementation that wrote it. The builder and reader never share state
// other than the encoded bytes.
//
// Readers must never report a false negative for a well-formed block. For a
// block they cannot decode they fail open: every query returns true so that
// the caller falls through to an authoritative lookup.
//
// # Block-based filters
//
// [BlockBasedFilterPolicy] is a separate, optional capability for the
// deprecated per-data-block filters. Its encodings are unrelated to the
// builder/reader encodings.
package base
