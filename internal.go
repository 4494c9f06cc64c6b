// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fastbloom

import "github.com/cockroachdb/fastbloom/internal/base"

// FilterPolicy exports the base.FilterPolicy type.
type FilterPolicy = base.FilterPolicy

// FilterBitsBuilder exports the base.FilterBitsBuilder type.
type FilterBitsBuilder = base.FilterBitsBuilder

// FilterBitsReader exports the base.FilterBitsReader type.
type FilterBitsReader = base.FilterBitsReader

// BlockBasedFilterPolicy exports the base.BlockBasedFilterPolicy type.
type BlockBasedFilterPolicy = base.BlockBasedFilterPolicy

// FilterBuildingContext exports the base.FilterBuildingContext type.
type FilterBuildingContext = base.FilterBuildingContext

// TableFormatVersion exports the base.TableFormatVersion type.
type TableFormatVersion = base.TableFormatVersion

// These constants name the table format versions relevant to filters.
const (
	FormatVersionUnspecified    = base.FormatVersionUnspecified
	FormatVersionFastLocalBloom = base.FormatVersionFastLocalBloom
	FormatVersionLatest         = base.FormatVersionLatest
)

// Logger exports the base.Logger type.
type Logger = base.Logger

// DefaultLogger exports the base.DefaultLogger type.
type DefaultLogger = base.DefaultLogger

// ErrInvalidFilterPolicy is the marker of filter policy configuration errors.
// Use errors.Is to test for it.
var ErrInvalidFilterPolicy = base.ErrInvalidFilterPolicy
