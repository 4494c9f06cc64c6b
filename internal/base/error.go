// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// ErrInvalidFilterPolicy is the marker for errors returned when a filter
// policy is configured with invalid parameters.
var ErrInvalidFilterPolicy = errors.New("fastbloom: invalid filter policy")

// MarkInvalidFilterPolicy marks err as a filter policy configuration error.
func MarkInvalidFilterPolicy(err error) error {
	return errors.Mark(err, ErrInvalidFilterPolicy)
}

// InvalidFilterPolicyf formats an error and marks it as a filter policy
// configuration error.
func InvalidFilterPolicyf(format string, args ...interface{}) error {
	return MarkInvalidFilterPolicy(errors.Newf(format, args...))
}
