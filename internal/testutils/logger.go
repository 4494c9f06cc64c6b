// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package testutils

import (
	"fmt"
	"sync"
	"testing"
)

// Logger is a logger that writes to a testing.TB.
type Logger struct {
	T testing.TB
}

func (l Logger) Infof(format string, args ...interface{}) {
	l.T.Logf(format, args...)
}

func (l Logger) Errorf(format string, args ...interface{}) {
	l.T.Logf(format, args...)
}

func (l Logger) Fatalf(format string, args ...interface{}) {
	l.T.Helper()
	l.T.Fatalf(format, args...)
}

// RecordingLogger is a logger that keeps every message. It is safe for
// concurrent use.
type RecordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *RecordingLogger) record(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func (l *RecordingLogger) Infof(format string, args ...interface{}) {
	l.record(format, args...)
}

func (l *RecordingLogger) Errorf(format string, args ...interface{}) {
	l.record(format, args...)
}

func (l *RecordingLogger) Fatalf(format string, args ...interface{}) {
	l.record(format, args...)
	panic(fmt.Sprintf(format, args...))
}

// Messages returns a copy of the recorded messages.
func (l *RecordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}
