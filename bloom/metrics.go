// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds counters for filter policy events. They are updated when
// builders and readers are created, never on the query path. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	// BuildersCreated counts builders by implementation ("fast_local",
	// "legacy").
	BuildersCreated *prometheus.CounterVec
	// BuildersNotApplicable counts NewBuilder calls that returned no builder.
	BuildersNotApplicable prometheus.Counter
	// ReadersCreated counts readers by ReaderKind.
	ReadersCreated *prometheus.CounterVec
	// LegacyFallbacks counts Auto mode builds that fell back to the legacy
	// implementation, including those whose warning was suppressed.
	LegacyFallbacks prometheus.Counter
}

// NewMetrics creates the filter metrics and registers them with reg, if reg
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	const namespace, subsystem = "fastbloom", "filter"
	m := &Metrics{
		BuildersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "builders_created_total",
			Help:      "Number of filter builders created, by implementation.",
		}, []string{"impl"}),
		BuildersNotApplicable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "builders_not_applicable_total",
			Help:      "Number of builder requests for which the policy builds no filter.",
		}),
		ReadersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "readers_created_total",
			Help:      "Number of filter readers created, by decoded filter kind.",
		}, []string{"kind"}),
		LegacyFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "legacy_fallbacks_total",
			Help:      "Number of automatic-mode builds that used the legacy filter for an old format version.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.BuildersCreated, m.BuildersNotApplicable, m.ReadersCreated, m.LegacyFallbacks)
	}
	return m
}

func (m *Metrics) builderCreated(im impl) {
	if m != nil {
		m.BuildersCreated.WithLabelValues(im.String()).Inc()
	}
}

func (m *Metrics) builderNotApplicable() {
	if m != nil {
		m.BuildersNotApplicable.Inc()
	}
}

func (m *Metrics) readerCreated(kind ReaderKind) {
	if m != nil {
		m.ReadersCreated.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) legacyFallback() {
	if m != nil {
		m.LegacyFallbacks.Inc()
	}
}
