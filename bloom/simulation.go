// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/cockroachdb/fastbloom/internal/metricsutil"
	"golang.org/x/sync/errgroup"
)

// SimulationResult is the outcome of SimulateFPR.
type SimulationResult struct {
	// Mean and StdDev of the false positive rate across runs.
	Mean, StdDev float64
	// EstimatedFPR is the builder's analytic estimate for the average run.
	EstimatedFPR float64
	// NumProbes is the probe count of the built filters.
	NumProbes int
	// BytesPerKey is the average encoded size per key, trailer included.
	BytesPerKey float64
}

// String formats the simulated rate as "mean ± stddev".
// The deviation is relative to the mean.
func (r SimulationResult) String() string {
	if r.Mean <= 0 {
		return FormatFPR(r.Mean)
	}
	return fmt.Sprintf("%s ± %s%%", FormatFPR(r.Mean), crhumanize.Float(r.StdDev*100/r.Mean, 1))
}

// SimulateFPR measures the false positive rate of the filters p builds in
// ctx. Each of numRuns runs builds a filter from about numKeys random keys and
// queries it with queriesPerKey*numKeys keys that were not added. Runs are
// spread over GOMAXPROCS goroutines.
func SimulateFPR(
	p *Policy, ctx *base.FilterBuildingContext, numKeys, numRuns, queriesPerKey int, seed uint64,
) (SimulationResult, error) {
	if numKeys < 10 || numRuns < 1 || queriesPerKey < 1 {
		return SimulationResult{}, errors.Newf(
			"bloom: invalid simulation parameters: %d keys, %d runs, %d queries per key",
			errors.Safe(numKeys), errors.Safe(numRuns), errors.Safe(queriesPerKey))
	}
	if !p.buildsFilters(ctx) {
		return SimulationResult{}, errors.Newf("bloom: %s builds no filters in this context", p)
	}

	var mu sync.Mutex
	var fpr, estimated metricsutil.Welford
	// Weighted by key count, so the mean is total bytes over total keys.
	var bytesPerKey metricsutil.WeightedWelford
	var numProbes int

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for run := range numRuns {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(run)))
			size := numKeys - numKeys/10 + rng.IntN(numKeys*2/10)

			b, _ := p.NewBuilder(ctx)
			// Keys are 8-byte values; added keys have the top bit clear and
			// queried keys have it set, so the two sets are disjoint.
			var key [8]byte
			for range size {
				binary.LittleEndian.PutUint64(key[:], rng.Uint64()>>1)
				b.AddKey(key[:])
			}
			added := b.NumAdded()
			filter := b.Finish()
			r := p.NewReader(filter)

			queries := queriesPerKey * size
			positives := 0
			for range queries {
				binary.LittleEndian.PutUint64(key[:], rng.Uint64()|1<<63)
				if r.MayMatch(key[:]) {
					positives++
				}
			}

			mu.Lock()
			defer mu.Unlock()
			fpr.Add(float64(positives) / float64(queries))
			estimated.Add(b.EstimatedFpRate(added, len(filter)))
			bytesPerKey.Add(float64(len(filter))/float64(size), uint64(size))
			numProbes = DescribeFilter(filter).NumProbes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SimulationResult{}, err
	}
	return SimulationResult{
		Mean:         fpr.Mean(),
		StdDev:       fpr.StdDev(),
		EstimatedFPR: estimated.Mean(),
		NumProbes:    numProbes,
		BytesPerKey:  bytesPerKey.Mean(),
	}, nil
}

// FormatFPR formats a false positive rate as a percentage with "1 in N" ratio.
func FormatFPR(fpr float64) string {
	if fpr <= 0 {
		return "0%"
	}
	ratio := int(math.Round(1.0 / fpr))
	switch {
	case fpr >= 0.1:
		return fmt.Sprintf("%.0f%% (1 in %d)", fpr*100, ratio)
	case fpr >= 0.01:
		return fmt.Sprintf("%.1f%% (1 in %d)", fpr*100, ratio)
	case fpr >= 0.001:
		return fmt.Sprintf("%.2f%% (1 in %d)", fpr*100, ratio)
	default:
		return fmt.Sprintf("%.3f%% (1 in %d)", fpr*100, ratio)
	}
}
