// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import "math"

// standardFpRate is the textbook Bloom filter false positive rate
// (1 - e^(-k/b))^k for b bits per key and k probes.
func standardFpRate(bitsPerKey float64, numProbes int) float64 {
	if bitsPerKey <= 0 {
		return 1
	}
	k := float64(numProbes)
	return math.Pow(1-math.Exp(-k/bitsPerKey), k)
}

// cacheLocalFpRate adjusts standardFpRate for filters that confine every key
// to one cache line. Lines are unevenly loaded, which raises the rate; it is
// estimated as the average of the rates at one standard deviation above and
// below the mean number of keys per line.
func cacheLocalFpRate(bitsPerKey float64, numProbes int, lineBits int) float64 {
	if bitsPerKey <= 0 {
		return 1
	}
	keysPerLine := float64(lineBits) / bitsPerKey
	stddev := math.Sqrt(keysPerLine)
	crowded := standardFpRate(float64(lineBits)/(keysPerLine+stddev), numProbes)
	var uncrowded float64
	if keysPerLine > stddev {
		uncrowded = standardFpRate(float64(lineBits)/(keysPerLine-stddev), numProbes)
	}
	return (crowded + uncrowded) / 2
}

// fingerprintFpRate is the probability that a query collides with one of
// numKeys hashes of fingerprintBits bits.
func fingerprintFpRate(numKeys int, fingerprintBits int) float64 {
	base := float64(numKeys) * math.Ldexp(1, -fingerprintBits)
	if base > 0.0001 {
		return 1 - math.Exp(-base)
	}
	// Subtract the chance that two of the keys share a hash.
	return base - base*base*0.5
}

// independentProbabilitySum combines the rates of two independent sources of
// false positives.
func independentProbabilitySum(rate1, rate2 float64) float64 {
	return rate1 + rate2 - rate1*rate2
}

func clampProbability(p float64) float64 {
	return min(max(p, 0), 1)
}
