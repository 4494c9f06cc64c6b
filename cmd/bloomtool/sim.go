// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/fastbloom/bloom"
	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var simConfig struct {
	bitsPerKey    string
	mode          string
	formatVersion uint32
	keys          int
	runs          int
	queriesPerKey int
	seed          uint64
	plot          bool
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "simulate the false positive rate of Bloom filters",
	Long: `
Builds filters from random keys for each requested bits-per-key value and
measures their false positive rate against keys that were not added. The
measured rate is printed next to the builder's analytic estimate.
`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	simCmd.Flags().StringVar(
		&simConfig.bitsPerKey, "bits-per-key", "1-20",
		"bits per key values: a single value, a comma separated list, or an integer range lo-hi")
	simCmd.Flags().StringVar(
		&simConfig.mode, "mode", bloom.Auto.String(),
		"filter policy mode (legacy, fast_local, auto)")
	simCmd.Flags().Uint32Var(
		&simConfig.formatVersion, "format-version", 0,
		"table format version passed in the building context (0 means latest)")
	simCmd.Flags().IntVar(
		&simConfig.keys, "keys", 10000, "average number of keys per filter")
	simCmd.Flags().IntVar(
		&simConfig.runs, "runs", 20, "number of filters to build per bits-per-key value")
	simCmd.Flags().IntVar(
		&simConfig.queriesPerKey, "queries", 10, "number of absent-key queries per added key")
	simCmd.Flags().Uint64Var(
		&simConfig.seed, "seed", 1, "random seed")
	simCmd.Flags().BoolVar(
		&simConfig.plot, "plot", false, "plot the simulated false positive rate")
}

func runSim(cmd *cobra.Command, args []string) error {
	values, err := parseBitsPerKeyList(simConfig.bitsPerKey)
	if err != nil {
		return err
	}
	mode, err := bloom.ParseMode(simConfig.mode)
	if err != nil {
		return err
	}
	ctx := &base.FilterBuildingContext{
		FormatVersion: base.TableFormatVersion(simConfig.formatVersion),
		Logger:        base.DefaultLogger{},
	}

	out := cmd.OutOrStdout()
	tbl := tablewriter.NewWriter(out)
	tbl.SetHeader([]string{"Bits/key", "Probes", "Bytes/key", "Estimated FPR", "Simulated FPR"})
	tbl.SetAlignment(tablewriter.ALIGN_RIGHT)

	plotValues := make([]float64, 0, len(values))
	for _, bpk := range values {
		p, err := bloom.NewPolicy(bpk, mode)
		if err != nil {
			return err
		}
		res, err := bloom.SimulateFPR(p, ctx, simConfig.keys, simConfig.runs, simConfig.queriesPerKey, simConfig.seed)
		if err != nil {
			return err
		}
		tbl.Append([]string{
			strconv.FormatFloat(bpk, 'f', -1, 64),
			strconv.Itoa(res.NumProbes),
			fmt.Sprintf("%.2f", res.BytesPerKey),
			bloom.FormatFPR(res.EstimatedFPR),
			res.String(),
		})
		plotValues = append(plotValues, res.Mean*100)
	}
	tbl.Render()

	if simConfig.plot && len(plotValues) > 1 {
		writePlot(out, plotValues)
	}
	return nil
}

func writePlot(w io.Writer, fprPercent []float64) {
	graph := asciigraph.Plot(fprPercent,
		asciigraph.Height(12),
		asciigraph.Caption("simulated false positive rate (%) by bits-per-key value"))
	fmt.Fprintf(w, "\n%s\n", graph)
}

// parseBitsPerKeyList parses "10", "8,9.5,12" or "1-20".
func parseBitsPerKeyList(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if lo, hi, ok := strings.Cut(s, "-"); ok && lo != "" {
		from, err1 := strconv.Atoi(strings.TrimSpace(lo))
		to, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err := errors.CombineErrors(err1, err2); err != nil {
			return nil, errors.Wrapf(err, "invalid bits-per-key range %q", s)
		}
		if from > to || from < 0 {
			return nil, errors.Newf("invalid bits-per-key range %q", s)
		}
		values := make([]float64, 0, to-from+1)
		for v := from; v <= to; v++ {
			values = append(values, float64(v))
		}
		return values, nil
	}
	var values []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid bits-per-key value %q", f)
		}
		values = append(values, v)
	}
	return values, nil
}
