// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/fastbloom"
	"github.com/cockroachdb/fastbloom/bloom"
	"github.com/cockroachdb/fastbloom/internal/base"
	"github.com/spf13/cobra"
)

var inspectConfig struct {
	hex        bool
	blockBased bool
	policy     string
	keys       []string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "describe an encoded filter block and optionally query it",
	Long: `
Reads an encoded filter block from a file ("-" for stdin), reports which
reader its trailer selects, and queries the keys given with --key through
the filter policy given with --policy. With --policy=none every key matches.
`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(
		&inspectConfig.hex, "hex", false, "the input is hex encoded")
	inspectCmd.Flags().BoolVar(
		&inspectConfig.blockBased, "block-based", false,
		"the input is a deprecated block-based filter")
	inspectCmd.Flags().StringVar(
		&inspectConfig.policy, "policy", bloom.Family,
		"filter policy used to query keys, as accepted in options")
	inspectCmd.Flags().StringArrayVar(
		&inspectConfig.keys, "key", nil, "key to query (may be repeated)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := readFilter(cmd.InOrStdin(), args[0], inspectConfig.hex)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Every mode reads every builder/reader encoding; the mode only matters
	// for building.
	p, err := fastbloom.ParseFilterPolicy(inspectConfig.policy)
	if err != nil {
		return err
	}
	var fp base.FilterPolicy
	if p != nil {
		fp = p
	}
	fmt.Fprintf(out, "family: %s\n", base.FilterPolicyName(fp))

	mayMatch := func([]byte) bool { return true }
	if inspectConfig.blockBased {
		fmt.Fprintf(out, "block-based: %d bytes\n", len(data))
		if p != nil {
			mayMatch = func(key []byte) bool { return p.KeyMayMatch(key, data) }
		}
	} else {
		fmt.Fprintf(out, "%s\n", bloom.DescribeFilter(data))
		if fp != nil {
			mayMatch = fp.NewReader(data).MayMatch
		}
	}
	for _, k := range inspectConfig.keys {
		fmt.Fprintf(out, "%q: %t\n", k, mayMatch([]byte(k)))
	}
	return nil
}

func readFilter(stdin io.Reader, path string, isHex bool) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if isHex {
		data, err = hex.DecodeString(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, errors.Wrap(err, "decoding hex input")
		}
	}
	return data, nil
}
