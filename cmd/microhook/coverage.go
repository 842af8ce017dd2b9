// Copyright hextree.io, 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hextreeio/microhook/internal/coverage"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Summarize or merge DRCov coverage files",
	Long: `Coverage post-processes the DRCov version 2 files the microhook coverage
tracer writes: summary prints per-module block counts, merge unions
several runs into one file for visualization tools.`,
}

// --- summary subcommand ---

var coverageSummaryCmd = &cobra.Command{
	Use:   "summary <drcov-file>...",
	Short: "Print per-module coverage statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCoverageSummary,
}

func runCoverageSummary(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		f, err := readCoverage(path)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", path, f.Flavor)
		for _, s := range f.Summary() {
			fmt.Printf("  %-40s %6d blocks  %8d bytes  [0x%x, 0x%x)\n",
				s.Path, s.Blocks, s.Bytes, s.Low, s.High)
		}
	}
	return nil
}

// --- merge subcommand ---

var coverageMergeCmd = &cobra.Command{
	Use:   "merge <drcov-file>...",
	Short: "Union several coverage files into one",
	Long: `Merge deduplicates basic blocks across runs of the same binary and
unions coverage of different binaries into one module table. All inputs
must share the DRCov version and flavor.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCoverageMerge,
}

func runCoverageMerge(cmd *cobra.Command, args []string) error {
	files := make([]*coverage.File, 0, len(args))
	for _, path := range args {
		f, err := readCoverage(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	merged, err := coverage.Merge(files...)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	if err := coverage.Write(out, merged); err != nil {
		return err
	}
	fmt.Printf("merged %d file(s): %d modules, %d blocks -> %s\n",
		len(files), len(merged.Modules), len(merged.Blocks), outPath)
	return nil
}

func readCoverage(path string) (*coverage.File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	f, err := coverage.Read(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func init() {
	coverageMergeCmd.Flags().StringP("output", "o", "coverage.drcov", "destination for the merged file")

	coverageCmd.AddCommand(coverageSummaryCmd)
	coverageCmd.AddCommand(coverageMergeCmd)

	rootCmd.AddCommand(coverageCmd)
}
