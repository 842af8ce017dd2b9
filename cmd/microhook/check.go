// Copyright hextree.io, 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hextreeio/microhook/internal/listing"
)

var checkCmd = &cobra.Command{
	Use:   "check <listing-path>",
	Short: "Inspect a listing for problems conversion would silently degrade over",
	Long: `Check parses a listing with the same block grammar conversion uses and
reports what conversion would silently tolerate: unterminated blocks,
blocks without a parseable entry, empty quoted names, guards opening more
than one block, and struct bodies whose first token differs from the
#ifdef guard (conversion substitutes the guard in that case).

The exit code is 0 for a clean listing and 1 when findings exist, so check
can gate CI on listing quality.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "output the check result as JSON")
	checkCmd.Flags().String("report", "", "write a Markdown report to this path")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	blocks, err := listing.ParseFile(path)
	if err != nil {
		return err
	}
	findings := listing.Check(blocks)
	result := listing.NewCheckResult(path, blocks, findings)

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		report := listing.Report(path, blocks, findings)
		if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
			return fmt.Errorf("writing report %s: %w", reportPath, err)
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			fmt.Printf("%s:%d: %s: %s\n", path, f.Line, f.Kind, f.Detail)
		}
		fmt.Printf("%s: %d blocks, %d entries, %d findings\n",
			path, result.Blocks, result.Entries, len(findings))
	}

	if !result.Clean() {
		// Findings are program output, not errors, but they flip the exit
		// code so CI can gate on them.
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return fmt.Errorf("%d finding(s) in %s", len(findings), path)
	}
	return nil
}
