package main

import (
	"github.com/spf13/cobra"

	"github.com/hextreeio/microhook/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input-path> <output-path>",
	Short: "Reduce a strace-style listing to guarded { nr, \"name\" } pairs",
	Long: `Convert reads a strace-style syscall listing and writes a reduced copy
keeping only the #ifdef guard lines and a two-field { guard, "name" } entry
per block. All other struct fields are dropped. Blocks without a parseable
entry keep their guard pair; everything outside guard blocks is dropped.

The output file is created or overwritten and always ends with a single
trailing newline. On success nothing is printed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return convert.Convert(args[0], args[1])
	},
}

func init() {
	// Deliberately no flags and no configuration: the conversion contract
	// is the two positional paths and nothing else.
	rootCmd.AddCommand(convertCmd)
}
