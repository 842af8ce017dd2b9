// Copyright hextree.io, 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/hextreeio/microhook/internal/listing"
	"github.com/hextreeio/microhook/pkg/types"
)

var tableCmd = &cobra.Command{
	Use:   "table <listing-path>",
	Short: "Print the syscall table a listing reduces to",
	Long: `Table parses a listing and prints the (guard, name) pairs conversion
would emit, in listing order. With --lookup it resolves a single syscall
name the way the runtime table lookup does: first match wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runTable,
}

func init() {
	tableCmd.Flags().String("lookup", "", "print only the first entry with this syscall name")
	tableCmd.Flags().String("format", "text", "output format: text, json, or yaml")

	rootCmd.AddCommand(tableCmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	blocks, err := listing.ParseFile(args[0])
	if err != nil {
		return err
	}

	if name, _ := cmd.Flags().GetString("lookup"); name != "" {
		entry, ok := listing.Lookup(blocks, name)
		if !ok {
			return fmt.Errorf("no entry named %q in %s", name, args[0])
		}
		return printEntries([]types.Entry{entry}, cmd)
	}

	return printEntries(listing.Entries(blocks), cmd)
}

func printEntries(entries []types.Entry, cmd *cobra.Command) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		for _, e := range entries {
			fmt.Printf("%-40s %s\n", e.Guard, e.Name)
		}
		fmt.Printf("\n%d entries\n", len(entries))
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}
