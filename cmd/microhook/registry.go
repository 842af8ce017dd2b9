// Copyright hextree.io, 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hextreeio/microhook/internal/registry"
	"github.com/hextreeio/microhook/pkg/types"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the syscall registry (import, lookup, list, export)",
	Long: `Registry keeps parsed listing entries in a local SQLite database so
syscall names and guards can be looked up across listings without
re-parsing them. Re-importing a listing path replaces its entries.`,
}

// --- import subcommand ---

var registryImportCmd = &cobra.Command{
	Use:   "import <listing-path>...",
	Short: "Parse listings and store their entries",
	Long: `Import parses each listing and stores its (guard, name) entries.
Duplicate guards within a listing keep the first occurrence. Parser
findings are reported as counts; they never fail the import, mirroring
how conversion degrades over the same defects.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRegistryImport,
}

func runRegistryImport(cmd *cobra.Command, args []string) error {
	store, err := openRegistry()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, path := range args {
		summary, err := store.Import(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d imported, %d replaced, %d skipped, %d findings\n",
			path, summary.Imported, summary.Replaced, summary.Skipped, summary.Findings)
	}
	return nil
}

// --- lookup subcommand ---

var registryLookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Find every registry entry with a syscall name",
	Long: `Lookup prints all stored entries whose syscall name matches exactly.
The same name appears under different guards when listings for several
target architectures are imported.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegistryLookup,
}

func runRegistryLookup(cmd *cobra.Command, args []string) error {
	store, err := openRegistry()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.LookupName(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entry named %q in the registry", args[0])
	}
	printRegistryEntries(entries)
	return nil
}

// --- list subcommand ---

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registry entries with optional filters",
	RunE:  runRegistryList,
}

func runRegistryList(cmd *cobra.Command, args []string) error {
	store, err := openRegistry()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		printRegistryEntries(entries)
		return nil
	case "json":
		return registry.ExportJSON(os.Stdout, entries)
	case "yaml":
		return registry.ExportYAML(os.Stdout, entries)
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}

// --- export subcommand ---

var registryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the registry to JSON or YAML",
	Long: `Export writes the registry (or a filtered subset, using the same filter
flags as list) to a file or stdout.`,
	RunE: runRegistryExport,
}

func runRegistryExport(cmd *cobra.Command, args []string) error {
	store, err := openRegistry()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json", "":
		return registry.ExportJSON(out, entries)
	case "yaml":
		return registry.ExportYAML(out, entries)
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
}

// --- shared helpers ---

func openRegistry() (*registry.Store, error) {
	path := viper.GetString("registry.path")
	if flagPath, _ := registryCmd.PersistentFlags().GetString("db"); flagPath != "" {
		path = flagPath
	}
	return registry.Open(path)
}

func queryOptsFromFlags(cmd *cobra.Command) registry.QueryOptions {
	guardPrefix, _ := cmd.Flags().GetString("guard-prefix")
	name, _ := cmd.Flags().GetString("name")
	listingPath, _ := cmd.Flags().GetString("listing")
	limit, _ := cmd.Flags().GetInt("limit")

	return registry.QueryOptions{
		GuardPrefix: guardPrefix,
		Name:        name,
		Listing:     listingPath,
		Limit:       limit,
	}
}

func printRegistryEntries(entries []types.RegistryEntry) {
	for _, e := range entries {
		fmt.Printf("%-40s %-24s %s\n", e.Guard, e.Name, e.Listing)
	}
	fmt.Printf("\n%d entries\n", len(entries))
}

func init() {
	registryCmd.PersistentFlags().String("db", "", "registry database path (default from config, microhook.db)")

	for _, c := range []*cobra.Command{registryListCmd, registryExportCmd} {
		c.Flags().String("guard-prefix", "", "filter by guard prefix")
		c.Flags().String("name", "", "filter by exact syscall name")
		c.Flags().String("listing", "", "filter by source listing path")
		c.Flags().Int("limit", 0, "maximum entries (0 = default)")
	}
	registryListCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	registryExportCmd.Flags().String("format", "json", "export format: json or yaml")
	registryExportCmd.Flags().StringP("output", "o", "", "write to this path instead of stdout")

	registryCmd.AddCommand(registryImportCmd)
	registryCmd.AddCommand(registryLookupCmd)
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryExportCmd)

	rootCmd.AddCommand(registryCmd)
}
