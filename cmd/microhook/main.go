// Copyright hextree.io, 2026. All rights reserved.

// Package main is the entry point for the microhook CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the microhook CLI.
var rootCmd = &cobra.Command{
	Use:   "microhook",
	Short: "Tooling for the microhook syscall listing and coverage files",
	Long: `microhook maintains the reduced syscall listing consumed by the microhook
syscall-hooking subsystem and post-processes the DRCov coverage files it
emits.

The core operation is convert, which reduces a strace-style listing to
guarded { nr, "name" } pairs. The surrounding commands fetch listing
sources, inspect listings for structural problems, keep an importable
registry of their entries, and summarize or merge coverage files.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./microhook.yaml or ~/.config/microhook/microhook.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("microhook")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "microhook"))
		}
	}

	viper.SetEnvPrefix("MICROHOOK")
	viper.AutomaticEnv()

	viper.SetDefault("registry.path", "microhook.db")
	viper.SetDefault("fetch.user_agent", "microhook/"+version)
	viper.SetDefault("fetch.timeout", "60s")
	viper.SetDefault("fetch.max_retries", 4)
	viper.SetDefault("log.level", "warn")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		log.SetLevel(log.DebugLevel)
	} else if level, err := log.ParseLevel(viper.GetString("log.level")); err == nil {
		log.SetLevel(level)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
