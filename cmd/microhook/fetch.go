package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hextreeio/microhook/internal/fetch"
	"github.com/hextreeio/microhook/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <name-or-url>",
	Short: "Download a listing source for conversion",
	Long: `Fetch downloads a syscall listing from a named source or an explicit
http(s) URL. Known source names:

  qemu-master   linux-user/strace.list from the QEMU master branch
  qemu-stable   linux-user/strace.list from the current stable branch

The body is written to --output via a temporary file, so a failed fetch
never leaves a partial file behind. Transient HTTP failures (429, 502,
503, 504) are retried with backoff.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringP("output", "o", "strace.list", "destination path for the downloaded listing")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default from config, 60s)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	url, err := fetch.Resolve(args[0])
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("fetch.timeout")
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("fetch.user_agent"),
		},
		MaxRetries: viper.GetInt("fetch.max_retries"),
	}

	output, _ := cmd.Flags().GetString("output")
	client := &http.Client{Timeout: cfg.Timeout}

	n, err := fetch.Fetch(cmd.Context(), client, cfg, url, output)
	if err != nil {
		return err
	}
	fmt.Printf("fetched %s (%d bytes)\n", output, n)
	return nil
}
