// Copyright hextree.io, 2026. All rights reserved.

// Package fetch downloads syscall listing sources over HTTP.
// See docs/ARCHITECTURE § Fetch.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hextreeio/microhook/internal/httputil"
	"github.com/hextreeio/microhook/pkg/types"
)

// ErrUnknownSource is returned by Resolve for an argument that is neither a
// known source name nor an absolute http(s) URL.
var ErrUnknownSource = errors.New("unknown listing source")

// Sources maps short source names to listing URLs. The strace.list shipped
// with QEMU is the canonical input for conversion.
var Sources = map[string]string{
	"qemu-master": "https://gitlab.com/qemu-project/qemu/-/raw/master/linux-user/strace.list",
	"qemu-stable": "https://gitlab.com/qemu-project/qemu/-/raw/stable-9.2/linux-user/strace.list",
}

// Resolve turns a source name or URL argument into a fetchable URL. Known
// names resolve through Sources; anything that parses as an absolute
// http(s) URL passes through unchanged.
func Resolve(nameOrURL string) (string, error) {
	if u, ok := Sources[nameOrURL]; ok {
		return u, nil
	}
	if u, err := url.Parse(nameOrURL); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return nameOrURL, nil
	}
	return "", fmt.Errorf("%w: %q (known names: %s)", ErrUnknownSource, nameOrURL, sourceNames())
}

func sourceNames() string {
	names := make([]string, 0, len(Sources))
	for name := range Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Fetch downloads rawURL to destPath and returns the number of bytes
// written. The body lands in a temporary file next to destPath and is
// renamed into place only on success, so a failed fetch never leaves a
// partial destination file. Transient HTTP failures are retried per
// httputil.DoWithRetry.
func Fetch(ctx context.Context, client *http.Client, cfg types.FetchConfig, rawURL, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	log.Debugf("fetching %s", rawURL)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}
