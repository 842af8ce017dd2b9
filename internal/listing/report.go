// Copyright hextree.io, 2026. All rights reserved.

package listing

import (
	"fmt"
	"strings"

	"github.com/hextreeio/microhook/pkg/types"
)

// Report renders a Markdown inspection report for one listing.
func Report(path string, blocks []types.Block, findings []types.Finding) string {
	entries := Entries(blocks)

	var b strings.Builder
	fmt.Fprintf(&b, "# Listing report: %s\n\n", path)
	fmt.Fprintf(&b, "- blocks: %d\n", len(blocks))
	fmt.Fprintf(&b, "- entries: %d\n", len(entries))
	fmt.Fprintf(&b, "- findings: %d\n", len(findings))

	if len(findings) > 0 {
		fmt.Fprintf(&b, "\n## Findings\n\n")
		for _, f := range findings {
			fmt.Fprintf(&b, "- line %d: %s: %s\n", f.Line, f.Kind, f.Detail)
		}
	}

	if len(entries) > 0 {
		fmt.Fprintf(&b, "\n## Entries\n\n")
		fmt.Fprintf(&b, "| guard | name |\n")
		fmt.Fprintf(&b, "|-------|------|\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "| %s | %s |\n", e.Guard, e.Name)
		}
	}

	return b.String()
}
