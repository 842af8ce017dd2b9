// Copyright hextree.io, 2026. All rights reserved.

// Package listing parses strace-style syscall listings into guarded blocks
// and reports the structural problems conversion degrades over silently.
// See docs/ARCHITECTURE § Listing Inspection.
package listing

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hextreeio/microhook/pkg/types"
)

// openPattern matches a block-opening line: #ifdef followed by a guard
// symbol, with nothing but optional whitespace after it.
var openPattern = regexp.MustCompile(`^#ifdef\s+(TARGET_NR_\w+)\s*$`)

// entryPattern matches the entry shape inside a joined block body. It
// captures the body's own guard token and the quoted syscall name.
var entryPattern = regexp.MustCompile(`\{\s*(TARGET_NR_\w+)\s*,\s*"([^"]+)"`)

// emptyNamePattern matches an entry whose quoted name is empty. Such an
// entry is invisible to entryPattern, so conversion drops it.
var emptyNamePattern = regexp.MustCompile(`\{\s*TARGET_NR_\w+\s*,\s*""`)

// Parse scans a listing and returns its guarded blocks in source order.
// The scan mirrors conversion exactly: lines outside blocks are ignored,
// and a block runs from its #ifdef line to the next line whose trimmed
// form starts with #endif.
func Parse(input string) []types.Block {
	lines := strings.Split(input, "\n")
	var blocks []types.Block
	i := 0
	for i < len(lines) {
		m := openPattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}

		b := types.Block{
			Guard:    m[1],
			OpenLine: i + 1,
		}
		i++

		start := i
		for i < len(lines) && !isClose(lines[i]) {
			i++
		}
		b.Body = strings.Join(lines[start:i], " ")

		if em := entryPattern.FindStringSubmatch(b.Body); em != nil {
			b.BodyGuard = em[1]
			b.Name = em[2]
			b.HasEntry = true
		}
		if i < len(lines) {
			b.CloseLine = i + 1
			b.Terminated = true
			i++
		}

		blocks = append(blocks, b)
	}
	return blocks
}

// ParseFile reads a listing file and parses it.
func ParseFile(path string) ([]types.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading listing %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// isClose returns true if the line closes a block.
func isClose(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#endif")
}

// Check inspects parsed blocks and returns diagnostics in block order.
// Every finding points at the line the block opened on.
func Check(blocks []types.Block) []types.Finding {
	var findings []types.Finding
	firstOpen := make(map[string]int)

	for _, b := range blocks {
		if first, ok := firstOpen[b.Guard]; ok {
			findings = append(findings, types.Finding{
				Line:   b.OpenLine,
				Kind:   types.FindingDuplicateGuard,
				Detail: fmt.Sprintf("%s already opened a block on line %d", b.Guard, first),
			})
		} else {
			firstOpen[b.Guard] = b.OpenLine
		}

		if !b.Terminated {
			findings = append(findings, types.Finding{
				Line:   b.OpenLine,
				Kind:   types.FindingUnterminated,
				Detail: fmt.Sprintf("%s is never closed", b.Guard),
			})
		}

		switch {
		case b.HasEntry && b.BodyGuard != b.Guard:
			findings = append(findings, types.Finding{
				Line:   b.OpenLine,
				Kind:   types.FindingGuardMismatch,
				Detail: fmt.Sprintf("body names %s but the reduced entry will use %s", b.BodyGuard, b.Guard),
			})
		case !b.HasEntry && emptyNamePattern.MatchString(b.Body):
			findings = append(findings, types.Finding{
				Line:   b.OpenLine,
				Kind:   types.FindingEmptyName,
				Detail: fmt.Sprintf("%s quotes an empty syscall name", b.Guard),
			})
		case !b.HasEntry:
			findings = append(findings, types.Finding{
				Line:   b.OpenLine,
				Kind:   types.FindingMissingEntry,
				Detail: fmt.Sprintf("%s contains no syscall entry", b.Guard),
			})
		}
	}
	return findings
}

// Entries returns the (guard, name) pairs conversion would emit for the
// blocks, in listing order. The #ifdef guard wins over the body token.
func Entries(blocks []types.Block) []types.Entry {
	var entries []types.Entry
	for _, b := range blocks {
		if b.HasEntry {
			entries = append(entries, types.Entry{Guard: b.Guard, Name: b.Name})
		}
	}
	return entries
}

// Lookup returns the first entry whose name matches, the way the runtime
// table lookup walks the array front to back.
func Lookup(blocks []types.Block, name string) (types.Entry, bool) {
	for _, b := range blocks {
		if b.HasEntry && b.Name == name {
			return types.Entry{Guard: b.Guard, Name: b.Name}, true
		}
	}
	return types.Entry{}, false
}

// CheckResult is the serializable outcome of inspecting one listing.
type CheckResult struct {
	Path     string          `json:"path" yaml:"path"`
	Blocks   int             `json:"blocks" yaml:"blocks"`
	Entries  int             `json:"entries" yaml:"entries"`
	Findings []types.Finding `json:"findings" yaml:"findings"`
}

// NewCheckResult assembles a CheckResult from a parsed listing.
func NewCheckResult(path string, blocks []types.Block, findings []types.Finding) CheckResult {
	return CheckResult{
		Path:     path,
		Blocks:   len(blocks),
		Entries:  len(Entries(blocks)),
		Findings: findings,
	}
}

// Clean reports whether the listing produced no diagnostics.
func (r CheckResult) Clean() bool {
	return len(r.Findings) == 0
}
