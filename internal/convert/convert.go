// Copyright hextree.io, 2026. All rights reserved.

// Package convert reduces strace-style syscall listings to the two-field
// form the microhook syscall table includes.
// See docs/ARCHITECTURE § Conversion.
package convert

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ifdefRe matches a conditional-open line: the #ifdef keyword, whitespace,
// a single TARGET_NR_ guard, and nothing else but optional trailing
// whitespace. Other conditional forms (#if, #ifndef) never match.
var ifdefRe = regexp.MustCompile(`^#ifdef\s+(TARGET_NR_\w+)\s*$`)

// entryRe matches the head of a syscall struct literal inside a block body:
// an opening brace, any TARGET_NR_ token, a comma, and a non-empty quoted
// name. The token matched here is not required to equal the block's guard;
// Reduce emits the guard from the #ifdef line regardless.
var entryRe = regexp.MustCompile(`\{\s*TARGET_NR_\w+\s*,\s*"([^"]+)"`)

// Reduce transforms listing text in one forward pass over its lines.
//
// For every #ifdef guard line it emits that line unchanged, collects the
// following lines up to the closing #endif into a single space-joined
// buffer (so struct literals may span physical lines), and, when the
// buffer contains an entry, emits the reduced form
//
//	{ <guard>, "<name>"},
//
// followed by the #endif line unchanged. A block without a parseable entry
// degrades to its open and close lines; a block cut off by end of input is
// left unterminated. Everything outside guard blocks is dropped. The result
// always ends with exactly one trailing newline, so empty input reduces to
// "\n".
func Reduce(input string) string {
	lines := strings.Split(input, "\n")
	var out []string

	i := 0
	for i < len(lines) {
		m := ifdefRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		guard := m[1]
		out = append(out, lines[i])
		i++

		start := i
		for i < len(lines) && !isEndif(lines[i]) {
			i++
		}
		body := strings.Join(lines[start:i], " ")

		if em := entryRe.FindStringSubmatch(body); em != nil {
			out = append(out, fmt.Sprintf("{ %s, \"%s\"},", guard, em[1]))
		}

		if i < len(lines) {
			out = append(out, lines[i])
			i++
		}
	}

	return strings.Join(out, "\n") + "\n"
}

// isEndif reports whether the line closes a block. Leading whitespace and
// anything after the keyword (trailing comments) are tolerated.
func isEndif(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#endif")
}

// Convert reads the listing at inputPath, reduces it, and writes the result
// to outputPath, creating or overwriting the file. The output string is
// built fully in memory and written in a single call, so a failed run never
// leaves partial content at outputPath.
func Convert(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	reduced := Reduce(string(data))

	if err := os.WriteFile(outputPath, []byte(reduced), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}
