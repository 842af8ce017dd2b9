// Copyright hextree.io, 2026. All rights reserved.

// Package coverage reads and writes the DRCov version 2 files the microhook
// coverage tracer emits, and derives summaries from them.
// See docs/ARCHITECTURE § Coverage.
package coverage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Module is one row of the DRCov module table. The tracer writes a single
// module covering the traced binary's code range.
type Module struct {
	ID    int    `json:"id" yaml:"id"`
	Base  uint64 `json:"base" yaml:"base"`
	End   uint64 `json:"end" yaml:"end"`
	Entry uint64 `json:"entry" yaml:"entry"`
	Path  string `json:"path" yaml:"path"`
}

// BasicBlock is one executed block, as an offset into its module. The
// on-disk form is a packed 8-byte little-endian record.
type BasicBlock struct {
	Start    uint32 `json:"start" yaml:"start"`
	Size     uint16 `json:"size" yaml:"size"`
	ModuleID uint16 `json:"module_id" yaml:"module_id"`
}

// File is a parsed DRCov coverage file.
type File struct {
	Version int          `json:"version" yaml:"version"`
	Flavor  string       `json:"flavor" yaml:"flavor"`
	Modules []Module     `json:"modules" yaml:"modules"`
	Blocks  []BasicBlock `json:"blocks" yaml:"blocks"`
}

// moduleTableRe matches both module table headers: the version 2 form
// "Module Table: version 2, count N" and the legacy "Module Table: N".
var moduleTableRe = regexp.MustCompile(`^Module Table: (?:version (\d+), count )?(\d+)$`)

// bbTableRe matches the basic-block table header "BB Table: N bbs".
var bbTableRe = regexp.MustCompile(`^BB Table: (\d+) bbs$`)

// Read parses a DRCov version 2 file: the text header, the module table,
// and the packed basic-block records that follow.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	f := &File{}

	line, err := headerLine(br)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Sscanf(line, "DRCOV VERSION: %d", &f.Version); err != nil {
		return nil, fmt.Errorf("malformed version header %q", line)
	}
	if f.Version != 2 {
		return nil, fmt.Errorf("unsupported DRCov version %d", f.Version)
	}

	line, err = headerLine(br)
	if err != nil {
		return nil, err
	}
	flavor, ok := strings.CutPrefix(line, "DRCOV FLAVOR: ")
	if !ok {
		return nil, fmt.Errorf("malformed flavor header %q", line)
	}
	f.Flavor = flavor

	line, err = headerLine(br)
	if err != nil {
		return nil, err
	}
	m := moduleTableRe.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("malformed module table header %q", line)
	}
	moduleCount, _ := strconv.Atoi(m[2])

	// The version 2 table form carries a Columns line before the rows.
	if m[1] != "" {
		line, err = headerLine(br)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(line, "Columns:") {
			return nil, fmt.Errorf("malformed columns header %q", line)
		}
	}

	for i := 0; i < moduleCount; i++ {
		line, err = headerLine(br)
		if err != nil {
			return nil, err
		}
		mod, err := parseModule(line)
		if err != nil {
			return nil, err
		}
		f.Modules = append(f.Modules, mod)
	}

	line, err = headerLine(br)
	if err != nil {
		return nil, err
	}
	bm := bbTableRe.FindStringSubmatch(line)
	if bm == nil {
		return nil, fmt.Errorf("malformed bb table header %q", line)
	}
	blockCount, _ := strconv.Atoi(bm[1])

	f.Blocks = make([]BasicBlock, blockCount)
	if err := binary.Read(br, binary.LittleEndian, f.Blocks); err != nil {
		return nil, fmt.Errorf("reading %d basic-block records: %w", blockCount, err)
	}

	return f, nil
}

func headerLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading header: %w", err)
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// parseModule parses one module table row. Only the final field may
// contain commas, so the row splits cleanly into five parts.
func parseModule(line string) (Module, error) {
	parts := strings.SplitN(line, ",", 5)
	if len(parts) != 5 {
		return Module{}, fmt.Errorf("malformed module row %q", line)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Module{}, fmt.Errorf("malformed module id in %q", line)
	}

	addrs := make([]uint64, 3)
	for i, p := range parts[1:4] {
		hex, ok := strings.CutPrefix(p, "0x")
		if !ok {
			return Module{}, fmt.Errorf("malformed module address %q in %q", p, line)
		}
		v, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return Module{}, fmt.Errorf("malformed module address %q in %q", p, line)
		}
		addrs[i] = v
	}

	return Module{ID: id, Base: addrs[0], End: addrs[1], Entry: addrs[2], Path: parts[4]}, nil
}

// Write emits f in the exact byte form the tracer produces: lowercase
// unpadded hex, one space after each comma, packed little-endian block
// records after the BB table header.
func Write(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "DRCOV VERSION: %d\n", f.Version)
	fmt.Fprintf(bw, "DRCOV FLAVOR: %s\n", f.Flavor)
	fmt.Fprintf(bw, "Module Table: version 2, count %d\n", len(f.Modules))
	fmt.Fprintf(bw, "Columns: id, base, end, entry, path\n")
	for _, m := range f.Modules {
		fmt.Fprintf(bw, "%d, 0x%x, 0x%x, 0x%x, %s\n", m.ID, m.Base, m.End, m.Entry, m.Path)
	}
	fmt.Fprintf(bw, "BB Table: %d bbs\n", len(f.Blocks))

	if err := binary.Write(bw, binary.LittleEndian, f.Blocks); err != nil {
		return fmt.Errorf("writing basic-block records: %w", err)
	}
	return bw.Flush()
}
