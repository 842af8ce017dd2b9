// Copyright hextree.io, 2026. All rights reserved.

package coverage

import (
	"fmt"
	"sort"
)

// ModuleSummary aggregates the blocks recorded against one module.
type ModuleSummary struct {
	// Path is the module's binary path.
	Path string `json:"path" yaml:"path"`

	// Blocks is the number of recorded basic blocks.
	Blocks int `json:"blocks" yaml:"blocks"`

	// Bytes is the sum of block sizes. Overlapping blocks are not
	// collapsed; the tracer deduplicates by start address only.
	Bytes uint64 `json:"bytes" yaml:"bytes"`

	// Low and High are the lowest block start and highest block end seen,
	// as offsets from the module base.
	Low  uint32 `json:"low" yaml:"low"`
	High uint32 `json:"high" yaml:"high"`
}

// Summary aggregates per-module coverage, ordered by module ID. Modules
// with no recorded blocks still appear with zero counts.
func (f *File) Summary() []ModuleSummary {
	summaries := make([]ModuleSummary, len(f.Modules))
	for i, m := range f.Modules {
		summaries[i] = ModuleSummary{Path: m.Path}
	}

	for _, b := range f.Blocks {
		if int(b.ModuleID) >= len(summaries) {
			continue
		}
		s := &summaries[b.ModuleID]
		end := b.Start + uint32(b.Size)
		if s.Blocks == 0 || b.Start < s.Low {
			s.Low = b.Start
		}
		if end > s.High {
			s.High = end
		}
		s.Blocks++
		s.Bytes += uint64(b.Size)
	}
	return summaries
}

// blockKey identifies a block across files for merge deduplication. Module
// identity is the module path, not the per-file numeric ID.
type blockKey struct {
	path  string
	start uint32
	size  uint16
}

// Merge unions the coverage of several files into one. Modules are matched
// by path and assigned fresh IDs in first-seen order; duplicate blocks
// collapse to a single record. All inputs must agree on version and flavor.
func Merge(files ...*File) (*File, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}

	merged := &File{Version: files[0].Version, Flavor: files[0].Flavor}
	moduleIDs := make(map[string]uint16)

	for _, f := range files {
		if f.Version != merged.Version || f.Flavor != merged.Flavor {
			return nil, fmt.Errorf("mismatched coverage formats: %d/%s vs %d/%s",
				merged.Version, merged.Flavor, f.Version, f.Flavor)
		}
		for _, m := range f.Modules {
			if _, ok := moduleIDs[m.Path]; ok {
				continue
			}
			id := uint16(len(merged.Modules))
			moduleIDs[m.Path] = id
			m.ID = int(id)
			merged.Modules = append(merged.Modules, m)
		}
	}

	seen := make(map[blockKey]bool)
	for _, f := range files {
		for _, b := range f.Blocks {
			if int(b.ModuleID) >= len(f.Modules) {
				continue
			}
			path := f.Modules[b.ModuleID].Path
			key := blockKey{path: path, start: b.Start, size: b.Size}
			if seen[key] {
				continue
			}
			seen[key] = true
			b.ModuleID = moduleIDs[path]
			merged.Blocks = append(merged.Blocks, b)
		}
	}

	// Deterministic output regardless of input file order.
	sort.Slice(merged.Blocks, func(i, j int) bool {
		a, b := merged.Blocks[i], merged.Blocks[j]
		if a.ModuleID != b.ModuleID {
			return a.ModuleID < b.ModuleID
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Size < b.Size
	})

	return merged, nil
}
