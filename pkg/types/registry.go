// Copyright hextree.io, 2026. All rights reserved.

package types

// RegistryEntry is an Entry together with its provenance in the registry.
type RegistryEntry struct {
	// Guard is the conditional-compilation symbol for the entry.
	Guard string `json:"guard" yaml:"guard"`

	// Name is the syscall name.
	Name string `json:"name" yaml:"name"`

	// Position is the entry's 1-based position within its listing.
	Position int `json:"position" yaml:"position"`

	// Listing is the path the entry was imported from.
	Listing string `json:"listing" yaml:"listing"`
}

// ImportSummary holds counts from one registry import run.
type ImportSummary struct {
	// Imported is the number of entries inserted.
	Imported int

	// Replaced is the number of previously stored entries removed because
	// the same listing path was imported again.
	Replaced int

	// Skipped counts entries ignored because their guard already appeared
	// earlier in the same listing.
	Skipped int

	// Findings counts parser diagnostics reported for the listing.
	Findings int
}

// Total returns the number of entries considered for import.
func (s ImportSummary) Total() int {
	return s.Imported + s.Skipped
}

// HasFindings reports whether the listing produced any diagnostics.
func (s ImportSummary) HasFindings() bool {
	return s.Findings > 0
}
