// Copyright hextree.io, 2026. All rights reserved.

package types

// Entry is the reduced (guard, name) pair a listing block contributes to
// the microhook syscall table. The table is a C array initializer, so the
// guard stands in for the numeric syscall constant it expands to.
type Entry struct {
	// Guard is the conditional-compilation symbol controlling the entry
	// (e.g. "TARGET_NR_accept").
	Guard string `json:"guard" yaml:"guard"`

	// Name is the syscall name as quoted in the struct literal.
	Name string `json:"name" yaml:"name"`
}

// Block is one parsed #ifdef/entry/#endif unit of a listing, with source
// positions retained for diagnostics.
type Block struct {
	// Guard is the symbol from the #ifdef line.
	Guard string `json:"guard" yaml:"guard"`

	// Name is the quoted syscall name found in the block body. Empty when
	// HasEntry is false.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// BodyGuard is the guard-shaped token matched inside the struct body.
	// It normally equals Guard; when it differs, conversion still emits
	// Guard in the reduced entry.
	BodyGuard string `json:"body_guard,omitempty" yaml:"body_guard,omitempty"`

	// Body is the block interior joined into a single line, exactly as the
	// entry search sees it.
	Body string `json:"-" yaml:"-"`

	// OpenLine is the 1-based line number of the #ifdef line.
	OpenLine int `json:"open_line" yaml:"open_line"`

	// CloseLine is the 1-based line number of the #endif line, or zero for
	// an unterminated block.
	CloseLine int `json:"close_line,omitempty" yaml:"close_line,omitempty"`

	// HasEntry reports whether the body matched the entry shape.
	HasEntry bool `json:"has_entry" yaml:"has_entry"`

	// Terminated reports whether a #endif line closed the block before the
	// end of input.
	Terminated bool `json:"terminated" yaml:"terminated"`
}

// FindingKind classifies a listing diagnostic.
type FindingKind string

const (
	// FindingUnterminated marks a block whose #endif never appeared.
	FindingUnterminated FindingKind = "unterminated"

	// FindingMissingEntry marks a block whose body contains no
	// guard-plus-quoted-name shape.
	FindingMissingEntry FindingKind = "missing-entry"

	// FindingEmptyName marks a block whose only candidate entry quotes an
	// empty string, which the entry search cannot match.
	FindingEmptyName FindingKind = "empty-name"

	// FindingGuardMismatch marks a block whose body token differs from the
	// #ifdef guard. Conversion substitutes the #ifdef guard silently.
	FindingGuardMismatch FindingKind = "guard-mismatch"

	// FindingDuplicateGuard marks a block whose guard already opened an
	// earlier block in the same listing.
	FindingDuplicateGuard FindingKind = "duplicate-guard"
)

// Finding is a non-fatal diagnostic about one listing block. The converter
// never reports these; the check command surfaces them.
type Finding struct {
	// Line is the 1-based line number of the block's #ifdef line.
	Line int `json:"line" yaml:"line"`

	// Kind classifies the diagnostic.
	Kind FindingKind `json:"kind" yaml:"kind"`

	// Detail is a human-readable description.
	Detail string `json:"detail" yaml:"detail"`
}
