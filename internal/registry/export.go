// Copyright hextree.io, 2026. All rights reserved.

package registry

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/hextreeio/microhook/pkg/types"
)

// ExportJSON writes entries to w as indented JSON.
func ExportJSON(w io.Writer, entries []types.RegistryEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// ExportYAML writes entries to w as a YAML sequence.
func ExportYAML(w io.Writer, entries []types.RegistryEntry) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
