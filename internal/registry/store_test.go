// Copyright hextree.io, 2026. All rights reserved.

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/hextreeio/microhook/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	store, err := Open(filepath.Join(tmpDir, "microhook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func writeListing(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content = strings.TrimPrefix(dedent.Dedent(content), "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleListing = `
	#ifdef TARGET_NR_accept
	{ TARGET_NR_accept, "accept" , NULL, print_accept, NULL },
	#endif
	#ifdef TARGET_NR_brk
	{ TARGET_NR_brk, "brk" , NULL, print_brk, NULL },
	#endif
	#ifdef TARGET_NR_close
	{ TARGET_NR_close, "close" , NULL, NULL, NULL },
	#endif
`

// --- tests ---

func TestImportAndLookup(t *testing.T) {
	store, tmpDir := testStore(t)
	path := writeListing(t, tmpDir, "strace.list", sampleListing)

	summary, err := store.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Replaced)
	assert.False(t, summary.HasFindings())
	assert.Equal(t, 3, summary.Total())

	entries, err := store.LookupName(context.Background(), "brk")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "TARGET_NR_brk", entries[0].Guard)
	assert.Equal(t, 2, entries[0].Position)
	assert.Equal(t, path, entries[0].Listing)

	entries, err = store.LookupName(context.Background(), "no_such_syscall")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportReplacesPreviousEntries(t *testing.T) {
	store, tmpDir := testStore(t)
	path := writeListing(t, tmpDir, "strace.list", sampleListing)

	_, err := store.Import(context.Background(), path)
	require.NoError(t, err)

	// Shrink the listing and re-import the same path.
	writeListing(t, tmpDir, "strace.list", `
		#ifdef TARGET_NR_exit
		{ TARGET_NR_exit, "exit" , NULL, NULL, NULL },
		#endif
	`)
	summary, err := store.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 3, summary.Replaced)

	all, err := store.List(context.Background(), QueryOptions{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "exit", all[0].Name)

	// The old entries are gone, not shadowed.
	gone, err := store.LookupName(context.Background(), "accept")
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestImportSkipsDuplicateGuards(t *testing.T) {
	store, tmpDir := testStore(t)
	path := writeListing(t, tmpDir, "dup.list", `
		#ifdef TARGET_NR_dup
		{ TARGET_NR_dup, "dup" , NULL, NULL, NULL },
		#endif
		#ifdef TARGET_NR_dup
		{ TARGET_NR_dup, "dup_again" , NULL, NULL, NULL },
		#endif
	`)

	summary, err := store.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	assert.True(t, summary.HasFindings(), "duplicate guard should surface as a finding")

	// First occurrence wins.
	entries, err := store.LookupName(context.Background(), "dup")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = store.LookupName(context.Background(), "dup_again")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportCountsFindingsWithoutFailing(t *testing.T) {
	store, tmpDir := testStore(t)
	path := writeListing(t, tmpDir, "degraded.list", `
		#ifdef TARGET_NR_reserved
		{ TARGET_NR_reserved },
		#endif
		#ifdef TARGET_NR_exit
		{ TARGET_NR_exit, "exit" , NULL, NULL, NULL },
	`)

	summary, err := store.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	// missing-entry plus unterminated.
	assert.Equal(t, 2, summary.Findings)
}

func TestImportMissingFile(t *testing.T) {
	store, tmpDir := testStore(t)

	_, err := store.Import(context.Background(), filepath.Join(tmpDir, "nope.list"))
	require.Error(t, err)
}

func TestLookupNameAcrossListings(t *testing.T) {
	store, tmpDir := testStore(t)

	arm := writeListing(t, tmpDir, "arm.list", `
		#ifdef TARGET_NR_accept
		{ TARGET_NR_accept, "accept" , NULL, NULL, NULL },
		#endif
	`)
	mips := writeListing(t, tmpDir, "mips.list", `
		#ifdef TARGET_NR_accept_mips
		{ TARGET_NR_accept_mips, "accept" , NULL, NULL, NULL },
		#endif
	`)

	for _, p := range []string{arm, mips} {
		_, err := store.Import(context.Background(), p)
		require.NoError(t, err)
	}

	entries, err := store.LookupName(context.Background(), "accept")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Ordered by listing path.
	assert.Equal(t, arm, entries[0].Listing)
	assert.Equal(t, mips, entries[1].Listing)
}

func TestListFilters(t *testing.T) {
	store, tmpDir := testStore(t)
	path := writeListing(t, tmpDir, "strace.list", sampleListing)
	_, err := store.Import(context.Background(), path)
	require.NoError(t, err)

	t.Run("guard prefix", func(t *testing.T) {
		entries, err := store.List(context.Background(), QueryOptions{GuardPrefix: "TARGET_NR_b"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "brk", entries[0].Name)
	})

	t.Run("like metacharacters are literal", func(t *testing.T) {
		// An unescaped "%" prefix would match every guard.
		entries, err := store.List(context.Background(), QueryOptions{GuardPrefix: "%"})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("listing filter", func(t *testing.T) {
		entries, err := store.List(context.Background(), QueryOptions{Listing: path})
		require.NoError(t, err)
		assert.Len(t, entries, 3)

		entries, err = store.List(context.Background(), QueryOptions{Listing: "other.list"})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := store.List(context.Background(), QueryOptions{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "registry", "microhook.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}

func TestExportJSONAndYAML(t *testing.T) {
	entries := []types.RegistryEntry{
		{Guard: "TARGET_NR_accept", Name: "accept", Position: 1, Listing: "strace.list"},
		{Guard: "TARGET_NR_brk", Name: "brk", Position: 2, Listing: "strace.list"},
	}

	var jsonBuf bytes.Buffer
	require.NoError(t, ExportJSON(&jsonBuf, entries))
	var fromJSON []types.RegistryEntry
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, entries, fromJSON)

	var yamlBuf bytes.Buffer
	require.NoError(t, ExportYAML(&yamlBuf, entries))
	var fromYAML []types.RegistryEntry
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, entries, fromYAML)
}
