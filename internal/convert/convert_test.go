// Copyright hextree.io, 2026. All rights reserved.

package convert

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lithammer/dedent"
)

// listing strips the leading newline and common indentation that keep the
// fixture literals readable in test tables.
func listing(s string) string {
	return strings.TrimPrefix(dedent.Dedent(s), "\n")
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "single block",
			input: listing(`
				#ifdef TARGET_NR_accept
				{ TARGET_NR_accept, "accept" , NULL, print_accept, NULL },
				#endif
			`),
			want: listing(`
				#ifdef TARGET_NR_accept
				{ TARGET_NR_accept, "accept"},
				#endif
			`),
		},
		{
			name: "consecutive blocks stay consecutive",
			input: listing(`
				#ifdef TARGET_NR_read
				{ TARGET_NR_read, "read" , NULL, NULL, print_syscall_ret_read },
				#endif
				#ifdef TARGET_NR_write
				{ TARGET_NR_write, "write" , NULL, print_write, NULL },
				#endif
			`),
			want: listing(`
				#ifdef TARGET_NR_read
				{ TARGET_NR_read, "read"},
				#endif
				#ifdef TARGET_NR_write
				{ TARGET_NR_write, "write"},
				#endif
			`),
		},
		{
			name: "struct split across physical lines",
			input: listing(`
				#ifdef TARGET_NR_clock_adjtime64
				{ TARGET_NR_clock_adjtime64, "clock_adjtime64" , NULL,
				  print_clock_adjtime64, NULL },
				#endif
			`),
			want: listing(`
				#ifdef TARGET_NR_clock_adjtime64
				{ TARGET_NR_clock_adjtime64, "clock_adjtime64"},
				#endif
			`),
		},
		{
			name: "block without quoted name keeps open and close only",
			input: listing(`
				#ifdef TARGET_NR_reserved
				{ TARGET_NR_reserved },
				#endif
			`),
			want: listing(`
				#ifdef TARGET_NR_reserved
				#endif
			`),
		},
		{
			name: "empty quoted name is not an entry",
			input: listing(`
				#ifdef TARGET_NR_nameless
				{ TARGET_NR_nameless, "" , NULL, NULL, NULL },
				#endif
			`),
			want: listing(`
				#ifdef TARGET_NR_nameless
				#endif
			`),
		},
		{
			name: "stray content between blocks is dropped",
			input: listing(`
				/* strace.list: syscall print handlers */

				#if !defined(SYSCALL_TABLE)
				{ TARGET_NR_fake, "fake" , NULL, NULL, NULL },
				#endif
				#ifdef TARGET_NR_brk
				{ TARGET_NR_brk, "brk" , NULL, print_brk, NULL },
				#endif
			`),
			want: listing(`
				#ifdef TARGET_NR_brk
				{ TARGET_NR_brk, "brk"},
				#endif
			`),
		},
		{
			name: "body token differs from guard, guard wins",
			input: listing(`
				#ifdef TARGET_NR_oldstat
				{ TARGET_NR_stat, "stat" , NULL, print_stat, NULL },
				#endif
			`),
			want: listing(`
				#ifdef TARGET_NR_oldstat
				{ TARGET_NR_oldstat, "stat"},
				#endif
			`),
		},
		{
			name: "unterminated block at end of input",
			input: listing(`
				#ifdef TARGET_NR_exit
				{ TARGET_NR_exit, "exit" , NULL, NULL, NULL },
			`),
			want: listing(`
				#ifdef TARGET_NR_exit
				{ TARGET_NR_exit, "exit"},
			`),
		},
		{
			name: "endif with trailing comment is emitted unchanged",
			input: listing(`
				#ifdef TARGET_NR_close
				{ TARGET_NR_close, "close" , NULL, NULL, NULL },
				#endif /* TARGET_NR_close */
			`),
			want: listing(`
				#ifdef TARGET_NR_close
				{ TARGET_NR_close, "close"},
				#endif /* TARGET_NR_close */
			`),
		},
		{
			name:  "empty input reduces to a single newline",
			input: "",
			want:  "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReduceIfdefTrailingWhitespace(t *testing.T) {
	// Trailing whitespace on the #ifdef line is allowed by the open match
	// and the line is emitted exactly as read.
	input := "#ifdef TARGET_NR_brk  \n{ TARGET_NR_brk, \"brk\" , NULL },\n#endif\n"
	want := "#ifdef TARGET_NR_brk  \n{ TARGET_NR_brk, \"brk\"},\n#endif\n"

	if diff := cmp.Diff(want, Reduce(input)); diff != "" {
		t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceFirstEntryWins(t *testing.T) {
	// Only the first guard-plus-name occurrence in the joined body is used.
	input := listing(`
		#ifdef TARGET_NR_dup
		{ TARGET_NR_dup, "dup" , NULL, NULL, NULL },
		{ TARGET_NR_dup2, "dup2" , NULL, NULL, NULL },
		#endif
	`)
	want := listing(`
		#ifdef TARGET_NR_dup
		{ TARGET_NR_dup, "dup"},
		#endif
	`)

	if diff := cmp.Diff(want, Reduce(input)); diff != "" {
		t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceIdempotent(t *testing.T) {
	// A reduced entry still matches the entry search shape, so reducing the
	// converter's own output reproduces it byte for byte.
	inputs := map[string]string{
		"well formed": listing(`
			#ifdef TARGET_NR_accept
			{ TARGET_NR_accept, "accept" , NULL, print_accept, NULL },
			#endif
			#ifdef TARGET_NR__llseek
			{ TARGET_NR__llseek, "_llseek" , NULL, print__llseek, NULL },
			#endif
		`),
		"degraded blocks": listing(`
			#ifdef TARGET_NR_reserved
			#endif
			#ifdef TARGET_NR_exit
			{ TARGET_NR_exit, "exit" , NULL, NULL, NULL },
		`),
		"empty": "",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			once := Reduce(input)
			twice := Reduce(once)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("Reduce(Reduce(x)) differs from Reduce(x) (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "strace.list")
	outPath := filepath.Join(tmpDir, "microhook.list")

	input := listing(`
		#ifdef TARGET_NR_accept
		{ TARGET_NR_accept, "accept" , NULL, print_accept, NULL },
		#endif
	`)
	if err := os.WriteFile(inPath, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Convert(inPath, outPath); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := listing(`
		#ifdef TARGET_NR_accept
		{ TARGET_NR_accept, "accept"},
		#endif
	`)
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(string(data), "},\n#endif\n") {
		t.Errorf("output should end with a single trailing newline, got %q", data)
	}
}

func TestConvertEmptyInput(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "empty.list")
	outPath := filepath.Join(tmpDir, "out.list")

	if err := os.WriteFile(inPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Convert(inPath, outPath); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\n" {
		t.Errorf("empty input should produce a single newline, got %q", data)
	}
}

func TestConvertMissingInput(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "out.list")

	err := Convert(filepath.Join(tmpDir, "does-not-exist.list"), outPath)
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist, got %v", err)
	}
	if _, statErr := os.Stat(outPath); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("no output file should be written when the input is unreadable")
	}
}

func TestConvertUnwritableOutput(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "in.list")
	if err := os.WriteFile(inPath, []byte("#ifdef TARGET_NR_read\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Convert(inPath, filepath.Join(tmpDir, "missing-dir", "out.list"))
	if err == nil {
		t.Fatal("expected an error for an unwritable output path")
	}
}

func TestConvertOverwritesExisting(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "in.list")
	outPath := filepath.Join(tmpDir, "out.list")

	input := listing(`
		#ifdef TARGET_NR_write
		{ TARGET_NR_write, "write" , NULL, print_write, NULL },
		#endif
	`)
	if err := os.WriteFile(inPath, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(outPath, []byte("stale content from a previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Convert(inPath, outPath); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Error("existing output file should be overwritten")
	}
	if !strings.Contains(string(data), `{ TARGET_NR_write, "write"},`) {
		t.Errorf("output missing reduced entry, got %q", data)
	}
}
