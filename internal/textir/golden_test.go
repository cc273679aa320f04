package textir_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"netir/internal/frontend"
	"netir/internal/textir"
)

// TestGolden parses each testdata archive's input.nl and compares the emitted
// text against want.ir and, when present, want.nometa.ir.
func TestGolden(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(archives) == 0 {
		t.Fatalf("no golden archives found")
	}
	for _, path := range archives {
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			files := make(map[string]string)
			for _, f := range ar.Files {
				files[f.Name] = string(f.Data)
			}
			source, ok := files["input.nl"]
			if !ok {
				t.Fatalf("%s has no input.nl", path)
			}
			nl, err := frontend.Parse(name+".nl", source)
			if err != nil {
				t.Fatalf("parse input: %v", err)
			}

			variants := map[string]textir.Options{
				"want.ir":        {},
				"want.nometa.ir": {OmitMetadata: true},
			}
			for file, opts := range variants {
				want, ok := files[file]
				if !ok {
					continue
				}
				got, err := textir.Emit(nl, opts)
				if err != nil {
					t.Fatalf("%s: Emit failed: %v", file, err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("%s mismatch (-want +got):\n%s", file, diff)
				}
			}
		})
	}
}
