package rewrite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"argsmat/internal/diag"
	"argsmat/internal/fix"
	"argsmat/internal/source"
	"argsmat/internal/syntax"
	"argsmat/internal/testkit"
)

// TestSamples runs every testdata/samples/<name>/input.js through Process
// and compares with expected.js. An expected file identical to the input
// means the rewrite must report "unchanged".
func TestSamples(t *testing.T) {
	dirs, err := filepath.Glob(filepath.Join("testdata", "samples", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) == 0 {
		t.Fatal("no samples found")
	}
	for _, dir := range dirs {
		name := filepath.Base(dir)
		t.Run(name, func(t *testing.T) {
			input := readSample(t, dir, "input.js")
			expected := readSample(t, dir, "expected.js")

			bag := diag.NewBag(0)
			opts := DefaultOptions()
			opts.Reporter = diag.BagReporter{Bag: bag}
			fs := source.NewFileSet()
			f := fs.Get(fs.AddVirtual(filepath.Join(dir, "input.js"), []byte(input)))
			tree, err := syntax.Parse(context.Background(), f)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if err := testkit.CheckSpanInvariants(tree); err != nil {
				t.Fatalf("span invariants: %v", err)
			}
			res, err := Process(context.Background(), f, opts)
			if err != nil {
				t.Fatalf("process: %v", err)
			}

			if input == expected {
				if res != nil {
					t.Fatalf("expected unchanged, got:\n%s", res.Code)
				}
				return
			}
			if res == nil {
				t.Fatalf("expected a rewrite, got unchanged")
			}
			got := strings.TrimRight(res.Code, " \t\r\n")
			want := strings.TrimRight(expected, " \t\r\n")
			if got != want {
				t.Fatalf("output mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
			}
			if res.Map == nil {
				t.Fatalf("source map missing")
			}
			out := fs.Get(fs.AddVirtual(filepath.Join(dir, "output.js"), []byte(res.Code)))
			if _, err := syntax.Parse(context.Background(), out); err != nil {
				t.Fatalf("rewritten output does not parse: %v", err)
			}
			if bag.HasErrors() {
				t.Fatalf("unexpected errors: %+v", bag.Items())
			}

			// исправления из диагностик дают тот же текст
			applied, err := fix.Apply(fs, bag.Items(), fix.ApplyOptions{})
			if err != nil {
				t.Fatalf("apply fixes: %v", err)
			}
			if len(applied.Skipped) != 0 || len(applied.FileChanges) != 1 {
				t.Fatalf("fix replay: %+v", applied)
			}
			if applied.FileChanges[0].Content != res.Code {
				t.Fatalf("fix replay differs\n--- fixes ---\n%s\n--- rewrite ---\n%s", applied.FileChanges[0].Content, res.Code)
			}
		})
	}
}

func readSample(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
