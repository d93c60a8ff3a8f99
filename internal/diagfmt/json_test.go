package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"argsmat/internal/diag"
	"argsmat/internal/source"
)

func decode(t *testing.T, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	t.Helper()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	return output
}

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := redirectBag(fs, "test.js")

	output := decode(t, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename})
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count = %d", output.Count)
	}
	d := output.Diagnostics[0]
	if d.Severity != "INFO" || d.Code != "ARG3001" {
		t.Errorf("severity/code = %s/%s", d.Severity, d.Code)
	}
	loc := d.Location
	if loc.File != "test.js" || loc.StartByte != 30 || loc.EndByte != 39 {
		t.Errorf("location = %+v", loc)
	}
	if loc.StartLine != 2 || loc.StartCol != 12 || loc.EndCol != 21 {
		t.Errorf("positions = %+v", loc)
	}
	if d.Notes != nil || d.Fixes != nil {
		t.Errorf("notes and fixes must be omitted by default")
	}
}

func TestJSONWithNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := redirectBag(fs, "test.js")

	output := decode(t, bag, fs, JSONOpts{
		PathMode:        PathModeBasename,
		IncludeNotes:    true,
		IncludeFixes:    true,
		IncludePreviews: true,
	})
	d := output.Diagnostics[0]
	if len(d.Notes) != 1 || d.Notes[0].Message != "owning function body" {
		t.Fatalf("notes = %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.NewText != "$_args" || edit.OldText != "arguments" {
		t.Errorf("edit = %+v", edit)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "  return g($_args)" {
		t.Errorf("after lines = %q", edit.AfterLines)
	}
	if len(edit.BeforeLines) != 1 || edit.BeforeLines[0] != "  return g(arguments)" {
		t.Errorf("before lines = %q", edit.BeforeLines)
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte(sample))
	bag := diag.NewBag(10)
	for i := range 5 {
		bag.Add(diag.New(diag.SevWarning, diag.ArgInParameters,
			source.Span{File: fileID, Start: uint32(i), End: uint32(i + 1)}, "in parameters"))
	}

	output := decode(t, bag, fs, JSONOpts{Max: 3})
	if output.Count != 3 || len(output.Diagnostics) != 3 {
		t.Fatalf("count = %d, want 3", output.Count)
	}
	if !output.Truncated {
		t.Fatalf("truncated flag not set")
	}
}

func TestJSONFileSummary(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("a.js", []byte(sample))
	files := []FileSummary{{Path: "a.js", Changed: true, Redirected: 1, Preambles: 1}}
	output := decode(t, diag.NewBag(1), fs, JSONOpts{Files: files})
	if output.Count != 0 || output.Truncated {
		t.Fatalf("output = %+v", output)
	}
	if len(output.Files) != 1 || output.Files[0] != files[0] {
		t.Fatalf("files = %+v", output.Files)
	}
}

func TestJSONTimingsAlwaysCarryNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.js", []byte(sample))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: fileID}, "timings").
		WithNote(source.Span{File: fileID}, `{"kind":"file"}`))

	output := decode(t, bag, fs, JSONOpts{})
	if len(output.Diagnostics[0].Notes) != 1 {
		t.Fatalf("timings payload dropped")
	}
}
