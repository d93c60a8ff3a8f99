package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"argsmat/internal/diag"
	"argsmat/internal/source"
)

const sample = "function f(a, b) {\n  return g(arguments)\n}\n"

// redirectBag возвращает bag с одной диагностикой ARG3001 по `arguments` во второй строке
func redirectBag(fs *source.FileSet, path string) (*diag.Bag, source.FileID) {
	fileID := fs.AddVirtual(path, []byte(sample))
	start := uint32(strings.Index(sample, "arguments"))
	span := source.Span{File: fileID, Start: start, End: start + uint32(len("arguments"))}
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevInfo, diag.ArgRedirected, span, "'arguments' redirected to '$_args'").
		WithNote(source.Span{File: fileID, Start: 17, End: 18}, "owning function body").
		WithFix("redirect to '$_args'", diag.TextEdit{Span: span, NewText: "$_args", OldText: "arguments"}))
	return bag, fileID
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := redirectBag(fs, "/home/user/project/src/test.js")
	fs.SetBaseDir("/home/user/project")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.js:2:12"},
		{"Relative path", PathModeRelative, "src/test.js:2:12"},
		{"Basename only", PathModeBasename, "test.js:2:12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "INFO ARG3001") {
				t.Errorf("Expected severity and code, got:\n%s", output)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := redirectBag(fs, "test.js")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	want := "test.js:2:12: INFO ARG3001: 'arguments' redirected to '$_args'\n" +
		"1 | function f(a, b) {\n" +
		"2 |   return g(arguments)\n" +
		"  |            ^~~~~~~~~\n" +
		"3 | }\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyCaretWithTabsAndWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	src := "\tg(\"日本\", arguments)\n"
	fileID := fs.AddVirtual("wide.js", []byte(src))
	start := uint32(strings.Index(src, "arguments"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.ArgUnscopedOccurrence,
		source.Span{File: fileID, Start: start, End: start + 9}, "unscoped"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	// таб = 4 колонки, каждый иероглиф = 2
	wantPad := strings.Repeat(" ", 4+len(`g("`)+4+len(`", `))
	if lines[2] != "  | "+wantPad+"^~~~~~~~~" {
		t.Fatalf("caret line = %q", lines[2])
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := redirectBag(fs, "test.js")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{
		PathMode:    PathModeBasename,
		ShowNotes:   true,
		ShowFixes:   true,
		ShowPreview: true,
	})
	output := buf.String()

	for _, want := range []string{
		"note: test.js:1:18: owning function body",
		"fix #1: redirect to '$_args'",
		`edit test.js:2:12 apply="$_args"`,
		"preview:",
		"- " + "  return g(arguments)",
		"+ " + "  return g($_args)",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := redirectBag(fs, "test.js")

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	Pretty(&colored, bag, fs, PrettyOpts{PathMode: PathModeBasename, Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("escape codes without Color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("no escape codes with Color")
	}
}

func TestPrettyTimingsShowsPayload(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.js", []byte(sample))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: fileID}, "timings (file): total 1.00 ms").
		WithNote(source.Span{File: fileID}, `{"kind":"file"}`))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	output := buf.String()
	if !strings.Contains(output, `note: {"kind":"file"}`) {
		t.Fatalf("timings payload missing:\n%s", output)
	}
	if strings.Contains(output, " | ") {
		t.Fatalf("timings must not print a snippet:\n%s", output)
	}
}
