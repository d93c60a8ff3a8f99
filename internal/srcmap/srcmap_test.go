package srcmap

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-sourcemap/sourcemap"

	"argsmat/internal/splice"
)

func TestEncodeVLQVectors(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "A"},
		{1, "C"},
		{-1, "D"},
		{15, "e"},
		{16, "gB"},
		{-16, "hB"},
		{123, "2H"},
		{1000, "w+B"},
	}
	for _, tt := range tests {
		var sb strings.Builder
		EncodeVLQ(&sb, tt.in)
		if got := sb.String(); got != tt.want {
			t.Errorf("EncodeVLQ(%d) = %q, want %q", tt.in, got, tt.want)
		}
		v, n, err := DecodeVLQ(tt.want + "X")
		if err != nil || v != tt.in || n != len(tt.want) {
			t.Errorf("DecodeVLQ(%q) = %d, %d, %v", tt.want, v, n, err)
		}
	}
	if _, _, err := DecodeVLQ("g"); err == nil {
		t.Errorf("expected error for truncated VLQ")
	}
	if _, _, err := DecodeVLQ("!"); err == nil {
		t.Errorf("expected error for invalid digit")
	}
}

func render(t *testing.T, src string, edit func(b *splice.Buffer) error) *splice.Rendered {
	t.Helper()
	b := splice.NewBuffer([]byte(src))
	if err := edit(b); err != nil {
		t.Fatalf("edit: %v", err)
	}
	r, err := b.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return r
}

func TestGenerateRoundTrip(t *testing.T) {
	src := "function f() {\n  return arguments;\n}\nf();\n"
	r := render(t, src, func(b *splice.Buffer) error {
		if err := b.InsertLeft(14, "\n  var $_a = 1;"); err != nil {
			return err
		}
		return b.Overwrite(24, 33, "$_args")
	})
	m := Generate("input.js", src, r, Options{File: "output.js", IncludeContent: true})
	data, err := m.JSON()
	if err != nil {
		t.Fatal(err)
	}
	consumer, err := sourcemap.Parse("output.js.map", data)
	if err != nil {
		t.Fatalf("parse generated map: %v\n%s", err, data)
	}

	tests := []struct {
		name              string
		genLine, genCol   int
		origLine, origCol int
	}{
		{"function keyword", 1, 0, 1, 0},
		{"line start after insert", 3, 0, 2, 0},
		{"overwritten identifier", 3, 9, 2, 9},
		{"call after block", 5, 0, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, _, line, col, ok := consumer.Source(tt.genLine, tt.genCol)
			if !ok {
				t.Fatalf("no mapping at %d:%d", tt.genLine, tt.genCol)
			}
			if file != "input.js" || line != tt.origLine || col != tt.origCol {
				t.Fatalf("Source(%d,%d) = %s %d:%d, want input.js %d:%d",
					tt.genLine, tt.genCol, file, line, col, tt.origLine, tt.origCol)
			}
		})
	}
}

func TestGenerateUTF16Columns(t *testing.T) {
	src := "var s = '😀'; arguments;"
	start := strings.Index(src, "arguments")
	r := render(t, src, func(b *splice.Buffer) error {
		b.AddLocation(uint32(start))
		return nil
	})
	m := Generate("a.js", src, r, Options{})
	consumer, err := sourcemap.Parse("", []byte(m.String()))
	if err != nil {
		t.Fatal(err)
	}
	// the emoji is one rune, four bytes and two UTF-16 units: `arguments`
	// starts at UTF-16 column 14 (byte 16)
	_, _, line, col, ok := consumer.Source(1, 14)
	if !ok || line != 1 || col != 14 {
		t.Fatalf("Source(1,14) = %d:%d ok=%v, want 1:14", line, col, ok)
	}
}

func TestURL(t *testing.T) {
	src := "x"
	r := render(t, src, func(*splice.Buffer) error { return nil })
	m := Generate("x.js", src, r, Options{})
	url, err := m.URL()
	if err != nil {
		t.Fatal(err)
	}
	const prefix = "data:application/json;charset=utf-8;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("url = %q", url)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatal(err)
	}
	var back Map
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Version != 3 || back.Mappings != "AAAA" || back.Sources[0] != "x.js" {
		t.Fatalf("decoded map = %+v", back)
	}
	if back.SourcesContent != nil {
		t.Fatalf("sourcesContent present without IncludeContent")
	}
}
