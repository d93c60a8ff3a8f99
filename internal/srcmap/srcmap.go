// Package srcmap builds Source Map v3 documents from splice mappings.
package srcmap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"argsmat/internal/splice"
)

// Map is a Source Map revision 3 document with a single source.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Options control Generate.
type Options struct {
	// File is the name of the generated file recorded in the map.
	File string
	// IncludeContent embeds the original text in sourcesContent.
	IncludeContent bool
}

// Generate converts rendered mappings into a Map for the unit named source.
func Generate(source, original string, r *splice.Rendered, opts Options) *Map {
	m := &Map{
		Version: 3,
		File:    opts.File,
		Sources: []string{source},
		Names:   []string{},
	}
	if opts.IncludeContent {
		m.SourcesContent = []string{original}
	}
	m.Mappings = encodeMappings(original, r)
	return m
}

// JSON returns the map serialized as JSON.
func (m *Map) JSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal source map: %w", err)
	}
	return data, nil
}

// URL returns the map as a base64 data URL suitable for an inline
// sourceMappingURL comment.
func (m *Map) URL() (string, error) {
	data, err := m.JSON()
	if err != nil {
		return "", err
	}
	return DataURL(data), nil
}

// DataURL encodes serialized map JSON as a base64 data URL.
func DataURL(data []byte) string {
	return "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(data)
}

// String renders the map as JSON, or an empty string if it cannot be encoded.
func (m *Map) String() string {
	data, err := m.JSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// position is a zero-based line and UTF-16 column.
type position struct {
	line int
	col  int
}

// lineTable resolves byte offsets of one text.
type lineTable struct {
	text   string
	starts []int
}

func newLineTable(text string) *lineTable {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineTable{text: text, starts: starts}
}

func (t *lineTable) position(off int) position {
	line := sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	return position{line: line, col: utf16Len(t.text[t.starts[line]:off])}
}

// utf16Len counts UTF-16 code units, the unit of source map columns.
func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		n += utf16.RuneLen(r)
	}
	return n
}

func encodeMappings(original string, r *splice.Rendered) string {
	gen := newLineTable(r.Text)
	orig := newLineTable(original)

	var (
		sb                        strings.Builder
		genLine                   int
		prevGenCol                int
		prevOrigLine, prevOrigCol int
		firstInLine               = true
	)
	for _, mp := range r.Mappings {
		gp := gen.position(mp.Gen)
		for genLine < gp.line {
			sb.WriteByte(';')
			genLine++
			prevGenCol = 0
			firstInLine = true
		}
		if !firstInLine {
			sb.WriteByte(',')
		}
		firstInLine = false

		EncodeVLQ(&sb, gp.col-prevGenCol)
		prevGenCol = gp.col
		if mp.Unmapped() {
			continue
		}
		op := orig.position(mp.Orig)
		EncodeVLQ(&sb, 0) // единственный source
		EncodeVLQ(&sb, op.line-prevOrigLine)
		EncodeVLQ(&sb, op.col-prevOrigCol)
		prevOrigLine, prevOrigCol = op.line, op.col
	}
	return sb.String()
}
