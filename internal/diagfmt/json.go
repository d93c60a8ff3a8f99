package diagfmt

import (
	"encoding/json"
	"io"

	"argsmat/internal/diag"
	"argsmat/internal/source"
)

// JSONOpts configures JSON.
type JSONOpts struct {
	IncludePositions bool // line/col next to byte offsets
	PathMode         PathMode
	Max              int // caps the emitted list; the Bag is left whole
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
	Files            []FileSummary // per-file table, passed through as is
}

// LocationJSON is a span with optional 1-based line/column positions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON is one splice of a fix. BeforeLines/AfterLines are set with
// IncludePreviews.
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// FileSummary is the per-file outcome of a run, filled in by the caller.
type FileSummary struct {
	Path       string `json:"path"`
	Changed    bool   `json:"changed"`
	Written    bool   `json:"written,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	Redirected int    `json:"redirected"`
	Kept       int    `json:"kept"`
	Preambles  int    `json:"preambles"`
}

// DiagnosticsOutput is the document written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   bool             `json:"truncated,omitempty"`
	Files       []FileSummary    `json:"files,omitempty"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (b jsonBuilder) location(span source.Span) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	if f := b.fs.Get(span.File); f != nil {
		loc.File = formatPath(f, b.fs, b.opts.PathMode)
	}
	if b.opts.IncludePositions {
		start, end := b.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (b jsonBuilder) edit(e diag.TextEdit) FixEditJSON {
	out := FixEditJSON{Location: b.location(e.Span), NewText: e.NewText, OldText: e.OldText}
	if !b.opts.IncludePreviews {
		return out
	}
	// превью необязательно: ошибку построения просто пропускаем
	if p, err := buildFixEditPreview(b.fs, e); err == nil {
		out.BeforeLines, out.AfterLines = p.before, p.after
	}
	return out
}

func (b jsonBuilder) diagnostic(d diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: b.location(d.Primary),
	}
	// тайминги бесполезны без заметок с фазами
	if b.opts.IncludeNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: b.location(n.Span)})
		}
	}
	if b.opts.IncludeFixes {
		for _, fx := range d.Fixes {
			fj := FixJSON{Title: fx.Title}
			for _, e := range fx.Edits {
				fj.Edits = append(fj.Edits, b.edit(e))
			}
			out.Fixes = append(out.Fixes, fj)
		}
	}
	return out
}

// BuildDiagnosticsOutput converts the bag without serialising it. opts.Max
// limits the printed diagnostics, not the bag.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	b := jsonBuilder{fs: fs, opts: opts}
	items := bag.Items()
	out := DiagnosticsOutput{Files: opts.Files}
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
		out.Truncated = true
	}
	out.Diagnostics = make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		out.Diagnostics = append(out.Diagnostics, b.diagnostic(d))
	}
	out.Count = len(out.Diagnostics)
	return out, nil
}

// JSON writes the bag as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
