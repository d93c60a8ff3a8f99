package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"argsmat/internal/diag"
	"argsmat/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, path, gutter, caret, note, fix func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.Sprint
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		path:   mk(color.FgWhite, color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan),
		fix:    mk(color.FgGreen),
	}
}

func (p palette) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.err(sev.String())
	case diag.SevWarning:
		return p.warn(sev.String())
	default:
		return p.info(sev.String())
	}
}

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color       bool
	Context     int8 // lines shown above and below the primary line
	PathMode    PathMode
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool // before/after lines under each fix edit
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	file := fs.Get(d.Primary.File)
	if file == nil {
		fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity), p.code(d.Code.ID()), d.Message)
		return
	}
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		p.path(formatPath(file, fs, opts.PathMode)), start.Line, start.Col,
		p.severity(d.Severity), p.code(d.Code.ID()), d.Message)

	// observability payloads are JSON, no snippet
	if d.Code != diag.ObsTimings {
		snippet(w, file, start, end, opts.Context, p)
	}

	if opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			if nf := fs.Get(n.Span.File); nf != nil && !n.Span.Empty() {
				pos, _ := fs.Resolve(n.Span)
				fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note("note:"),
					formatPath(nf, fs, opts.PathMode), pos.Line, pos.Col, n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", p.note("note:"), n.Msg)
		}
	}

	if opts.ShowFixes {
		for i, fx := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", p.fix(fmt.Sprintf("fix #%d:", i+1)), fx.Title)
			for _, edit := range fx.Edits {
				pos, _ := fs.Resolve(edit.Span)
				path := ""
				if ef := fs.Get(edit.Span.File); ef != nil {
					path = formatPath(ef, fs, opts.PathMode)
				}
				fmt.Fprintf(w, "    edit %s:%d:%d apply=%q\n", path, pos.Line, pos.Col, edit.NewText)
				if !opts.ShowPreview {
					continue
				}
				preview, err := buildFixEditPreview(fs, edit)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "    preview:\n")
				for _, line := range preview.before {
					fmt.Fprintf(w, "      %s %s\n", p.err("-"), expandTabs(line))
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "      %s %s\n", p.fix("+"), expandTabs(line))
				}
			}
		}
	}
}

// snippet печатает строки вокруг span и подчёркивание под первой строкой.
func snippet(w io.Writer, file *source.File, start, end source.LineCol, context int8, p palette) {
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := min(start.Line+ctx, uint32(len(file.LineIdx))+1)
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		line := file.GetLine(ln)
		fmt.Fprintf(w, "%s %s\n", p.gutter(fmt.Sprintf("%*d |", gutterWidth, ln)), expandTabs(line))
		if ln != start.Line {
			continue
		}
		raw := line
		col := min(int(start.Col)-1, len(raw))
		stop := len(raw)
		if end.Line == start.Line {
			stop = min(max(int(end.Col)-1, col), len(raw))
		}
		pad := runewidth.StringWidth(expandTabs(raw[:col]))
		width := max(runewidth.StringWidth(expandTabs(raw[col:stop])), 1)
		mark := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter(strings.Repeat(" ", gutterWidth)+" |"),
			strings.Repeat(" ", pad), p.caret(mark))
	}
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	w := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - w%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			w += n
			continue
		}
		sb.WriteRune(r)
		w += runewidth.RuneWidth(r)
	}
	return sb.String()
}
