package fix

import (
	"errors"
	"fmt"
	"sort"

	"argsmat/internal/diag"
	"argsmat/internal/source"
	"argsmat/internal/splice"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeAll ApplyMode = iota
	// ApplyModeCode applies only fixes of diagnostics with ApplyOptions.Code.
	ApplyModeCode
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode ApplyMode
	Code diag.Code
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	Title     string
	Code      diag.Code
	Message   string
	EditCount int
}

// SkippedFix captures a skipped fix with a reason.
type SkippedFix struct {
	Title  string
	Code   diag.Code
	Reason string
}

// FileChange is the new content of one file. Nothing is written to disk.
type FileChange struct {
	File      source.FileID
	Path      string
	EditCount int
	Content   string
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type fileState struct {
	buf   *splice.Buffer
	edits []diag.TextEdit
	count int
}

// Apply replays the fixes carried by diagnostics on the original file
// contents. Edits use the splice rules: zero-width edits become left
// insertions and a fix is skipped as a whole if any of its edits collides
// with an edit already accepted or no longer matches OldText.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	states := make(map[source.FileID]*fileState)
	for _, d := range diagnostics {
		if opts.Mode == ApplyModeCode && d.Code != opts.Code {
			continue
		}
		for _, fx := range d.Fixes {
			reason := stage(fs, states, fx)
			if reason != "" {
				result.Skipped = append(result.Skipped, SkippedFix{Title: fx.Title, Code: d.Code, Reason: reason})
				continue
			}
			result.Applied = append(result.Applied, AppliedFix{
				Title:     fx.Title,
				Code:      d.Code,
				Message:   d.Message,
				EditCount: len(fx.Edits),
			})
		}
	}

	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	ids := make([]source.FileID, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		st := states[id]
		if st.count == 0 {
			continue
		}
		rendered, err := st.buf.Render()
		if err != nil {
			return result, fmt.Errorf("fix: render %s: %w", fs.Get(id).Path, err)
		}
		result.FileChanges = append(result.FileChanges, FileChange{
			File:      id,
			Path:      fs.Get(id).Path,
			EditCount: st.count,
			Content:   rendered.Text,
		})
	}
	return result, nil
}

// stage validates every edit of fx first and only then records them, so a
// fix is never half applied. It returns a skip reason or "".
func stage(fs *source.FileSet, states map[source.FileID]*fileState, fx diag.Fix) string {
	if len(fx.Edits) == 0 {
		return "fix has no edits"
	}
	for i, edit := range fx.Edits {
		file := fs.Get(edit.Span.File)
		if file == nil {
			return fmt.Sprintf("file %d not found", edit.Span.File)
		}
		if int(edit.Span.End) > len(file.Content) || edit.Span.Start > edit.Span.End {
			return "edit span out of range"
		}
		if edit.OldText != "" && string(file.Content[edit.Span.Start:edit.Span.End]) != edit.OldText {
			return "existing text does not match expected content"
		}
		if st := states[edit.Span.File]; st != nil && conflictsWithExisting(st.edits, edit) {
			return fmt.Sprintf("conflicts with previously applied edits in %s", file.Path)
		}
		for _, other := range fx.Edits[:i] {
			if other.Span.File == edit.Span.File && spansConflict(other, edit) {
				return "edits of the fix overlap"
			}
		}
	}

	for _, edit := range fx.Edits {
		st := states[edit.Span.File]
		if st == nil {
			st = &fileState{buf: splice.NewBuffer(fs.Get(edit.Span.File).Content)}
			states[edit.Span.File] = st
		}
		var err error
		if edit.Span.Empty() {
			err = st.buf.InsertLeft(edit.Span.Start, edit.NewText)
		} else {
			err = st.buf.Overwrite(edit.Span.Start, edit.Span.End, edit.NewText)
		}
		if err != nil {
			// конфликт уже отсеян выше
			return err.Error()
		}
		st.edits = append(st.edits, edit)
		st.count++
	}
	return ""
}

func conflictsWithExisting(existing []diag.TextEdit, edit diag.TextEdit) bool {
	for _, prev := range existing {
		if spansConflict(prev, edit) {
			return true
		}
	}
	return false
}

// spansConflict reports whether two edits collide under the splice rules.
// Spans are half-open. Two insertions never conflict; an insertion
// conflicts with a replacement only strictly inside it; two replacements
// conflict when they overlap.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return aStart != bStart && b.Span.Contains(aStart)
	}
	if bStart == bEnd {
		return bStart != aStart && a.Span.Contains(bStart)
	}
	return a.Span.Overlaps(b.Span)
}
