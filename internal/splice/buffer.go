package splice

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
)

var (
	// ErrOverlappingEdit is returned when an edit intersects an earlier one.
	ErrOverlappingEdit = errors.New("overlapping edit")
	// ErrRange is returned for offsets outside the source or start > end.
	ErrRange = errors.New("edit out of range")
)

// EditKind distinguishes the three edit operations.
type EditKind uint8

const (
	// Overwrite replaces [Start, End) with Text.
	Overwrite EditKind = iota
	// InsertLeft places Text before the content at Start. It stays attached
	// to the text on the left: an overwrite beginning at Start does not
	// swallow it.
	InsertLeft
	// InsertRight places Text before the content at Start, after every
	// InsertLeft at the same position.
	InsertRight
)

func (k EditKind) String() string {
	switch k {
	case Overwrite:
		return "overwrite"
	case InsertLeft:
		return "insert-left"
	case InsertRight:
		return "insert-right"
	default:
		return fmt.Sprintf("EditKind(%d)", uint8(k))
	}
}

// Edit is a pending change in original coordinates. For inserts End == Start.
type Edit struct {
	Kind  EditKind
	Start uint32
	End   uint32
	Text  string
}

// conflicts reports whether two edits cannot both apply. Non-empty
// overwrites are half-open ranges and must be disjoint. A zero-width edit
// (an insert or an empty overwrite) may sit on either boundary of an
// overwrite but not strictly inside it. Zero-width edits never conflict
// with each other.
func conflicts(a, b Edit) bool {
	aPoint, bPoint := a.Start == a.End, b.Start == b.End
	switch {
	case aPoint && bPoint:
		return false
	case aPoint:
		return b.Start < a.Start && a.Start < b.End
	case bPoint:
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// rank orders edits sharing a start offset.
func rank(k EditKind) int {
	switch k {
	case InsertLeft:
		return 0
	case InsertRight:
		return 1
	default:
		return 2
	}
}

// Buffer is a queue of edits against one source text.
type Buffer struct {
	src   string
	edits []Edit
	locs  map[uint32]struct{}
}

// NewBuffer creates a Buffer over src. The source is never modified.
func NewBuffer(src []byte) *Buffer {
	return &Buffer{src: string(src), locs: make(map[uint32]struct{})}
}

// Len returns the length of the original text.
func (b *Buffer) Len() int { return len(b.src) }

// Source returns the original text.
func (b *Buffer) Source() string { return b.src }

// Edits returns the issued edits in issue order.
func (b *Buffer) Edits() []Edit {
	out := make([]Edit, len(b.edits))
	copy(out, b.edits)
	return out
}

// Changed reports whether at least one edit was issued.
func (b *Buffer) Changed() bool { return len(b.edits) > 0 }

// Slice returns the original text of [start, end).
func (b *Buffer) Slice(start, end uint32) (string, error) {
	if err := b.checkRange(start, end); err != nil {
		return "", err
	}
	return b.src[start:end], nil
}

// Overwrite replaces the original range [start, end) with text.
func (b *Buffer) Overwrite(start, end uint32, text string) error {
	return b.add(Edit{Kind: Overwrite, Start: start, End: end, Text: text})
}

// InsertLeft inserts text at pos, bound to the content before pos.
func (b *Buffer) InsertLeft(pos uint32, text string) error {
	return b.add(Edit{Kind: InsertLeft, Start: pos, End: pos, Text: text})
}

// InsertRight inserts text at pos, bound to the content after pos.
func (b *Buffer) InsertRight(pos uint32, text string) error {
	return b.add(Edit{Kind: InsertRight, Start: pos, End: pos, Text: text})
}

// AddLocation registers an original offset that must appear in the mappings
// even when it falls inside unchanged text.
func (b *Buffer) AddLocation(pos uint32) {
	if int(pos) <= len(b.src) {
		b.locs[pos] = struct{}{}
	}
}

func (b *Buffer) checkRange(start, end uint32) error {
	n, err := safecast.Conv[uint32](len(b.src))
	if err != nil {
		return fmt.Errorf("source length %d: %w", len(b.src), ErrRange)
	}
	if start > end || end > n {
		return fmt.Errorf("[%d,%d) in source of %d bytes: %w", start, end, n, ErrRange)
	}
	return nil
}

func (b *Buffer) add(e Edit) error {
	if err := b.checkRange(e.Start, e.End); err != nil {
		return err
	}
	for _, prev := range b.edits {
		if conflicts(prev, e) {
			return fmt.Errorf("%s [%d,%d) conflicts with %s [%d,%d): %w",
				e.Kind, e.Start, e.End, prev.Kind, prev.Start, prev.End, ErrOverlappingEdit)
		}
	}
	b.edits = append(b.edits, e)
	return nil
}

// Mapping pairs a generated offset with an original one. Generated text
// produced by an insertion has no original position; Orig is then -1.
type Mapping struct {
	Gen  int
	Orig int
}

// Unmapped reports whether the mapping marks inserted text.
func (m Mapping) Unmapped() bool { return m.Orig < 0 }

// Rendered is the output of Render.
type Rendered struct {
	Text     string
	Mappings []Mapping // sorted by Gen, then by Orig
}

// Render applies all edits and returns the edited text. It re-validates the
// whole edit set, so a Buffer whose edits were built by hand still fails
// with ErrOverlappingEdit instead of producing garbage.
func (b *Buffer) Render() (*Rendered, error) {
	edits := b.Edits()
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}
		// на одной позиции: InsertLeft, затем InsertRight, затем Overwrite
		if ri, rj := rank(edits[i].Kind), rank(edits[j].Kind); ri != rj {
			return ri < rj
		}
		return edits[i].End < edits[j].End
	})
	for i := range edits {
		if err := b.checkRange(edits[i].Start, edits[i].End); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(edits); j++ {
			if conflicts(edits[i], edits[j]) {
				return nil, fmt.Errorf("render: %w", ErrOverlappingEdit)
			}
		}
	}

	locs := make([]int, 0, len(b.locs))
	for pos := range b.locs {
		locs = append(locs, int(pos))
	}
	sort.Ints(locs)

	r := &renderer{src: b.src, locs: locs}
	cursor := 0
	for _, e := range edits {
		start, end := int(e.Start), int(e.End)
		r.keep(cursor, start)
		if e.Kind == Overwrite {
			r.mark(start)
			r.out.WriteString(e.Text)
			cursor = end
			continue
		}
		r.unmapped()
		r.out.WriteString(e.Text)
		cursor = start
	}
	r.keep(cursor, len(b.src))

	return &Rendered{Text: r.out.String(), Mappings: r.maps}, nil
}

type renderer struct {
	src  string
	locs []int
	out  strings.Builder
	maps []Mapping
}

// mark maps the current generated offset to orig. A later mark at the same
// generated offset replaces the earlier one.
func (r *renderer) mark(orig int) {
	gen := r.out.Len()
	if n := len(r.maps); n > 0 && r.maps[n-1].Gen == gen {
		r.maps[n-1].Orig = orig
		return
	}
	r.maps = append(r.maps, Mapping{Gen: gen, Orig: orig})
}

func (r *renderer) unmapped() { r.mark(-1) }

// keep copies original [from, to) and maps its start, every line start
// inside it and every registered location inside it.
func (r *renderer) keep(from, to int) {
	if from >= to {
		return
	}
	base := r.out.Len() - from
	r.mark(from)
	i := sort.SearchInts(r.locs, from+1)
	for off := from + 1; off < to; off++ {
		lineStart := r.src[off-1] == '\n'
		isLoc := i < len(r.locs) && r.locs[i] == off
		if isLoc {
			i++
		}
		if lineStart || isLoc {
			r.maps = append(r.maps, Mapping{Gen: base + off, Orig: off})
		}
	}
	r.out.WriteString(r.src[from:to])
}
