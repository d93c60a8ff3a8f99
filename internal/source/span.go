package source

import "strconv"

// Span is a half-open byte range [Start, End) of one file. Zero-width spans
// mark insertion points, such as where a preamble goes.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// Empty reports a zero-width span.
func (s Span) Empty() bool { return s.Start == s.End }

// String renders the span as file:start-end, as used in internal errors.
func (s Span) String() string {
	return strconv.FormatUint(uint64(s.File), 10) + ":" +
		strconv.FormatUint(uint64(s.Start), 10) + "-" +
		strconv.FormatUint(uint64(s.End), 10)
}

// Contains reports whether the byte at off belongs to s. End is exclusive,
// so an insertion at End is outside.
func (s Span) Contains(off uint32) bool {
	return s.Start <= off && off < s.End
}

// Overlaps reports shared bytes. Insertion points overlap nothing; conflict
// checks test them with Contains.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File || s.Empty() || other.Empty() {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}

// Cover grows s to include other. Spans of another file leave s as is.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}
