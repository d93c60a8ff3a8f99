package source

import "crypto/sha256"

// FileID is the index of a File inside its FileSet.
type FileID uint32

// FileFlags records how a file was loaded and what Load stripped from it.
type FileFlags uint8

const (
	FileVirtual FileFlags = 1 << iota // stdin, tests, rendered output
	// FileHadBOM: Load dropped a leading BOM, the writer puts it back.
	FileHadBOM
	// FileHasCRLF: the content uses \r\n. It is never normalized, only the
	// appended sourceMappingURL line follows it.
	FileHasCRLF
)

// File is one JavaScript input. Content is what the parser and the splice
// buffer see: BOM-free, line endings untouched.
type File struct {
	ID      FileID
	Path    string   // slash-separated
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte // sha256 of Content, the result cache key
	Flags   FileFlags
}

// LineCol is a position for humans: both fields start at 1, Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

// NewFile builds a File outside any FileSet, e.g. for rewritten output that
// is parsed again or resolved for a diagnostic.
func NewFile(path string, content []byte) File {
	return File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
	}
}

// Position resolves a byte offset of f.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}
