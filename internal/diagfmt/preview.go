package diagfmt

import (
	"bytes"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"argsmat/internal/diag"
	"argsmat/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview returns the whole lines touched by edit, before and
// after applying it.
func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	if edit.Span.End < edit.Span.Start || edit.Span.End > size {
		return fixEditPreview{}, fmt.Errorf("edit span %v out of range", edit.Span)
	}

	content := file.Content
	start, end := int(edit.Span.Start), int(edit.Span.End)
	// расширяем до целых строк
	blockStart := bytes.LastIndexByte(content[:start], '\n') + 1
	blockEnd := len(content)
	if i := bytes.IndexByte(content[end:], '\n'); i >= 0 {
		blockEnd = end + i + 1
	}

	block := content[blockStart:blockEnd]
	var after bytes.Buffer
	after.Grow(len(block) + len(edit.NewText))
	after.Write(content[blockStart:start])
	after.WriteString(edit.NewText)
	after.Write(content[end:blockEnd])

	return fixEditPreview{
		before: splitPreviewLines(block),
		after:  splitPreviewLines(after.Bytes()),
	}, nil
}

// splitPreviewLines drops the final newline and any \r before newlines.
func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
