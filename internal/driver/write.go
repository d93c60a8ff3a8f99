package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"argsmat/internal/source"
)

// WriteMode selects what happens to a changed file.
type WriteMode uint8

const (
	// WriteNone leaves files on disk alone; results stay in memory.
	WriteNone WriteMode = iota
	// WriteInPlace replaces the file and writes <file>.map next to it.
	WriteInPlace
)

const mapURLPrefix = "//# sourceMappingURL="

// WriteResult writes res back over file. Nothing is written for an
// unchanged result.
func WriteResult(file *source.File, res *FileResult, mode WriteMode) error {
	if mode == WriteNone || !res.Changed {
		return nil
	}
	code := res.Code
	if res.Map != nil {
		mapPath := file.Path + ".map"
		if err := writeAtomic(mapPath, res.Map, 0); err != nil {
			return err
		}
		code = withMapURL(code, filepath.Base(mapPath), file.Flags&source.FileHasCRLF != 0)
	}

	content := make([]byte, 0, len(code)+len(source.BOM))
	if file.Flags&source.FileHadBOM != 0 {
		content = append(content, source.BOM...)
	}
	content = append(content, code...)

	var perm os.FileMode
	if info, err := os.Stat(file.Path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := writeAtomic(file.Path, content, perm); err != nil {
		return err
	}
	res.Written = true
	return nil
}

// withMapURL appends a sourceMappingURL comment unless code already has one.
// crlf files get a CRLF line.
func withMapURL(code, name string, crlf bool) string {
	if strings.Contains(code, mapURLPrefix) {
		return code
	}
	sep := "\n"
	if crlf {
		sep = "\r\n"
	}
	if code != "" && !strings.HasSuffix(code, "\n") {
		code += sep
	}
	return code + mapURLPrefix + name + sep
}

// writeAtomic пишет во временный файл рядом с целью и переименовывает его.
func writeAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if perm == 0 {
		perm = 0o644
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
