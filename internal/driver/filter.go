package driver

import (
	"path"
	"path/filepath"
	"strings"
)

// Filter selects files by slash-separated globs relative to the run root.
// A "**" segment matches any number of directories; other segments use
// path.Match. A pattern without a slash matches the base name at any depth.
type Filter struct {
	Include []string
	Exclude []string
}

// NewFilter creates a Filter. An empty include list matches every .js file.
func NewFilter(include, exclude []string) *Filter {
	if len(include) == 0 {
		include = []string{"**/*.js"}
	}
	return &Filter{Include: include, Exclude: exclude}
}

// Match reports whether rel (relative to the root) should be processed.
func (f *Filter) Match(rel string) bool {
	if f == nil {
		return strings.HasSuffix(rel, ".js")
	}
	rel = filepath.ToSlash(rel)
	if matchAny(f.Exclude, rel) {
		return false
	}
	return matchAny(f.Include, rel)
}

// SkipDir reports whether a whole directory is excluded. Only exclude
// patterns that end in "/**" prune directories.
func (f *Filter) SkipDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	if base := path.Base(rel); base == ".git" || base == ".hg" || base == ".svn" {
		return true
	}
	if f == nil {
		return false
	}
	for _, p := range f.Exclude {
		prefix, ok := strings.CutSuffix(p, "/**")
		if ok && matchGlob(prefix, rel) {
			return true
		}
	}
	return false
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if matchGlob(p, rel) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, rel string) bool {
	if !strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, path.Base(rel))
		return err == nil && ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pat, name []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		ok, err := path.Match(pat[0], name[0])
		if err != nil || !ok {
			return false
		}
		pat, name = pat[1:], name[1:]
	}
	return len(name) == 0
}
