package diagfmt

import "argsmat/internal/source"

// PathMode picks how a file is named in reports. check and run use
// PathModeRelative (to the project root) unless --fullpath is set.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // as given, long absolute paths shortened
	PathModeAbsolute
	PathModeRelative // to FileSet.BaseDir, else the working directory
	PathModeBasename
)

var pathModeNames = [...]string{
	PathModeAuto:     "auto",
	PathModeAbsolute: "absolute",
	PathModeRelative: "relative",
	PathModeBasename: "basename",
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if int(mode) >= len(pathModeNames) {
		return f.Path
	}
	var base string
	if mode == PathModeRelative {
		base = fs.BaseDir()
	}
	return f.FormatPath(pathModeNames[mode], base)
}
