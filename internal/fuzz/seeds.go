package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

var inlineSeeds = []string{
	"",
	"function f() { return arguments; }",
	"function f(a = arguments[0]) { return g(arguments); }",
	"var x = arguments;",
	"function f() { 'use strict'; return () => arguments.length; }",
	"class A { m() { return { arguments }; } }",
	"function* g() { yield* arguments; }",
	"function f() { return { [arguments[0]]() { return arguments; } }; }",
	"function f() {\r\n\treturn [...arguments];\r\n}\r\n",
	"function f() { /* c */ return arguments[arguments.length - 1]; }",
	"function (",
}

func addCorpusSeeds(f *testing.F) {
	addSampleSeeds(f)
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
}

func addSampleSeeds(f *testing.F) {
	root := filepath.Join("..", "rewrite", "testdata", "samples")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по samples, добавляем все *.js файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".js" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
