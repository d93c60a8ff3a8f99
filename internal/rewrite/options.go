package rewrite

import (
	"fmt"
	"strings"

	"argsmat/internal/classify"
	"argsmat/internal/diag"
	"argsmat/internal/observ"
	"argsmat/internal/trace"
)

// Default names of the materialized copy and its length counter.
const (
	DefaultArgsName = "$_args"
	DefaultLenName  = "$_len"
)

// Options configures Process.
type Options struct {
	// Policy selects which member accesses are kept.
	Policy classify.Policy
	// ArgsName and LenName name the locals declared by the preamble.
	ArgsName string
	LenName  string
	// SourceMap enables map generation.
	SourceMap bool
	// MapFile is the generated file name recorded in the map.
	MapFile string
	// MapIncludeContent embeds the original text in the map.
	MapIncludeContent bool
	// MaxFileSize limits the parser input; 0 keeps the parser default.
	MaxFileSize int

	Reporter diag.Reporter
	Tracer   trace.Tracer
	Timer    *observ.Timer
}

// DefaultOptions returns options with source maps on and the permissive
// policy.
func DefaultOptions() Options {
	return Options{
		Policy:    classify.PolicyPermissive,
		ArgsName:  DefaultArgsName,
		LenName:   DefaultLenName,
		SourceMap: true,
	}
}

func (o Options) withDefaults() Options {
	if o.ArgsName == "" {
		o.ArgsName = DefaultArgsName
	}
	if o.LenName == "" {
		o.LenName = DefaultLenName
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	return o
}

// Preamble returns the statement that copies `arguments` into argsName.
func Preamble(argsName, lenName string) string {
	return fmt.Sprintf(
		"var %[2]s = arguments.length, %[1]s = new Array(%[2]s); while (%[2]s--) { %[1]s[%[2]s] = arguments[%[2]s]; }",
		argsName, lenName)
}

// leadingWhitespace returns the whitespace prefix of s.
func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t\r\n\f\v"))]
}
