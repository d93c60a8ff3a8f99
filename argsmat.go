// Package argsmat rewrites JavaScript so functions stop reading the implicit
// `arguments` object where doing so would leak it, using a copy materialized
// at the top of the function instead.
//
//	out, err := argsmat.Process(src, "lib/util.js", argsmat.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	if out == nil {
//		// unchanged
//	}
package argsmat

import (
	"context"

	"argsmat/internal/classify"
	"argsmat/internal/diag"
	"argsmat/internal/rewrite"
	"argsmat/internal/source"
	"argsmat/internal/srcmap"
	"argsmat/internal/trace"
)

// Policy re-exports classify.Policy.
type Policy = classify.Policy

// Policies accepted by Options.Policy.
const (
	PolicyPermissive = classify.PolicyPermissive
	PolicyMember     = classify.PolicyMember
	PolicyStrict     = classify.PolicyStrict
)

// Options configures Process.
type Options struct {
	SourceMap bool
	Policy    Policy
	ArgsName  string
	LenName   string
	Reporter  diag.Reporter
	Tracer    trace.Tracer
}

// DefaultOptions returns source maps on, the permissive policy and the
// $_args/$_len names.
func DefaultOptions() Options {
	d := rewrite.DefaultOptions()
	return Options{
		SourceMap: d.SourceMap,
		Policy:    d.Policy,
		ArgsName:  d.ArgsName,
		LenName:   d.LenName,
	}
}

// Output is the rewritten unit.
type Output struct {
	Code string
	Map  *srcmap.Map
}

// Process rewrites src, identified by label in diagnostics and the source
// map. It returns nil, nil when the unit is left unchanged: it did not parse
// or nothing needed a redirect. Errors are internal invariant violations.
func Process(src []byte, label string, opts Options) (*Output, error) {
	return ProcessContext(context.Background(), src, label, opts)
}

// ProcessContext is Process with a context for cancellation and tracing.
func ProcessContext(ctx context.Context, src []byte, label string, opts Options) (*Output, error) {
	file := source.NewFile(label, src)
	res, err := rewrite.Process(ctx, &file, rewrite.Options{
		Policy:            opts.Policy,
		ArgsName:          opts.ArgsName,
		LenName:           opts.LenName,
		SourceMap:         opts.SourceMap,
		MapIncludeContent: opts.SourceMap,
		Reporter:          opts.Reporter,
		Tracer:            opts.Tracer,
	})
	if err != nil || res == nil {
		return nil, err
	}
	return &Output{Code: res.Code, Map: res.Map}, nil
}
