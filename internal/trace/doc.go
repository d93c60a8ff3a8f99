// Package trace records what argsmat does while it runs.
//
// Tracing is enabled from the command line:
//
//	argsmat run --trace=- --trace-level=detail src/
//
// # Architecture
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: last N events in memory, dumped on internal errors
//   - MultiTracer: fan-out to several tracers
//
// # Levels and scopes
//
// LevelPhase shows driver and per-file spans, LevelDetail adds the
// parse/walk/render phases of each file and LevelDebug adds one point event
// per `arguments` occurrence with the classifier's reason.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "file:"+path, parentID)
//	defer span.End("")
package trace
