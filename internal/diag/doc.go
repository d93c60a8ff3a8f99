// Package diag defines the diagnostic model shared by the parser, the
// rewriter and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier (see codes.go) with stable string form
//     such as SYN2001 or ARG3001.
//   - Message – short human oriented text naming the unit of work.
//   - Primary span – byte range in the offending file.
//   - Notes – optional secondary spans, e.g. the function that owns the
//     materialized copy.
//   - Fixes – the text edits the rewriter issued for this finding.
//
// # Emitting diagnostics
//
// Producers report through a Reporter so that storage stays decoupled.
// ReportBuilder (ReportError/ReportWarning/ReportInfo) chains WithNote and
// WithFix before Emit. BagReporter collects into a Bag; SyncReporter makes a
// single sink safe for the driver's worker goroutines; DedupReporter drops
// repeated findings.
//
// Package diag performs no formatting or IO; rendering lives in
// internal/diagfmt.
package diag
