package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"argsmat/internal/diag"
	"argsmat/internal/diagfmt"
	"argsmat/internal/driver"
	"argsmat/internal/observ"
)

func finish(cmd *cobra.Command, settings *runSettings, runs []*driver.Run, check bool) error {
	return finishTo(cmd, cmd.OutOrStdout(), settings, runs, check)
}

// finishTo prints diagnostics, the summary and timings, then maps the
// outcome to an exit code.
func finishTo(cmd *cobra.Command, out io.Writer, settings *runSettings, runs []*driver.Run, check bool) error {
	var (
		files, changed, redirected, preambles int
		hasErrors, internal                   bool
	)
	timer := observ.NewTimer()

	for _, run := range runs {
		bag := collect(run, settings)
		if err := printDiagnostics(out, bag, run, settings); err != nil {
			return err
		}
		files += len(run.Files)
		changed += run.ChangedCount()
		hasErrors = hasErrors || run.HasErrors()
		for _, fr := range run.Files {
			redirected += fr.Redirected
			preambles += fr.Preambles
			if fr.Err != nil && fr.Bag != nil && (fr.Bag.Count(diag.IntEditOverlap) > 0 || fr.Bag.Count(diag.IntScopeUnbalanced) > 0) {
				internal = true
			}
			if check && fr.Changed && !settings.quiet && settings.format == "pretty" {
				fmt.Fprintf(out, "would rewrite %s\n", fr.Path)
			}
		}
		timer.Merge(run.Timer)
	}

	if internal {
		dumpTrace(cmd.ErrOrStderr(), tracerOf(cmd))
	}

	if !settings.quiet && settings.format == "pretty" {
		verb := "rewrote"
		if check {
			verb = "would rewrite"
		}
		fmt.Fprintf(out, "%s %d of %d files (%d redirects, %d preambles)\n",
			verb, changed, files, redirected, preambles)
		if settings.configAt != "" {
			fmt.Fprintf(out, "config: %s\n", settings.configAt)
		}
	}
	if settings.timings && !settings.quiet {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	switch {
	case hasErrors:
		return exitError{code: 1}
	case check && changed > 0:
		return exitError{code: 1}
	}
	return nil
}

// collect merges the per-file bags of a run, dropping info diagnostics
// unless asked for. Timings are kept with --timings.
func collect(run *driver.Run, settings *runSettings) *diag.Bag {
	all := diag.NewBag(0)
	for _, fr := range run.Files {
		if fr.Bag == nil {
			continue
		}
		for _, d := range fr.Bag.Items() {
			if d.Severity == diag.SevInfo && !settings.explain && d.Code != diag.ObsTimings {
				continue
			}
			all.Add(d)
		}
	}
	all.Sort()
	all.Dedup()
	return all
}

func printDiagnostics(out io.Writer, bag *diag.Bag, run *driver.Run, settings *runSettings) error {
	pathMode := diagfmt.PathModeRelative
	if settings.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	if settings.format == "json" {
		return diagfmt.JSON(out, bag, run.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     settings.withNotes,
			IncludeFixes:     settings.suggest,
			IncludePreviews:  settings.preview,
			Files:            fileSummaries(run, pathMode),
		})
	}
	if settings.quiet {
		if !bag.HasErrors() {
			return nil
		}
		quiet := diag.NewBag(0)
		for _, d := range bag.Filter(diag.SevError) {
			quiet.Add(d)
		}
		bag = quiet
	}
	diagfmt.Pretty(out, bag, run.FileSet, diagfmt.PrettyOpts{
		Color:       !color.NoColor,
		Context:     1,
		PathMode:    pathMode,
		ShowNotes:   settings.withNotes,
		ShowFixes:   settings.suggest,
		ShowPreview: settings.preview,
	})
	return nil
}

func fileSummaries(run *driver.Run, mode diagfmt.PathMode) []diagfmt.FileSummary {
	out := make([]diagfmt.FileSummary, 0, len(run.Files))
	for _, fr := range run.Files {
		path := fr.Path
		if mode == diagfmt.PathModeAbsolute {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		out = append(out, diagfmt.FileSummary{
			Path:       filepath.ToSlash(path),
			Changed:    fr.Changed,
			Written:    fr.Written,
			Cached:     fr.Cached,
			Redirected: fr.Redirected,
			Kept:       fr.Kept,
			Preambles:  fr.Preambles,
		})
	}
	return out
}
