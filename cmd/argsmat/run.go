package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"argsmat/internal/driver"
	"argsmat/internal/srcmap"
	"argsmat/internal/trace"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [file.js|directory]...",
	Short: "Rewrite files in place and write source maps next to them",
	Long: `Rewrite every matching file under the given paths (default ".").
Changed files are replaced and <file>.map is written next to each one.`,
	RunE: runRewrite,
}

func init() {
	registerTransformFlags(runCmd)
	runCmd.Flags().Bool("stdout", false, "print the rewritten file to stdout instead of writing it (single file only)")
	runCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return fmt.Errorf("failed to get stdout flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	showUI, err := wantProgressUI(uiValue)
	if err != nil {
		return err
	}

	if toStdout {
		if len(settings.targets) != 1 {
			return fmt.Errorf("--stdout takes exactly one file")
		}
		return runToStdout(cmd, settings)
	}

	opts := settings.driverOptions(cmd, driver.WriteInPlace)
	useUI := settings.format == "pretty" && !settings.quiet && showUI

	var runs []*driver.Run
	for _, target := range settings.targets {
		var run *driver.Run
		if useUI {
			run, err = runWithUI(cmd.Context(), "argsmat "+target, target, opts)
		} else {
			run, err = driver.Process(cmd.Context(), target, opts)
		}
		if err != nil {
			return err
		}
		runs = append(runs, run)
	}
	return finish(cmd, settings, runs, false)
}

// runToStdout rewrites one file without touching it and prints the result.
// The map, if any, is inlined as a data URL.
func runToStdout(cmd *cobra.Command, settings *runSettings) error {
	target := settings.targets[0]
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("--stdout needs a file, %s is a directory", target)
	}
	opts := settings.driverOptions(cmd, driver.WriteNone)
	run, err := driver.ProcessFile(cmd.Context(), target, opts)
	if err != nil {
		return err
	}
	res := run.Files[0]
	out := cmd.OutOrStdout()
	if res.Changed {
		if err := writeCode(out, res); err != nil {
			return err
		}
	} else if file := run.FileSet.Get(res.FileID); file != nil && res.Err == nil {
		if _, err := out.Write(file.Content); err != nil {
			return err
		}
	}
	// диагностики идут в stderr, чтобы не портить код
	return finishTo(cmd, cmd.ErrOrStderr(), settings, []*driver.Run{run}, false)
}

func writeCode(w io.Writer, res driver.FileResult) error {
	code := res.Code
	if res.Map != nil {
		if len(code) > 0 && code[len(code)-1] != '\n' {
			code += "\n"
		}
		code += "//# sourceMappingURL=" + srcmap.DataURL(res.Map) + "\n"
	}
	_, err := io.WriteString(w, code)
	return err
}

// tracerOf returns the tracer attached to cmd.
func tracerOf(cmd *cobra.Command) trace.Tracer {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return trace.FromContext(ctx)
}
