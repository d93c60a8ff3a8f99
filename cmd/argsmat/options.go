package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"argsmat/internal/classify"
	"argsmat/internal/driver"
	"argsmat/internal/project"
	"argsmat/internal/rewrite"
	"argsmat/internal/trace"
)

// registerTransformFlags adds the flags shared by run and check.
func registerTransformFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to argsmat.toml (default: nearest to the first target)")
	cmd.Flags().String("policy", "", "which reads stay on arguments (permissive|member|strict)")
	cmd.Flags().Bool("no-sourcemap", false, "do not generate source maps")
	cmd.Flags().String("args-name", "", "name of the materialized copy")
	cmd.Flags().String("len-name", "", "name of the length counter")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("no-cache", false, "disable the result cache")
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	cmd.Flags().Bool("explain", false, "also print info diagnostics (every redirect and preamble)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include the applied edits in output")
	cmd.Flags().Bool("preview", false, "show before/after lines for each edit (implies --suggest)")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// runSettings is everything run and check need after flags and
// argsmat.toml are merged.
type runSettings struct {
	targets   []string
	config    project.Config
	configAt  string
	format    string
	explain   bool
	withNotes bool
	suggest   bool
	preview   bool
	fullPath  bool
	quiet     bool
	timings   bool
	maxDiags  int
	noCache   bool
}

func loadSettings(cmd *cobra.Command, args []string) (*runSettings, error) {
	s := &runSettings{targets: args}
	if len(s.targets) == 0 {
		s.targets = []string{"."}
	}

	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if cfgPath != "" {
		cfg, err := project.LoadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		s.config, s.configAt = cfg, cfgPath
	} else {
		manifest, found, err := project.Load(startDir(s.targets[0]))
		if err != nil {
			return nil, err
		}
		s.config = manifest.Config
		if found {
			s.configAt = manifest.Path
		}
	}

	if err := applyFlagOverrides(cmd, &s.config); err != nil {
		return nil, err
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	if s.format, err = cmd.Flags().GetString("format"); err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch s.format {
	case "pretty", "json":
	default:
		return nil, fmt.Errorf("unknown format %q (expected pretty|json)", s.format)
	}
	if s.explain, err = cmd.Flags().GetBool("explain"); err != nil {
		return nil, fmt.Errorf("failed to get explain flag: %w", err)
	}
	if s.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.suggest, err = cmd.Flags().GetBool("suggest"); err != nil {
		return nil, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if s.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return nil, fmt.Errorf("failed to get preview flag: %w", err)
	}
	s.suggest = s.suggest || s.preview
	if s.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return nil, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if s.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiags, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return s, nil
}

// applyFlagOverrides: явно заданные флаги сильнее argsmat.toml
func applyFlagOverrides(cmd *cobra.Command, cfg *project.Config) error {
	flags := cmd.Flags()
	if flags.Changed("policy") {
		value, _ := flags.GetString("policy")
		policy, err := classify.ParsePolicy(value)
		if err != nil {
			return err
		}
		cfg.Transform.Policy = policy
	}
	if flags.Changed("no-sourcemap") {
		off, _ := flags.GetBool("no-sourcemap")
		cfg.Transform.SourceMap = !off
	}
	if flags.Changed("args-name") {
		cfg.Transform.ArgsName, _ = flags.GetString("args-name")
	}
	if flags.Changed("len-name") {
		cfg.Transform.LenName, _ = flags.GetString("len-name")
	}
	if flags.Changed("jobs") {
		cfg.Run.Jobs, _ = flags.GetInt("jobs")
	}
	return nil
}

// driverOptions builds driver options; the cache is opened lazily and a
// failure to open it only disables caching.
func (s *runSettings) driverOptions(cmd *cobra.Command, write driver.WriteMode) driver.Options {
	tr := rewrite.Options{
		Policy:            s.config.Transform.Policy,
		ArgsName:          s.config.Transform.ArgsName,
		LenName:           s.config.Transform.LenName,
		SourceMap:         s.config.Transform.SourceMap,
		MapIncludeContent: s.config.Transform.SourceMap,
		Tracer:            trace.FromContext(cmd.Context()),
	}
	opts := driver.Options{
		Transform:      tr,
		Jobs:           s.config.Run.Jobs,
		MaxDiagnostics: s.maxDiags,
		Filter:         driver.NewFilter(s.config.Files.Include, s.config.Files.Exclude),
		Write:          write,
		Timings:        s.timings,
	}
	if s.config.Run.Cache && !s.noCache {
		cache, err := driver.OpenDiskCache("argsmat")
		if err != nil {
			if !s.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: result cache disabled: %v\n", err)
			}
		} else {
			opts.Cache = cache
		}
	}
	return opts
}

func startDir(target string) string {
	info, err := os.Stat(target)
	if err == nil && !info.IsDir() {
		return filepath.Dir(target)
	}
	return target
}
