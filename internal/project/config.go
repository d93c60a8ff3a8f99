// Package project loads argsmat.toml.
package project

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"argsmat/internal/classify"
	"argsmat/internal/rewrite"
)

// ErrInvalidConfig wraps validation failures of argsmat.toml.
var ErrInvalidConfig = errors.New("invalid config")

// Config mirrors argsmat.toml.
type Config struct {
	Transform TransformConfig `toml:"transform"`
	Files     FilesConfig     `toml:"files"`
	Run       RunConfig       `toml:"run"`
}

// TransformConfig is the [transform] table.
type TransformConfig struct {
	SourceMap bool            `toml:"sourcemap"`
	Policy    classify.Policy `toml:"policy"`
	ArgsName  string          `toml:"args_name"`
	LenName   string          `toml:"len_name"`
}

// FilesConfig is the [files] table.
type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// RunConfig is the [run] table.
type RunConfig struct {
	Jobs  int  `toml:"jobs"`
	Cache bool `toml:"cache"`
}

// Manifest is a loaded configuration together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used when no argsmat.toml exists.
func Default() Config {
	return Config{
		Transform: TransformConfig{
			SourceMap: true,
			Policy:    classify.PolicyPermissive,
			ArgsName:  rewrite.DefaultArgsName,
			LenName:   rewrite.DefaultLenName,
		},
		Files: FilesConfig{
			Include: []string{"**/*.js", "**/*.mjs", "**/*.cjs"},
			Exclude: []string{"node_modules/**", "**/*.min.js"},
		},
		Run: RunConfig{Jobs: 0, Cache: true},
	}
}

// Load reads the argsmat.toml nearest to startDir. ok is false when none
// exists; the returned manifest then carries Default() rooted at startDir.
func Load(startDir string) (*Manifest, bool, error) {
	cfgPath, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: Default()}, false, nil
	}
	cfg, err := LoadFile(cfgPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   cfgPath,
		Root:   filepath.Dir(cfgPath),
		Config: cfg,
	}, true, nil
}

// LoadFile decodes one argsmat.toml. Keys that are not set keep their
// defaults.
func LoadFile(cfgPath string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(cfgPath, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", cfgPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys %s: %w", cfgPath, strings.Join(keys, ", "), ErrInvalidConfig)
	}
	// пустой список в файле означает "как по умолчанию", а не "ничего"
	if meta.IsDefined("files", "include") && len(cfg.Files.Include) == 0 {
		cfg.Files.Include = Default().Files.Include
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", cfgPath, err)
	}
	return cfg, nil
}

// Validate checks names and globs.
func (c Config) Validate() error {
	for _, name := range []struct{ key, val string }{
		{"transform.args_name", c.Transform.ArgsName},
		{"transform.len_name", c.Transform.LenName},
	} {
		if !isIdentifier(name.val) {
			return fmt.Errorf("%s %q is not a JavaScript identifier: %w", name.key, name.val, ErrInvalidConfig)
		}
	}
	if c.Transform.ArgsName == c.Transform.LenName {
		return fmt.Errorf("transform.args_name and transform.len_name must differ: %w", ErrInvalidConfig)
	}
	if c.Run.Jobs < 0 {
		return fmt.Errorf("run.jobs must not be negative: %w", ErrInvalidConfig)
	}
	for _, pattern := range append(append([]string(nil), c.Files.Include...), c.Files.Exclude...) {
		for _, seg := range strings.Split(pattern, "/") {
			if seg == "**" {
				continue
			}
			if _, err := path.Match(seg, ""); err != nil {
				return fmt.Errorf("files pattern %q: %w", pattern, ErrInvalidConfig)
			}
		}
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" || s == "arguments" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
