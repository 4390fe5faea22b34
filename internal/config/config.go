// Package config loads the doctree TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
)

// FileName is the config file looked up at the repository root.
const FileName = ".doctree.toml"

// Config is the decoded configuration file.
type Config struct {
	Input  Input  `toml:"input"`
	Output Output `toml:"output"`
	Tags   Tags   `toml:"tags"`
	Filter Filter `toml:"filter"`
	Server Server `toml:"server"`
}

// Input selects the source files of a build. Include and Exclude are glob
// patterns matched against slash-separated paths relative to the build
// root; "**" crosses directories.
type Input struct {
	Include   []string `toml:"include" validate:"dive,required"`
	Exclude   []string `toml:"exclude" validate:"dive,required"`
	Languages []string `toml:"languages" validate:"dive,oneof=javascript typescript tsx"`
	SkipDirs  []string `toml:"skip_dirs" validate:"dive,required"`
}

// Output configures persistence and rendering.
type Output struct {
	DB         string `toml:"db"`
	Format     string `toml:"format" validate:"oneof=json text yaml"`
	KeepBuilds int    `toml:"keep_builds" validate:"gte=0"`
}

// Tags maps extra tag names onto built-in tags.
type Tags struct {
	Aliases map[string]string `toml:"aliases" validate:"dive,keys,required,endkeys,required"`
}

// Filter holds the default doc filter expression.
type Filter struct {
	Expr string `toml:"expr"`
}

// Server configures the HTTP lookup service.
type Server struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// DefaultSkipDirs are never descended into.
var DefaultSkipDirs = []string{".git", "node_modules", "dist", "build", "coverage", ".doctree"}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, defaults and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and returns Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func applyDefaults(cfg *Config) {
	if len(cfg.Input.Include) == 0 {
		cfg.Input.Include = []string{"**"}
	}
	if len(cfg.Input.SkipDirs) == 0 {
		cfg.Input.SkipDirs = append([]string(nil), DefaultSkipDirs...)
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = "localhost:8080"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their TOML names so errors match the file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and that every glob pattern compiles.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", tomlPath(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	for _, p := range append(append([]string(nil), c.Input.Include...), c.Input.Exclude...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("config: input pattern %q: %w", p, err)
		}
	}
	return nil
}

// tomlPath turns "Config.output.format" into "output.format".
func tomlPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
