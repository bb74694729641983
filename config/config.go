// Package config holds the frozen settings of a yokedox run.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mongodb-university/yokedox/java/javadoc"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".yokedox.toml"

type Config struct {
	Source      string   `toml:"source"`
	Tree        string   `toml:"tree"`
	Output      string   `toml:"output"`
	Filter      []string `toml:"filter"`
	DocRoot     string   `toml:"doc_root"`
	Indent      string   `toml:"indent"`
	Parallelism int      `toml:"parallelism"`
	KeepGoing   bool     `toml:"keep_going"`

	ExternalEntityPatterns []ExternalEntityPattern `toml:"external_entity_patterns"`

	Metrics Metrics `toml:"metrics"`
	Tracing Tracing `toml:"tracing"`
	Watch   Watch   `toml:"watch"`
}

// ExternalEntityPattern links matching type names to external documentation.
type ExternalEntityPattern struct {
	From     string `toml:"from"`
	ToPrefix string `toml:"to_prefix"`
	ToSuffix string `toml:"to_suffix"`
}

type Metrics struct {
	Textfile string `toml:"textfile"` // node exporter textfile path
}

type Tracing struct {
	Endpoint string `toml:"endpoint"` // OTLP gRPC collector, host:port
	Insecure bool   `toml:"insecure"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Exclude  []string      `toml:"exclude"` // source paths neither parsed nor watched
}

// Default returns the settings used when no file and no flags set a value.
func Default() *Config {
	return &Config{
		Output:      "-",
		Indent:      "  ",
		Parallelism: runtime.GOMAXPROCS(0),
		Watch:       Watch{Debounce: 500 * time.Millisecond},
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// LoadOptional loads path when it exists and returns the defaults otherwise.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes TOML text on top of the defaults and validates the result.
func Parse(text string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Output) == "" {
		cfg.Output = "-"
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

// Validate checks settings that can be wrong independently of the input.
func (c *Config) Validate() error {
	if c.Source != "" && c.Tree != "" {
		return fmt.Errorf("source and tree are mutually exclusive")
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("indent must contain only spaces and tabs, got %q", c.Indent)
	}
	if _, err := NewFilter(c.Filter); err != nil {
		return err
	}
	if _, err := c.Patterns(); err != nil {
		return err
	}
	for i, p := range c.ExternalEntityPatterns {
		if strings.TrimSpace(p.ToPrefix) == "" {
			return fmt.Errorf("external_entity_patterns[%d].to_prefix must not be empty", i)
		}
	}
	if _, err := NewPathFilter(c.Watch.Exclude); err != nil {
		return fmt.Errorf("watch.exclude: %w", err)
	}
	return nil
}

// Patterns compiles the external entity patterns in declaration order.
func (c *Config) Patterns() ([]javadoc.ExternalEntityPattern, error) {
	patterns := make([]javadoc.ExternalEntityPattern, 0, len(c.ExternalEntityPatterns))
	for _, p := range c.ExternalEntityPatterns {
		compiled, err := javadoc.NewExternalEntityPattern(p.From, p.ToPrefix, p.ToSuffix)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, compiled)
	}
	return patterns, nil
}

// Clone returns a copy that shares nothing with c, so a run can freeze its
// settings while flags keep changing the original.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Filter = append([]string(nil), c.Filter...)
	clone.ExternalEntityPatterns = append([]ExternalEntityPattern(nil), c.ExternalEntityPatterns...)
	clone.Watch.Exclude = append([]string(nil), c.Watch.Exclude...)
	return &clone
}
