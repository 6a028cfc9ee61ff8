// Package config holds the settings of the pdfsheet driver. Values come from
// defaults, an optional YAML file, PDFSHEET_* environment variables (with
// an optional .env file) and finally command-line flags, each source
// overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv
const EnvPrefix = "PDFSHEET_"

// Format selects how tables are written
type Format string

const (
	// FormatPipe writes one line per row, each cell followed by "|".
	FormatPipe Format = "pipe"
	// FormatJSON writes an array of {page, table, rows} objects.
	FormatJSON Format = "json"
)

// DefaultGroups are the table groups of a vehicle price list
var DefaultGroups = []string{"Introduction", "Configuration", "Specification", "Accessories"}

// Config is the driver configuration
type Config struct {
	Path        string         `yaml:"path" validate:"required"`
	PageLimit   int            `yaml:"pageLimit" validate:"min=1"`
	Exhaustion  pdf.Exhaustion `yaml:"exhaustion" validate:"oneof=fail stop"`
	Format      Format         `yaml:"format" validate:"oneof=pipe json"`
	Workers     int            `yaml:"workers" validate:"min=1,max=32"`
	Password    string         `yaml:"password"`
	NoGeometry  bool           `yaml:"noGeometry"`
	UnicodeNorm string         `yaml:"unicodeNorm" validate:"omitempty,oneof=NFC NFD NFKC NFKD"`
	LogLevel    string         `yaml:"logLevel" validate:"oneof=debug info warn error"`
	Groups      []string       `yaml:"groups" validate:"min=1,dive,required"`
}

// Default returns a two-page configuration that fails when pages run out
func Default() *Config {
	return &Config{
		PageLimit:  2,
		Exhaustion: pdf.ExhaustionFail,
		Format:     FormatPipe,
		Workers:    1,
		LogLevel:   "info",
		Groups:     append([]string(nil), DefaultGroups...),
	}
}

// Validate checks the configuration against its validate tags
func (cfg *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadFile overlays the YAML file at path onto cfg; keys missing from the
// file keep their current values
func (cfg *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a lookup over the process environment, falling back to
// the given .env files. Missing files are ignored.
func EnvLookup(dotenvFiles ...string) (LookupFunc, error) {
	fileValues := make(map[string]string)
	for _, file := range dotenvFiles {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		for k, v := range values {
			if _, ok := fileValues[k]; !ok {
				fileValues[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	}, nil
}

// ApplyEnv overlays PDFSHEET_* variables onto cfg
func (cfg *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(name string) (string, bool) {
		return lookup(EnvPrefix + name)
	}

	if v, ok := get("PATH"); ok {
		cfg.Path = v
	}
	if v, ok := get("PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPAGES %q: %w", EnvPrefix, v, err)
		}
		cfg.PageLimit = n
	}
	if v, ok := get("ON_EXHAUSTED"); ok {
		cfg.Exhaustion = pdf.Exhaustion(v)
	}
	if v, ok := get("FORMAT"); ok {
		cfg.Format = Format(v)
	}
	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sWORKERS %q: %w", EnvPrefix, v, err)
		}
		cfg.Workers = n
	}
	if v, ok := get("PASSWORD"); ok {
		cfg.Password = v
	}
	if v, ok := get("NO_GEOMETRY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sNO_GEOMETRY %q: %w", EnvPrefix, v, err)
		}
		cfg.NoGeometry = b
	}
	if v, ok := get("UNICODE_NORM"); ok {
		cfg.UnicodeNorm = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("GROUPS"); ok {
		cfg.Groups = splitList(v)
	}
	return nil
}

// Load builds a configuration from defaults, the optional YAML file and
// the environment. It does not validate; callers apply flags first.
func Load(file string, lookup LookupFunc) (*Config, error) {
	cfg := Default()
	if file != "" {
		if err := cfg.LoadFile(file); err != nil {
			return nil, err
		}
	}
	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadOptions returns the document loading options of the configuration
func (cfg *Config) LoadOptions() []pdf.LoadOption {
	var opts []pdf.LoadOption
	if cfg.Password != "" {
		opts = append(opts, pdf.WithPassword(cfg.Password))
	}
	if cfg.NoGeometry {
		opts = append(opts, pdf.WithoutGeometry())
	}
	return opts
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
