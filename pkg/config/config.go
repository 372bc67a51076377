// Package config holds the settings of a decompiler batch run. Settings come
// from an optional YAML file and are then overridden by the command line
// flags the user actually set.
package config

import (
	"os"
	"runtime"

	"github.com/raymyers/ralph-decomp/pkg/typeprop"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// Config is the settings for one batch run
type Config struct {
	// Types is the type system file
	Types string `yaml:"types"`
	// Labels is the label and symbol name file
	Labels string `yaml:"labels"`
	// OutDir receives one .gc file per function, empty for stdout only
	OutDir string `yaml:"out"`
	// Jobs is the number of functions decompiled at once
	Jobs int `yaml:"jobs"`

	// DumpTypes prints the type map after every top-level statement
	DumpTypes bool `yaml:"dump-types"`
	// DumpForms prints each function on one line instead of pretty printed
	DumpForms bool `yaml:"dump-forms"`
	// WriteAllTypes writes all-types.gc to OutDir, ignored without one
	WriteAllTypes bool `yaml:"write-all-types"`

	MaxLoopIterations int `yaml:"max-loop-iterations"`

	// Functions restricts the run to the named functions when not empty
	Functions []string `yaml:"functions"`

	// Verbosity is a tlog topic filter such as "decomp,dump_types"
	Verbosity string `yaml:"verbosity"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Jobs:              runtime.NumCPU(),
		WriteAllTypes:     true,
		MaxLoopIterations: typeprop.DefaultMaxLoopIterations,
	}
}

// Load parses a YAML config on top of the defaults
func Load(data []byte) (*Config, error) {
	c := Default()

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadFile reads a YAML config file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	c, err := Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", path)
	}

	return c, nil
}

// Validate checks values that have no sensible interpretation
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return errors.New("jobs must be at least 1, got %v", c.Jobs)
	}
	if c.MaxLoopIterations < 1 {
		return errors.New("max-loop-iterations must be at least 1, got %v", c.MaxLoopIterations)
	}
	return nil
}

// Selected reports whether the function should be decompiled
func (c *Config) Selected(name string) bool {
	if len(c.Functions) == 0 {
		return true
	}
	for _, f := range c.Functions {
		if f == name {
			return true
		}
	}
	return false
}

// Flag names shared by RegisterFlags and ApplyFlags
const (
	FlagTypes     = "types"
	FlagLabels    = "labels"
	FlagOut       = "out"
	FlagJobs      = "jobs"
	FlagDumpTypes = "dtypes"
	FlagDumpForms = "dforms"
	FlagFunction  = "function"
	FlagVerbosity = "verbosity"
)

// RegisterFlags defines the command line flags that override config
// values. Defaults shown in the help text are those of Default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.String(FlagTypes, d.Types, "Type system file (YAML)")
	fs.String(FlagLabels, d.Labels, "Label and symbol name file (YAML)")
	fs.StringP(FlagOut, "o", d.OutDir, "Write one .gc file per function to this directory")
	fs.IntP(FlagJobs, "j", d.Jobs, "Number of functions decompiled in parallel")
	fs.Bool(FlagDumpTypes, d.DumpTypes, "Dump the type map after each statement")
	fs.Bool(FlagDumpForms, d.DumpForms, "Dump each function as a single line form")
	fs.StringArrayP(FlagFunction, "f", nil, "Only decompile this function (repeatable)")
	fs.String(FlagVerbosity, d.Verbosity, "Log topics to enable, comma separated")
}

// ApplyFlags copies the flags the user set into c. Flags left at their
// default do not override values from the config file.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error

	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}

		switch f.Name {
		case FlagTypes:
			c.Types, err = fs.GetString(f.Name)
		case FlagLabels:
			c.Labels, err = fs.GetString(f.Name)
		case FlagOut:
			c.OutDir, err = fs.GetString(f.Name)
		case FlagJobs:
			c.Jobs, err = fs.GetInt(f.Name)
		case FlagDumpTypes:
			c.DumpTypes, err = fs.GetBool(f.Name)
		case FlagDumpForms:
			c.DumpForms, err = fs.GetBool(f.Name)
		case FlagFunction:
			c.Functions, err = fs.GetStringArray(f.Name)
		case FlagVerbosity:
			c.Verbosity, err = fs.GetString(f.Name)
		}

		if err != nil {
			err = errors.Wrap(err, "flag %v", f.Name)
		}
	})
	if err != nil {
		return err
	}

	return c.Validate()
}
