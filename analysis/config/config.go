// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/awslabs/sinkcheck/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the sinks, safe APIs and sanitizers added to the built-in catalog, and the analysis options.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
type Config struct {
	Options `yaml:",inline"`

	// Sinks lists sinks in addition to the built-in catalog
	Sinks []SinkSpec `yaml:"sinks"`

	// SafeAPIs lists schema-based or textual replacements of sinks. Calls to those are reported as safe.
	SafeAPIs []CodeIdentifier `yaml:"safe-apis"`

	// Sanitizers lists the methods whose results are clean regardless of their arguments
	Sanitizers []CodeIdentifier `yaml:"sanitizers"`
}

// SinkSpec is the configuration of an additional sink
type SinkSpec struct {
	// ID is the identifier of the sink, reported in findings. Defaults to Receiver.Method.
	ID string `yaml:"id"`

	// Family is one of JNDI_LOOKUP, PROCESS_EXEC, NATIVE_DESERIALIZE or XML_PARSE
	Family string `yaml:"family"`

	// Receiver is the simple name of the receiver type. Subtypes of Receiver are matched too.
	Receiver string `yaml:"receiver"`

	// Method is the name of the method, or "<init>" for a constructor
	Method string `yaml:"method"`

	// Arity is the number of arguments of the signature. A nil arity matches any number of arguments.
	Arity *int `yaml:"arity"`

	// Args lists the indices of the sensitive arguments; -1 is the receiver. If empty, every argument is sensitive.
	Args []int `yaml:"args"`

	// Unconditional marks sinks that are unsafe by default, whatever their arguments are
	Unconditional bool `yaml:"unconditional"`

	// Message is the message reported with findings on this sink
	Message string `yaml:"message"`
}

// Options are the global options of the analysis
type Options struct {
	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// MaxWorkers is the maximum number of units (files) analyzed concurrently. Methods of a unit are analyzed
	// concurrently by the same number of goroutines.
	MaxWorkers int `yaml:"max-workers"`

	// StrictShellWrappers makes argument vectors that run a shell interpreter on a command string (e.g.
	// {"sh", "-c", cmd}) ineligible for the argument-vector exemption
	StrictShellWrappers bool `yaml:"strict-shell-wrappers"`

	// DisabledFamilies lists the vulnerability families for which no sink is checked
	DisabledFamilies []string `yaml:"disabled-families"`

	// FixturePattern is the glob pattern of fixture file names in harness mode
	FixturePattern string `yaml:"fixture-pattern"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		Sinks:      nil,
		SafeAPIs:   nil,
		Sanitizers: nil,
		Options: Options{
			LogLevel:            int(InfoLevel),
			MaxWorkers:          DefaultMaxWorkers,
			StrictShellWrappers: false,
			DisabledFamilies:    nil,
			FixturePattern:      DefaultFixturePattern,
			SilenceWarn:         false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(b)
}

// LoadFromBytes reads a configuration from the content of a yaml file
func LoadFromBytes(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.FixturePattern == "" {
		cfg.FixturePattern = DefaultFixturePattern
	}
	if _, err := path.Match(cfg.FixturePattern, ""); err != nil {
		return nil, fmt.Errorf("invalid fixture-pattern %q: %w", cfg.FixturePattern, err)
	}

	for i, sink := range cfg.Sinks {
		if err := sink.validate(); err != nil {
			return nil, fmt.Errorf("invalid sink #%d: %w", i, err)
		}
		if sink.ID == "" {
			cfg.Sinks[i].ID = sink.Receiver + "." + sink.Method
		}
	}
	for _, family := range cfg.DisabledFamilies {
		if !funcutil.Contains(Families, family) {
			return nil, fmt.Errorf("unknown family %q in disabled-families", family)
		}
	}

	cfg.SafeAPIs = funcutil.Map(cfg.SafeAPIs, compileRegexes)
	cfg.Sanitizers = funcutil.Map(cfg.Sanitizers, compileRegexes)
	return cfg, nil
}

func (s SinkSpec) validate() error {
	if !funcutil.Contains(Families, s.Family) {
		return fmt.Errorf("unknown family %q (expected one of %s)", s.Family, strings.Join(Families, ", "))
	}
	if s.Receiver == "" || s.Method == "" {
		return fmt.Errorf("a sink needs a receiver and a method")
	}
	if s.Arity != nil && *s.Arity < 0 {
		return fmt.Errorf("negative arity %d", *s.Arity)
	}
	for _, a := range s.Args {
		if a < -1 || (s.Arity != nil && a >= *s.Arity) {
			return fmt.Errorf("sensitive argument index %d out of range", a)
		}
	}
	return nil
}

// IsDisabled returns true if the family has been disabled in the config
func (c Config) IsDisabled(family string) bool {
	return funcutil.Contains(c.DisabledFamilies, family)
}

// IsSanitizer returns true if the code identifier matches a sanitizer specification in the config file
func (c Config) IsSanitizer(cid CodeIdentifier) bool {
	return funcutil.Exists(c.Sanitizers, cid.equalOnNonEmptyFields)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
