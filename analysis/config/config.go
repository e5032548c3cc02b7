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

// Package config implements the configuration of the whole-program optimizer. A config file sets the
// analysis bounds, the entry method and the pass toggles; everything left unset falls back to a
// working default so that an empty file is a valid configuration.
package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// DefaultMaxPasses is the bound on whole-program analysis passes. Exhausting it without
// convergence is a fatal condition.
const DefaultMaxPasses = 10

// DefaultMaxLocalIterations is the bound on the per-method optimization loop.
const DefaultMaxLocalIterations = 10

// DefaultEntryMethod is the name of the designated program-entry method.
const DefaultEntryMethod = "__MAIN__"

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

// Config holds the user-facing settings of the optimizer.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	// yaml.v3 only flattens embedded structs when told to.
	Options `yaml:",inline"`

	sourceFile string
}

// Options groups the tunable settings of the whole-program analysis.
type Options struct {
	// EntryMethod is the method analyzed first, with no caller and no actual arguments.
	EntryMethod string `yaml:"entry-method"`

	// MaxPasses bounds the outer whole-program convergence loop. If <= 0, DefaultMaxPasses is used.
	MaxPasses int `yaml:"max-passes"`

	// MaxLocalIterations bounds the inner per-method optimization loop. If <= 0,
	// DefaultMaxLocalIterations is used.
	MaxLocalIterations int `yaml:"max-local-iterations"`

	// SkipLocalOpts can be set to true to skip the local optimization passes inside the inner loop.
	SkipLocalOpts bool `yaml:"skip-local-opts"`

	// SkipIpaOpts can be set to true to skip the interprocedural optimization passes inside the
	// inner loop.
	SkipIpaOpts bool `yaml:"skip-ipa-opts"`

	// DumpGraphs specifies whether per-method control-flow graphs should be dumped in dot format
	// in the DumpDir after the analysis terminates.
	DumpGraphs bool `yaml:"dump-graphs"`

	// DumpDir is the directory where graph dumps are written. If empty and DumpGraphs is set, a
	// temporary directory is created next to the config file.
	DumpDir string `yaml:"dump-dir"`

	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`
}

// NewDefault returns a config with the defaults applied.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			EntryMethod:        DefaultEntryMethod,
			MaxPasses:          DefaultMaxPasses,
			MaxLocalIterations: DefaultMaxLocalIterations,
			SkipLocalOpts:      false,
			SkipIpaOpts:        false,
			DumpGraphs:         false,
			DumpDir:            "",
			LogLevel:           int(InfoLevel),
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.EntryMethod == "" {
		cfg.EntryMethod = DefaultEntryMethod
	}

	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = DefaultMaxPasses
	}

	if cfg.MaxLocalIterations <= 0 {
		cfg.MaxLocalIterations = DefaultMaxLocalIterations
	}

	if cfg.DumpGraphs && cfg.DumpDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-graphs")
		if err != nil {
			return nil, fmt.Errorf("could not create temp dir for graph dumps")
		}
		cfg.DumpDir = tmpdir
	}

	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
