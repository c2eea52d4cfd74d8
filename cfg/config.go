// Copyright 2026 The Mirrorfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cfg holds the engine's process-wide configuration: the two
// boolean flags and the replica-count ceiling.
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// MaxReplicas is the compile-time ceiling on the number of replicas the
// handle table and fanout executor are sized for. The reference
// implementation uses 10, and so does this rewrite. No data structure is
// sized by it; it is only checked against the number of replica paths given
// on the command line.
const MaxReplicas = 10

// Config is the engine's process-wide configuration, populated once at
// startup from flags and (optionally) a YAML overlay file.
type Config struct {
	// AbortOnDifference, when true, terminates the process immediately after
	// emitting a diagnostic for any scalar/errno divergence between
	// replicas. Payload-level divergences (read bytes, symlink targets,
	// directory entry names) always abort regardless of this flag.
	AbortOnDifference bool `yaml:"abort-on-difference" mapstructure:"abort-on-difference"`

	// LogOperations, when true, emits one diagnostic line per operation to
	// stderr in addition to divergence diagnostics.
	LogOperations bool `yaml:"log-operations" mapstructure:"log-operations"`

	// LogFormat selects "text" or "json" for the diagnostics stream.
	LogFormat string `yaml:"log-format" mapstructure:"log-format"`

	// MetricsAddr, when non-empty, serves Prometheus metrics on this
	// address (e.g. "localhost:9115"). Empty disables the listener.
	MetricsAddr string `yaml:"metrics-addr" mapstructure:"metrics-addr"`
}

// Default returns the configuration used before any flags or config file
// are applied.
func Default() Config {
	return Config{
		AbortOnDifference: true,
		LogOperations:     false,
		LogFormat:         "text",
		MetricsAddr:       "",
	}
}

// BindFlags registers the engine's flags on flagSet and binds them into
// viper, mirroring the bind-then-unmarshal pattern used for every other
// flag in this family.
func BindFlags(flagSet *pflag.FlagSet) error {
	d := Default()

	flagSet.Bool("abort-on-difference", d.AbortOnDifference,
		"Terminate the process immediately after a divergence between replicas is detected.")
	if err := viper.BindPFlag("abort-on-difference", flagSet.Lookup("abort-on-difference")); err != nil {
		return err
	}

	flagSet.Bool("log-operations", d.LogOperations,
		"Emit one diagnostic line per operation to stderr.")
	if err := viper.BindPFlag("log-operations", flagSet.Lookup("log-operations")); err != nil {
		return err
	}

	flagSet.String("log-format", d.LogFormat,
		"Diagnostics stream format: text or json.")
	if err := viper.BindPFlag("log-format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.String("metrics-addr", d.MetricsAddr,
		"If set, serve Prometheus metrics on this address.")
	if err := viper.BindPFlag("metrics-addr", flagSet.Lookup("metrics-addr")); err != nil {
		return err
	}

	return nil
}
