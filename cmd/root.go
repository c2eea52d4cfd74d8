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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/1movmedia/mirrorfs/cfg"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error
	Config        cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "mirrorfs replica-path... mount-point",
	Short: "Fan every filesystem operation out across N replica directories and report divergences",
	Long: `mirrorfs is a differential-testing mirror filesystem: it exposes a single
mount point whose every operation is applied, in sequence, to two or more
backing "replica" directories. Results are compared under a fixed
per-operation policy, and any divergence is reported and, by default,
aborts the process.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		replicas, mountPoint, err := splitArgs(args)
		if err != nil {
			return err
		}
		return runMount(replicas, mountPoint)
	},
	SilenceUsage: true,
}

// splitArgs separates the positional arguments into replica paths and the
// trailing mount point: the last positional argument is never a replica,
// it is always the mount point for the host driver. cobra.MinimumNArgs(3)
// already guarantees at least two replicas remain.
func splitArgs(args []string) (replicas []string, mountPoint string, err error) {
	replicas = args[:len(args)-1]
	mountPoint = args[len(args)-1]
	if len(replicas) > cfg.MaxReplicas {
		return nil, "", fmt.Errorf("at most %d replicas are supported, got %d", cfg.MaxReplicas, len(replicas))
	}
	return replicas, mountPoint, nil
}

// Execute runs the root command, exiting the process with status 1 on any
// argument or startup error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config-file", "", "Path to a YAML configuration overlay.")
	registerMountFlags(rootCmd.Flags())
	bindErr = cfg.BindFlags(rootCmd.Flags())
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&Config)
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file %q: %w", cfgFile, err)
		return
	}
	unmarshalErr = viper.Unmarshal(&Config)
}
