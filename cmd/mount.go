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
	"context"
	"fmt"
	"os"
	"os/signal"

	cgofuse "github.com/winfsp/cgofuse/fuse"

	"github.com/1movmedia/mirrorfs/internal/engine"
	"github.com/1movmedia/mirrorfs/internal/logger"
	"github.com/1movmedia/mirrorfs/internal/metrics"
	"github.com/1movmedia/mirrorfs/internal/mountopts"
	"github.com/1movmedia/mirrorfs/internal/replica"
)

// runMount opens the replica registry, builds the engine, and mounts it at
// mountPoint, blocking until the mount is torn down.
func runMount(replicas []string, mountPoint string) error {
	logger.SetLogFormat(Config.LogFormat)

	reg, err := replica.Open(replicas)
	if err != nil {
		return fmt.Errorf("opening replicas: %w", err)
	}

	eng := engine.New(reg, Config.AbortOnDifference, Config.LogOperations)
	host := cgofuse.NewFileSystemHost(eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if Config.MetricsAddr != "" {
		go metrics.NewServer(Config.MetricsAddr).Serve(ctx)
	}

	registerSIGINTHandler(host, mountPoint)

	opts := fuseMountOptions()
	logger.Infof("mounting %d replicas at %s", reg.Count(), mountPoint)
	if !host.Mount(mountPoint, opts) {
		return fmt.Errorf("mounting at %s failed", mountPoint)
	}
	return nil
}

// fuseMountOptions folds the attribute/entry/negative-lookup cache
// disabling and inode pass-through mirrorfs always needs together with
// whatever "-o" options the user supplied. The four always-on options are
// applied last, so a user-supplied value for any of them is overridden.
func fuseMountOptions() []string {
	opts := map[string]string{}
	for _, o := range mountOptions {
		mountopts.Parse(opts, o)
	}
	opts["attr_timeout"] = "0"
	opts["entry_timeout"] = "0"
	opts["negative_timeout"] = "0"
	opts["use_ino"] = ""
	return mountopts.ToArgs(opts)
}

// registerSIGINTHandler unmounts host when the process receives SIGINT,
// mirroring the reference CLI's Ctrl-C handling.
func registerSIGINTHandler(host *cgofuse.FileSystemHost, mountPoint string) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)

	go func() {
		for range signalChan {
			logger.Info("received SIGINT, attempting to unmount...")
			if host.Unmount() {
				logger.Info("successfully unmounted in response to SIGINT.")
				return
			}
			logger.Errorf("failed to unmount %s in response to SIGINT", mountPoint)
		}
	}()
}
