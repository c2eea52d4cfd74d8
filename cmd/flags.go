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

import "github.com/spf13/pflag"

// mountOptions accumulates every "-o" argument given on the command line.
// mirrorfs does not act on these itself: fuseMountOptions splits them into
// key/value pairs and hands them on to the FUSE host driver framework.
// mirrorfs's own behavior is controlled exclusively by the flags
// cfg.BindFlags registers, so anything else the user wants the FUSE layer
// to see (uid, gid, allow_other, ...) travels through here instead.
var mountOptions []string

func registerMountFlags(flagSet *pflag.FlagSet) {
	flagSet.StringArrayVarP(&mountOptions, "option", "o", nil,
		"Mount option passed through to the FUSE host driver (repeatable, comma-separated).")
}
