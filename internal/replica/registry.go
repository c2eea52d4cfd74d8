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

// Package replica holds the fixed, ordered set of backing-directory file
// descriptors the engine fans every operation out to.
package replica

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Registry holds one open directory file descriptor per replica, in the
// fixed order replicas were given on the command line. Replica 0 is the
// canonical replica. The registry is immutable after Open returns.
type Registry struct {
	paths []string
	fds   []int
}

// Open opens each of paths as a directory and returns a Registry over the
// resulting descriptors, in order. Failure to open any replica is fatal to
// startup: Open closes whatever it already opened and returns the error.
func Open(paths []string) (*Registry, error) {
	r := &Registry{paths: append([]string(nil), paths...)}
	for i, p := range paths {
		fd, err := unix.Open(p, unix.O_DIRECTORY|unix.O_RDONLY, 0)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("opening replica %d (%s): %w", i, p, err)
		}
		r.fds = append(r.fds, fd)
	}
	return r, nil
}

// Count returns the number of replicas in the registry.
func (r *Registry) Count() int {
	return len(r.fds)
}

// FD returns the directory file descriptor for replica i, valid for use
// with *at(2)-family syscalls until Close is called.
func (r *Registry) FD(i int) int {
	return r.fds[i]
}

// Path returns the startup-time path of replica i, for diagnostics.
func (r *Registry) Path(i int) string {
	return r.paths[i]
}

// Close closes every replica descriptor opened so far. It is safe to call
// on a partially-initialized Registry (as Open does on failure) and is
// idempotent only in the sense that it does not panic on an already-closed
// fd list; callers must not call Close twice on the same successful Open.
func (r *Registry) Close() error {
	var firstErr error
	for _, fd := range r.fds {
		if err := unix.Close(fd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.fds = nil
	return firstErr
}
