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

// Package handle maps a canonical (replica-0) file descriptor to the N-1
// file descriptors opened against the same logical object on the other
// replicas.
package handle

import (
	"fmt"
	"sync"
)

// Table maps a canonical descriptor to its side-table of non-canonical
// descriptors. The zero value is ready to use. All methods are safe for
// concurrent use, serialized by a single mutex.
type Table struct {
	mu      sync.Mutex
	entries map[int][]int
}

// Install records the side-table descriptors for a freshly opened fd0.
// It panics if an entry already exists for fd0: reinstalling a live handle
// key is an internal invariant violation, not a recoverable condition.
func (t *Table) Install(fd0 int, fds []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[int][]int)
	}
	if _, exists := t.entries[fd0]; exists {
		panic(fmt.Sprintf("handle: fd %d is already installed", fd0))
	}
	// Copy so the caller's backing array can be reused or mutated freely.
	cp := make([]int, len(fds))
	copy(cp, fds)
	t.entries[fd0] = cp
}

// Lookup returns the side-table descriptors installed for fd0, and whether
// an entry exists at all.
func (t *Table) Lookup(fd0 int) ([]int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fds, ok := t.entries[fd0]
	return fds, ok
}

// Remove deletes and returns the side-table descriptors for fd0. The second
// return value reports whether an entry existed.
func (t *Table) Remove(fd0 int) ([]int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fds, ok := t.entries[fd0]
	if ok {
		delete(t.entries, fd0)
	}
	return fds, ok
}

// Len reports the number of live handles, for diagnostics and tests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
