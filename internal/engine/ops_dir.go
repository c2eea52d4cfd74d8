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

package engine

import (
	"github.com/winfsp/cgofuse/fuse"

	"github.com/1movmedia/mirrorfs/internal/equivalence"
	"github.com/1movmedia/mirrorfs/internal/errno"
	"github.com/1movmedia/mirrorfs/internal/fanout"
	"github.com/1movmedia/mirrorfs/internal/logger"
	"github.com/1movmedia/mirrorfs/internal/pathutil"
)

// Mkdir fans mkdirat(path, mode) out across every replica.
func (e *Engine) Mkdir(path string, mode uint32) int {
	e.trace("mkdir", "%s mode=%o", path, mode)
	rel := pathutil.Normalize(path)
	ref := e.check.Simple("mkdir", fanout.MkdirAt(e.registry, rel, mode))
	return errno.NegateErrno(ref.Errno)
}

// Rmdir fans unlinkat(path, AT_REMOVEDIR) out across every replica.
func (e *Engine) Rmdir(path string) int {
	e.trace("rmdir", "%s", path)
	rel := pathutil.Normalize(path)
	ref := e.check.Simple("rmdir", fanout.RmdirAt(e.registry, rel))
	return errno.NegateErrno(ref.Errno)
}

// Opendir is a no-op: directory handles are opened and closed entirely
// within Readdir, so there is nothing to hand back here.
func (e *Engine) Opendir(path string) (int, uint64) {
	return 0, 0
}

// Releasedir is a no-op, matching Opendir.
func (e *Engine) Releasedir(path string, fh uint64) int {
	return 0
}

// Readdir opens path as a directory on every replica, walks replica 0's
// entries in kernel order, and for each one advances every other replica by
// one entry and asserts name equality at that position. It stops when the
// filler signals enough, or when replica 0 runs out of entries.
func (e *Engine) Readdir(
	path string,
	fill func(name string, stat *fuse.Stat_t, ofst int64) bool,
	ofst int64,
	fh uint64,
) int {
	e.trace("readdir", "%s", path)
	rel := pathutil.Normalize(path)

	opens := fanout.OpenDirAt(e.registry, rel)
	ref := e.check.OpenOrCreate("opendir", opens)
	if ref.FD == -1 {
		return errno.NegateErrno(ref.Errno)
	}
	fds := make([]int, len(opens))
	for i, o := range opens {
		fds[i] = o.FD
	}
	defer fanout.Close(fds)

	entries := make([][]string, len(fds))
	for i, fd := range fds {
		names, err := fanout.ReadDirNames(fd)
		if err != nil {
			logger.Errorf("readdir: %s: replica %d: %v", path, i, err)
			return errno.NegateErrno(errno.From(err))
		}
		entries[i] = names
	}

	if !fill(".", nil, 0) {
		return 0
	}
	if !fill("..", nil, 0) {
		return 0
	}

	for idx, name := range entries[0] {
		for i := 1; i < len(entries); i++ {
			other := toDirEntries(entries[i])
			e.check.Readdir("readdir", idx, name, other)
		}
		if !fill(name, nil, 0) {
			break
		}
	}
	return 0
}

func toDirEntries(names []string) []equivalence.DirEntry {
	out := make([]equivalence.DirEntry, len(names))
	for i, n := range names {
		out[i] = equivalence.DirEntry{Name: n}
	}
	return out
}
