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
	"syscall"

	"github.com/1movmedia/mirrorfs/internal/errno"
	"github.com/1movmedia/mirrorfs/internal/fanout"
	"github.com/1movmedia/mirrorfs/internal/pathutil"
)

// Unlink fans unlinkat(path, 0) out across every replica.
func (e *Engine) Unlink(path string) int {
	e.trace("unlink", "%s", path)
	rel := pathutil.Normalize(path)
	ref := e.check.Simple("unlink", fanout.UnlinkAt(e.registry, rel))
	return errno.NegateErrno(ref.Errno)
}

// Symlink fans symlinkat(target, linkpath) out across every replica.
func (e *Engine) Symlink(target string, newpath string) int {
	e.trace("symlink", "%s -> %s", newpath, target)
	rel := pathutil.Normalize(newpath)
	ref := e.check.Simple("symlink", fanout.SymlinkAt(e.registry, target, rel))
	return errno.NegateErrno(ref.Errno)
}

// Link fans linkat(oldpath, newpath, 0) out across every replica.
func (e *Engine) Link(oldpath string, newpath string) int {
	e.trace("link", "%s -> %s", newpath, oldpath)
	relOld := pathutil.Normalize(oldpath)
	relNew := pathutil.Normalize(newpath)
	ref := e.check.Simple("link", fanout.LinkAt(e.registry, relOld, relNew))
	return errno.NegateErrno(ref.Errno)
}

// Readlink fans readlinkat(path) out across every replica, compares the
// target text (a payload comparison, so any mismatch is always fatal), and
// returns replica 0's target.
func (e *Engine) Readlink(path string) (int, string) {
	e.trace("readlink", "%s", path)
	rel := pathutil.Normalize(path)
	ref := e.check.Readlink("readlink", fanout.ReadlinkAt(e.registry, rel))
	if ref.Errno != 0 {
		return errno.NegateErrno(ref.Errno), ""
	}
	return 0, ref.Target
}

// Rename rejects any nonzero flags without contacting a single replica,
// then fans renameat out across every replica using the same replica's
// directory handle for both endpoints: cross-replica moves are not
// supported, matching the original mirrorfs.c restriction.
func (e *Engine) Rename(oldpath string, newpath string) int {
	return e.rename(oldpath, newpath, 0)
}

// rename is split out from Rename so a future cgofuse binding that does
// surface the POSIX rename2 flags argument has somewhere to plug it in
// without touching the comparison logic.
func (e *Engine) rename(oldpath string, newpath string, flags uint32) int {
	e.trace("rename", "%s -> %s", oldpath, newpath)
	if flags != 0 {
		return -int(syscall.EINVAL)
	}
	relOld := pathutil.Normalize(oldpath)
	relNew := pathutil.Normalize(newpath)
	ref := e.check.Simple("rename", fanout.RenameAt(e.registry, relOld, relNew))
	return errno.NegateErrno(ref.Errno)
}
