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
	"golang.org/x/sys/unix"

	"github.com/1movmedia/mirrorfs/internal/errno"
	"github.com/1movmedia/mirrorfs/internal/fanout"
	"github.com/1movmedia/mirrorfs/internal/pathutil"
)

// Getattr stats path on every replica, applies the stat-like comparison
// policy, and returns replica 0's record.
func (e *Engine) Getattr(path string, stat *fuse.Stat_t, fh uint64) int {
	e.trace("getattr", "%s", path)
	rel := pathutil.Normalize(path)
	ref := e.check.Stat("getattr", fanout.StatAt(e.registry, rel))
	if ref.Errno == 0 {
		fillStat(stat, &ref.Stat)
	}
	return errno.NegateErrno(ref.Errno)
}

func fillStat(dst *fuse.Stat_t, src *unix.Stat_t) {
	dst.Dev = uint64(src.Dev)
	dst.Ino = src.Ino
	dst.Mode = src.Mode
	dst.Nlink = uint32(src.Nlink)
	dst.Uid = src.Uid
	dst.Gid = src.Gid
	dst.Rdev = uint64(src.Rdev)
	dst.Size = src.Size
	dst.Blksize = src.Blksize
	dst.Blocks = src.Blocks
	dst.Atim = fuse.Timespec{Sec: int64(src.Atim.Sec), Nsec: int64(src.Atim.Nsec)}
	dst.Mtim = fuse.Timespec{Sec: int64(src.Mtim.Sec), Nsec: int64(src.Mtim.Nsec)}
	dst.Ctim = fuse.Timespec{Sec: int64(src.Ctim.Sec), Nsec: int64(src.Ctim.Nsec)}
}

// Access checks path against mask on every replica.
func (e *Engine) Access(path string, mask uint32) int {
	e.trace("access", "%s mask=%o", path, mask)
	rel := pathutil.Normalize(path)
	ref := e.check.Simple("access", fanout.AccessAt(e.registry, rel, mask))
	return errno.NegateErrno(ref.Errno)
}

// Chmod fans chmod(path, mode) out across every replica; unlike Getattr and
// Utimens, chmod does not pass AT_SYMLINK_NOFOLLOW.
func (e *Engine) Chmod(path string, mode uint32) int {
	e.trace("chmod", "%s mode=%o", path, mode)
	rel := pathutil.Normalize(path)
	ref := e.check.Simple("chmod", fanout.ChmodAt(e.registry, rel, mode))
	return errno.NegateErrno(ref.Errno)
}

// Chown fans chown(path, uid, gid) out across every replica; like Chmod,
// chown does not pass AT_SYMLINK_NOFOLLOW.
func (e *Engine) Chown(path string, uid uint32, gid uint32) int {
	e.trace("chown", "%s uid=%d gid=%d", path, uid, gid)
	rel := pathutil.Normalize(path)
	ref := e.check.Simple("chown", fanout.ChownAt(e.registry, rel, int(uid), int(gid)))
	return errno.NegateErrno(ref.Errno)
}

// Utimens fans utimensat(path, tmsp, AT_SYMLINK_NOFOLLOW) out across every
// replica.
func (e *Engine) Utimens(path string, tmsp []fuse.Timespec) int {
	e.trace("utimens", "%s", path)
	rel := pathutil.Normalize(path)
	var ts [2]unix.Timespec
	if len(tmsp) >= 2 {
		ts[0] = unix.Timespec{Sec: tmsp[0].Sec, Nsec: tmsp[0].Nsec}
		ts[1] = unix.Timespec{Sec: tmsp[1].Sec, Nsec: tmsp[1].Nsec}
	} else {
		ts[0] = unix.Timespec{Nsec: unix.UTIME_NOW}
		ts[1] = unix.Timespec{Nsec: unix.UTIME_NOW}
	}
	ref := e.check.Simple("utimens", fanout.UtimensAt(e.registry, rel, ts))
	return errno.NegateErrno(ref.Errno)
}
