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

// Package fanout invokes the corresponding replica-local primitive (openat,
// fstatat, pread, ...) once per replica, in sequence, and collects
// per-replica result tuples for the equivalence checker.
//
// Every function here is sequenced on the calling goroutine: there is no
// intra-request parallelism, and the errno register is captured immediately
// after each syscall, before any other primitive runs, by relying on
// golang.org/x/sys/unix's per-call error return rather than the libc-style
// global errno.
package fanout

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/1movmedia/mirrorfs/internal/replica"
)

// SimpleResult is the result tuple for operations whose comparison policy
// is just (return value, error code): mkdir, unlink, rmdir, symlink,
// rename, link, chmod, chown, utimens, access, close. Pread and Pwrite
// return RWResult instead.
type SimpleResult struct {
	Ret   int
	Errno syscall.Errno
}

func (r SimpleResult) Failed() bool { return r.Errno != 0 }

func simple(ret int, err error) SimpleResult {
	if err == nil {
		return SimpleResult{Ret: ret}
	}
	return SimpleResult{Ret: -1, Errno: errnoOf(err)}
}

func errnoOf(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if e, ok := err.(syscall.Errno); ok {
		return e
	}
	return syscall.EIO
}

// StatResult is the result tuple for getattr.
type StatResult struct {
	Errno syscall.Errno
	Stat  unix.Stat_t
}

// StatAt runs fstatat(dirfd, relpath, AT_SYMLINK_NOFOLLOW) across every
// replica in reg.
func StatAt(reg *replica.Registry, relpath string) []StatResult {
	out := make([]StatResult, reg.Count())
	for i := range out {
		var st unix.Stat_t
		err := unix.Fstatat(reg.FD(i), relpath, &st, unix.AT_SYMLINK_NOFOLLOW)
		out[i] = StatResult{Errno: errnoOf(err), Stat: st}
	}
	return out
}

// AccessAt runs faccessat(dirfd, relpath, mask) across every replica.
func AccessAt(reg *replica.Registry, relpath string, mask uint32) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Faccessat(reg.FD(i), relpath, mask, 0)
		out[i] = simple(0, err)
	}
	return out
}

// ReadlinkResult is the result tuple for readlink.
type ReadlinkResult struct {
	Errno  syscall.Errno
	Target string
}

// ReadlinkAt runs readlinkat(dirfd, relpath) across every replica.
func ReadlinkAt(reg *replica.Registry, relpath string) []ReadlinkResult {
	out := make([]ReadlinkResult, reg.Count())
	buf := make([]byte, 4096)
	for i := range out {
		n, err := unix.Readlinkat(reg.FD(i), relpath, buf)
		if err != nil {
			out[i] = ReadlinkResult{Errno: errnoOf(err)}
			continue
		}
		out[i] = ReadlinkResult{Target: string(buf[:n])}
	}
	return out
}

// MkdirAt runs mkdirat(dirfd, relpath, mode) across every replica.
func MkdirAt(reg *replica.Registry, relpath string, mode uint32) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Mkdirat(reg.FD(i), relpath, mode)
		out[i] = simple(0, err)
	}
	return out
}

// UnlinkAt runs unlinkat(dirfd, relpath, 0) across every replica.
func UnlinkAt(reg *replica.Registry, relpath string) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Unlinkat(reg.FD(i), relpath, 0)
		out[i] = simple(0, err)
	}
	return out
}

// RmdirAt runs unlinkat(dirfd, relpath, AT_REMOVEDIR) across every replica.
func RmdirAt(reg *replica.Registry, relpath string) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Unlinkat(reg.FD(i), relpath, unix.AT_REMOVEDIR)
		out[i] = simple(0, err)
	}
	return out
}

// RenameAt runs renameat(dirfd, oldpath, dirfd, newpath) across every
// replica, using the same replica's directory fd for both endpoints: rename
// is confined to a single replica root, cross-replica moves are undefined.
func RenameAt(reg *replica.Registry, oldpath, newpath string) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Renameat(reg.FD(i), oldpath, reg.FD(i), newpath)
		out[i] = simple(0, err)
	}
	return out
}

// LinkAt runs linkat(dirfd, oldpath, dirfd, newpath, 0) across every
// replica.
func LinkAt(reg *replica.Registry, oldpath, newpath string) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Linkat(reg.FD(i), oldpath, reg.FD(i), newpath, 0)
		out[i] = simple(0, err)
	}
	return out
}

// SymlinkAt runs symlinkat(target, dirfd, linkpath) across every replica.
func SymlinkAt(reg *replica.Registry, target, linkpath string) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Symlinkat(target, reg.FD(i), linkpath)
		out[i] = simple(0, err)
	}
	return out
}

// ChmodAt runs fchmodat(dirfd, relpath, mode, 0) across every replica.
func ChmodAt(reg *replica.Registry, relpath string, mode uint32) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Fchmodat(reg.FD(i), relpath, mode, 0)
		out[i] = simple(0, err)
	}
	return out
}

// ChownAt runs fchownat(dirfd, relpath, uid, gid, 0) across every replica.
func ChownAt(reg *replica.Registry, relpath string, uid, gid int) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.Fchownat(reg.FD(i), relpath, uid, gid, 0)
		out[i] = simple(0, err)
	}
	return out
}

// UtimensAt runs utimensat(dirfd, relpath, ts, AT_SYMLINK_NOFOLLOW) across
// every replica.
func UtimensAt(reg *replica.Registry, relpath string, ts [2]unix.Timespec) []SimpleResult {
	out := make([]SimpleResult, reg.Count())
	for i := range out {
		err := unix.UtimesNanoAt(reg.FD(i), relpath, ts[:], unix.AT_SYMLINK_NOFOLLOW)
		out[i] = simple(0, err)
	}
	return out
}

// OpenResult is the result tuple for open/create.
type OpenResult struct {
	FD    int // -1 on failure
	Errno syscall.Errno
}

// OpenAt runs openat(dirfd, relpath, flags, mode) across every replica.
func OpenAt(reg *replica.Registry, relpath string, flags int, mode uint32) []OpenResult {
	out := make([]OpenResult, reg.Count())
	for i := range out {
		fd, err := unix.Openat(reg.FD(i), relpath, flags, mode)
		if err != nil {
			out[i] = OpenResult{FD: -1, Errno: errnoOf(err)}
			continue
		}
		out[i] = OpenResult{FD: fd}
	}
	return out
}

// RWResult is the result tuple for pread/pwrite.
type RWResult struct {
	N     int
	Errno syscall.Errno
}

// Pread runs pread(fd, ., offset) across every fd in fds. buf0 is the
// caller-provided buffer for replica 0 (fds[0]); buffers for the remaining
// replicas are allocated here, sized len(buf0), and are eligible for
// collection as soon as the caller is done comparing them.
func Pread(fds []int, buf0 []byte, offset int64) ([]RWResult, [][]byte) {
	out := make([]RWResult, len(fds))
	bufs := make([][]byte, len(fds))
	bufs[0] = buf0
	for i, fd := range fds {
		b := buf0
		if i > 0 {
			b = make([]byte, len(buf0))
			bufs[i] = b
		}
		n, err := unix.Pread(fd, b, offset)
		if err != nil {
			out[i] = RWResult{N: -1, Errno: errnoOf(err)}
			continue
		}
		out[i] = RWResult{N: n}
	}
	return out, bufs
}

// Pwrite runs pwrite(fd, data, offset) across every fd in fds, writing the
// same bytes to each replica.
func Pwrite(fds []int, data []byte, offset int64) []RWResult {
	out := make([]RWResult, len(fds))
	for i, fd := range fds {
		n, err := unix.Pwrite(fd, data, offset)
		if err != nil {
			out[i] = RWResult{N: -1, Errno: errnoOf(err)}
			continue
		}
		out[i] = RWResult{N: n}
	}
	return out
}

// Close runs close(fd) across every fd in fds.
func Close(fds []int) []SimpleResult {
	out := make([]SimpleResult, len(fds))
	for i, fd := range fds {
		err := unix.Close(fd)
		out[i] = simple(0, err)
	}
	return out
}

// OpenDirAt opens relpath as a directory on every replica, for Readdir.
func OpenDirAt(reg *replica.Registry, relpath string) []OpenResult {
	return OpenAt(reg, relpath, unix.O_RDONLY|unix.O_DIRECTORY, 0)
}

// ReadDirNames reads every directory entry name from the open directory fd,
// in kernel-yielded order, skipping "." and "..". It is the replica-local
// primitive the Operation Surface drives once per replica during readdir.
func ReadDirNames(fd int) ([]string, error) {
	var names []string
	buf := make([]byte, 8192)
	for {
		n, err := unix.Getdents(fd, buf)
		if err != nil {
			return names, err
		}
		if n == 0 {
			return names, nil
		}
		_, _, entries := unix.ParseDirent(buf[:n], -1, nil)
		for _, name := range entries {
			if name == "." || name == ".." {
				continue
			}
			names = append(names, name)
		}
	}
}
