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

// Create fans an O_CREAT open out across every replica. If replica 0
// succeeded, a handle is installed with replica 0's descriptor as the
// public identity and the remaining descriptors in the side table. Success
// disagreeing across replicas is an internal invariant violation (handled
// inside equivalence.Checker.OpenOrCreate), not a configurable mismatch.
func (e *Engine) Create(path string, flags int, mode uint32) (int, uint64) {
	e.trace("create", "%s flags=%#o mode=%o", path, flags, mode)
	return e.openOrCreate(path, flags, mode, "create")
}

// Open fans a non-creating open out across every replica, exactly like
// Create but without O_CREAT|O_EXCL semantics implied by mode.
func (e *Engine) Open(path string, flags int) (int, uint64) {
	e.trace("open", "%s flags=%#o", path, flags)
	return e.openOrCreate(path, flags, 0, "open")
}

func (e *Engine) openOrCreate(path string, flags int, mode uint32, op string) (int, uint64) {
	rel := pathutil.Normalize(path)
	opens := fanout.OpenAt(e.registry, rel, flags, mode)
	ref := e.check.OpenOrCreate(op, opens)
	if ref.FD == -1 {
		return errno.NegateErrno(ref.Errno), 0
	}

	fd0 := opens[0].FD
	side := make([]int, len(opens)-1)
	for i := 1; i < len(opens); i++ {
		side[i-1] = opens[i].FD
	}
	e.handles.Install(fd0, side)
	return 0, uint64(fd0)
}

// fdsFor reconstructs the full, replica-ordered fd slice for a live handle:
// [fd0, fd1, ..., fdN-1].
func (e *Engine) fdsFor(fh uint64) ([]int, bool) {
	fd0 := int(fh)
	side, ok := e.handles.Lookup(fd0)
	if !ok {
		return nil, false
	}
	fds := make([]int, 0, len(side)+1)
	fds = append(fds, fd0)
	fds = append(fds, side...)
	return fds, true
}

// openPathFDs fans an open(path, flags) out across every replica for a
// handle-less read/write, applying the same open/create comparison policy
// fdsFor's handle-carrying callers get for free from Create/Open. The
// caller is responsible for closing the returned descriptors.
func (e *Engine) openPathFDs(path string, flags int) ([]int, syscall.Errno) {
	rel := pathutil.Normalize(path)
	opens := fanout.OpenAt(e.registry, rel, flags, 0)
	ref := e.check.OpenOrCreate("open", opens)
	if ref.FD == -1 {
		return nil, ref.Errno
	}
	fds := make([]int, len(opens))
	for i, o := range opens {
		fds[i] = o.FD
	}
	return fds, 0
}

// Read pulls the handle's per-replica descriptors from the handle table if
// fh names a live one; otherwise it opens the path read-only across every
// replica for the duration of this call. Either way it preads at ofst on
// every replica, compares the payload (always fatal on mismatch), and
// returns replica 0's byte count.
func (e *Engine) Read(path string, buff []byte, ofst int64, fh uint64) int {
	e.trace("read", "%s ofst=%d len=%d", path, ofst, len(buff))
	fds, ok := e.fdsFor(fh)
	if !ok {
		var errn syscall.Errno
		fds, errn = e.openPathFDs(path, syscall.O_RDONLY)
		if errn != 0 {
			return errno.NegateErrno(errn)
		}
		defer fanout.Close(fds)
	}
	results, bufs := fanout.Pread(fds, buff, ofst)
	ref := e.check.Read("read", results, bufs)
	if ref.Errno != 0 {
		return errno.NegateErrno(ref.Errno)
	}
	return ref.N
}

// Write pulls the handle's per-replica descriptors from the handle table if
// fh names a live one; otherwise it opens the path write-only across every
// replica for the duration of this call. Either way it pwrites the same
// bytes at ofst on every replica, and compares (return value, error code)
// per the plain "other ops" policy write shares.
func (e *Engine) Write(path string, buff []byte, ofst int64, fh uint64) int {
	e.trace("write", "%s ofst=%d len=%d", path, ofst, len(buff))
	fds, ok := e.fdsFor(fh)
	if !ok {
		var errn syscall.Errno
		fds, errn = e.openPathFDs(path, syscall.O_WRONLY)
		if errn != 0 {
			return errno.NegateErrno(errn)
		}
		defer fanout.Close(fds)
	}
	results := fanout.Pwrite(fds, buff, ofst)
	ref := e.check.Write("write", results)
	if ref.Errno != 0 {
		return errno.NegateErrno(ref.Errno)
	}
	return ref.N
}

// Release closes replicas 1...N-1 first (they are reachable only via the
// handle's side table), then the canonical descriptor, so fh remains a
// valid key throughout teardown. After this call fh is undefined.
func (e *Engine) Release(path string, fh uint64) int {
	e.trace("release", "%s", path)
	fd0 := int(fh)
	side, ok := e.handles.Remove(fd0)
	if !ok {
		return 0
	}
	fanout.Close(side)
	fanout.Close([]int{fd0})
	return 0
}

// Fsync is a no-op acknowledgement: mirrorfs is a correctness-testing
// harness, not a durability layer, so the underlying filesystems' own
// fsync behavior is left untouched.
func (e *Engine) Fsync(path string, datasync bool, fh uint64) int {
	return 0
}
