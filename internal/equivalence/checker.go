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

// Package equivalence implements the cross-replica comparison policy: one
// rule set per operation kind, applied across the result tuples the fanout
// executor collects, with abort-or-continue semantics on mismatch.
package equivalence

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/1movmedia/mirrorfs/internal/fanout"
	"github.com/1movmedia/mirrorfs/internal/logger"
	"github.com/1movmedia/mirrorfs/internal/metrics"
)

// Checker applies the comparison policy and the abort-on-difference
// configuration.
type Checker struct {
	// AbortOnDifference governs scalar/errno (Mismatch, class 2) handling.
	// Payload divergences and internal invariant violations always abort,
	// regardless of this field.
	AbortOnDifference bool

	// abort is the termination hook; overridable in tests so a reported
	// abort can be observed without killing the test binary.
	abort func()
}

// New returns a Checker configured per abortOnDifference.
func New(abortOnDifference bool) *Checker {
	return &Checker{AbortOnDifference: abortOnDifference, abort: defaultAbort}
}

func defaultAbort() { os.Exit(1) }

// SetAbortFunc overrides the termination hook. Intended for tests.
func (c *Checker) SetAbortFunc(f func()) { c.abort = f }

func (c *Checker) doAbort() {
	if c.abort != nil {
		c.abort()
		return
	}
	os.Exit(1)
}

func (c *Checker) diverge(op, field string, v0, vi any, i int) {
	logger.Errorf("%s: %s %v != %v (replica 0 vs replica %d)", op, field, v0, vi, i)
}

// scalar reports a class-2 Mismatch: a divergence in return value, error
// code, or another scalar field. It aborts only if AbortOnDifference is set.
func (c *Checker) scalar(op, field string, v0, vi any, i int) {
	c.diverge(op, field, v0, vi, i)
	metrics.Divergences.WithLabelValues(op, metrics.ClassMismatch).Inc()
	if c.AbortOnDifference {
		c.doAbort()
	}
}

// payload reports a divergence in a byte payload (read/readlink/readdir
// content). These are always fatal, regardless of AbortOnDifference.
func (c *Checker) payload(op, field string, v0, vi any, i int) {
	c.diverge(op, field, v0, vi, i)
	metrics.Divergences.WithLabelValues(op, metrics.ClassPayload).Inc()
	c.doAbort()
}

// Fatal reports a class-3 internal invariant violation. Always aborts,
// unconditionally, regardless of configuration.
func (c *Checker) Fatal(op, format string, args ...any) {
	logger.Errorf("%s: internal invariant violated: %s", op, fmt.Sprintf(format, args...))
	metrics.Divergences.WithLabelValues(op, metrics.ClassFatal).Inc()
	c.doAbort()
}

// Simple compares the error code of replica i against replica 0's, for
// operation kinds whose whole policy is (return value, error code):
// access, mkdir, unlink, rmdir, symlink, rename, link, chmod, chown,
// utimens, write.
func (c *Checker) Simple(op string, results []fanout.SimpleResult) fanout.SimpleResult {
	ref := results[0]
	for i := 1; i < len(results); i++ {
		if results[i].Errno != ref.Errno {
			c.scalar(op, "errno", ref.Errno, results[i].Errno, i)
		}
	}
	return ref
}

// Stat applies the getattr comparison policy: return value/error code
// always; on success, st_mode, st_nlink, st_uid, st_gid, and (for
// non-directories only) st_size.
func (c *Checker) Stat(op string, results []fanout.StatResult) fanout.StatResult {
	ref := results[0]
	for i := 1; i < len(results); i++ {
		r := results[i]
		if r.Errno != ref.Errno {
			c.scalar(op, "errno", ref.Errno, r.Errno, i)
			continue
		}
		if ref.Errno != 0 {
			continue
		}
		if r.Stat.Mode != ref.Stat.Mode {
			c.scalar(op, "st_mode", ref.Stat.Mode, r.Stat.Mode, i)
		}
		if r.Stat.Nlink != ref.Stat.Nlink {
			c.scalar(op, "st_nlink", ref.Stat.Nlink, r.Stat.Nlink, i)
		}
		if r.Stat.Uid != ref.Stat.Uid {
			c.scalar(op, "st_uid", ref.Stat.Uid, r.Stat.Uid, i)
		}
		if r.Stat.Gid != ref.Stat.Gid {
			c.scalar(op, "st_gid", ref.Stat.Gid, r.Stat.Gid, i)
		}
		if ref.Stat.Mode&unix.S_IFMT != unix.S_IFDIR && r.Stat.Size != ref.Stat.Size {
			c.scalar(op, "st_size", ref.Stat.Size, r.Stat.Size, i)
		}
	}
	return ref
}

// Readlink applies the readlink comparison policy: return value/error code,
// then byte-identity of the target. Target divergence is a payload
// divergence (always fatal).
func (c *Checker) Readlink(op string, results []fanout.ReadlinkResult) fanout.ReadlinkResult {
	ref := results[0]
	for i := 1; i < len(results); i++ {
		r := results[i]
		if r.Errno != ref.Errno {
			c.scalar(op, "errno", ref.Errno, r.Errno, i)
			continue
		}
		if ref.Errno != 0 {
			continue
		}
		if r.Target != ref.Target {
			c.payload(op, "target", ref.Target, r.Target, i)
		}
	}
	return ref
}

// Read applies the read comparison policy over the first ret bytes of each
// replica's buffer. Content divergence is a payload divergence (always
// fatal).
func (c *Checker) Read(op string, results []fanout.RWResult, bufs [][]byte) fanout.RWResult {
	ref := results[0]
	for i := 1; i < len(results); i++ {
		r := results[i]
		if r.Errno != ref.Errno {
			c.scalar(op, "errno", ref.Errno, r.Errno, i)
			continue
		}
		if ref.Errno != 0 {
			continue
		}
		if r.N != ref.N {
			c.scalar(op, "ret", ref.N, r.N, i)
			continue
		}
		if !bytes.Equal(bufs[0][:ref.N], bufs[i][:r.N]) {
			c.payload(op, "content", bufs[0][:ref.N], bufs[i][:r.N], i)
		}
	}
	return ref
}

// Write applies the plain (return value, error code) policy shared by every
// operation that carries no payload to compare.
func (c *Checker) Write(op string, results []fanout.RWResult) fanout.RWResult {
	ref := results[0]
	for i := 1; i < len(results); i++ {
		r := results[i]
		if r.Errno != ref.Errno {
			c.scalar(op, "errno", ref.Errno, r.Errno, i)
			continue
		}
		if ref.Errno == 0 && r.N != ref.N {
			c.scalar(op, "ret", ref.N, r.N, i)
		}
	}
	return ref
}

// OpenOrCreate applies the open/create comparison policy: the success-ness
// of the returned descriptor must agree across every replica (an
// inconsistent result is a class-3 internal invariant violation, not a
// configurable Mismatch), and if all agree on failure, their error codes
// must match (a class-2 Mismatch).
func (c *Checker) OpenOrCreate(op string, results []fanout.OpenResult) fanout.OpenResult {
	ref := results[0]
	refOK := ref.FD != -1
	for i := 1; i < len(results); i++ {
		r := results[i]
		rOK := r.FD != -1
		if rOK != refOK {
			c.Fatal(op, "fd success-ness disagreement: replica 0 fd=%d, replica %d fd=%d", ref.FD, i, r.FD)
			continue
		}
		if !refOK && r.Errno != ref.Errno {
			c.scalar(op, "errno", ref.Errno, r.Errno, i)
		}
	}
	return ref
}

// DirEntry is one entry name yielded by a readdir fanout, used by
// Readdir below.
type DirEntry struct {
	Name string
}

// Readdir compares, index by index, the names replica i yielded against
// the name replica 0 yielded at the same position. A replica running out
// of entries before replica 0 does is treated the same as a missing-entry
// mismatch: a payload divergence, always fatal.
func (c *Checker) Readdir(op string, index int, name0 string, entriesI []DirEntry) {
	if index >= len(entriesI) {
		c.payload(op, "entry", name0, "<missing>", -1)
		return
	}
	if entriesI[index].Name != name0 {
		c.payload(op, "entry", name0, entriesI[index].Name, -1)
	}
}
