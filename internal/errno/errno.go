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

// Package errno centralizes the error -> syscall.Errno -> int mapping the
// Operation Surface (C6) needs to hand a negated POSIX error code back to
// the host driver for every entry point.
package errno

import (
	"context"
	"errors"
	"syscall"
)

// FromContext returns EINTR when ctx has been cancelled, otherwise the
// syscall.Errno embedded in err (searched via errors.As), or EIO if err does
// not wrap one.
func FromContext(ctx context.Context, err error) syscall.Errno {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return syscall.EINTR
		default:
		}
	}
	return From(err)
}

// From extracts the syscall.Errno embedded in err, defaulting to EIO for any
// error that is not ultimately a syscall.Errno.
func From(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return syscall.EIO
}

// Negate converts a syscall.Errno (or nil error) into the negated int form
// every cgofuse.FileSystemInterface entry point must return: 0 on success,
// -errno on failure.
func Negate(err error) int {
	return NegateErrno(From(err))
}

// NegateErrno converts a syscall.Errno directly into the negated int form
// every cgofuse.FileSystemInterface entry point must return: 0 on success,
// -errno on failure. Unlike Negate, it takes the errno register the Fanout
// Executor and Equivalence Checker already carry, with no error-interface
// round trip.
func NegateErrno(e syscall.Errno) int {
	if e == 0 {
		return 0
	}
	return -int(e)
}
