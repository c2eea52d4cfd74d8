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

package equivalence

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/1movmedia/mirrorfs/internal/fanout"
)

func newRecordingChecker(abortOnDifference bool) (*Checker, *int) {
	c := New(abortOnDifference)
	aborts := 0
	c.SetAbortFunc(func() { aborts++ })
	return c, &aborts
}

func TestSimpleAgreementDoesNotAbort(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	ref := c.Simple("mkdir", []fanout.SimpleResult{{Ret: 0}, {Ret: 0}})
	assert.Equal(t, syscall.Errno(0), ref.Errno)
	assert.Equal(t, 0, *aborts)
}

func TestSimpleMismatchAbortsOnlyWhenConfigured(t *testing.T) {
	results := []fanout.SimpleResult{{Errno: 0}, {Errno: syscall.ENOENT}}

	c, aborts := newRecordingChecker(false)
	c.Simple("unlink", results)
	require.Equal(t, 0, *aborts)

	c2, aborts2 := newRecordingChecker(true)
	c2.Simple("unlink", results)
	require.Equal(t, 1, *aborts2)
}

func TestStatMismatchIgnoresSizeForDirectories(t *testing.T) {
	c, aborts := newRecordingChecker(true)
	var a, b unix.Stat_t
	a.Mode = unix.S_IFDIR | 0o755
	b.Mode = unix.S_IFDIR | 0o755
	a.Size = 4096
	b.Size = 8192

	c.Stat("getattr", []fanout.StatResult{{Stat: a}, {Stat: b}})
	assert.Equal(t, 0, *aborts)
}

func TestStatMismatchComparesSizeForRegularFiles(t *testing.T) {
	c, aborts := newRecordingChecker(true)
	var a, b unix.Stat_t
	a.Mode = unix.S_IFREG | 0o644
	b.Mode = unix.S_IFREG | 0o644
	a.Size = 2
	b.Size = 4

	c.Stat("getattr", []fanout.StatResult{{Stat: a}, {Stat: b}})
	assert.Equal(t, 1, *aborts)
}

func TestStatSkipsFieldComparisonWhenErrnoDiffers(t *testing.T) {
	c, aborts := newRecordingChecker(true)
	c.Stat("getattr", []fanout.StatResult{
		{Errno: 0},
		{Errno: syscall.ENOENT},
	})
	// One divergence (errno), not a second one for fields that were never
	// meaningfully compared.
	assert.Equal(t, 1, *aborts)
}

func TestReadlinkTargetDivergenceAlwaysAborts(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	c.Readlink("readlink", []fanout.ReadlinkResult{
		{Target: "a"},
		{Target: "b"},
	})
	assert.Equal(t, 1, *aborts)
}

func TestReadContentDivergenceAlwaysAborts(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	bufs := [][]byte{[]byte("hello"), []byte("world")}
	c.Read("read", []fanout.RWResult{{N: 5}, {N: 5}}, bufs)
	assert.Equal(t, 1, *aborts)
}

func TestReadAgreementDoesNotAbort(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	bufs := [][]byte{[]byte("hello"), []byte("hello")}
	c.Read("read", []fanout.RWResult{{N: 5}, {N: 5}}, bufs)
	assert.Equal(t, 0, *aborts)
}

func TestOpenOrCreateSuccessDisagreementIsAlwaysFatal(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	c.OpenOrCreate("open", []fanout.OpenResult{
		{FD: 3},
		{FD: -1, Errno: syscall.ENOENT},
	})
	// Fatal, regardless of AbortOnDifference being false.
	assert.Equal(t, 1, *aborts)
}

func TestOpenOrCreateAgreeingFailureIsConfigurableMismatch(t *testing.T) {
	results := []fanout.OpenResult{
		{FD: -1, Errno: syscall.ENOENT},
		{FD: -1, Errno: syscall.EACCES},
	}

	c, aborts := newRecordingChecker(false)
	c.OpenOrCreate("open", results)
	assert.Equal(t, 0, *aborts)

	c2, aborts2 := newRecordingChecker(true)
	c2.OpenOrCreate("open", results)
	assert.Equal(t, 1, *aborts2)
}

func TestOpenOrCreateAgreeingSuccessDoesNotAbort(t *testing.T) {
	c, aborts := newRecordingChecker(true)
	c.OpenOrCreate("create", []fanout.OpenResult{{FD: 3}, {FD: 7}})
	assert.Equal(t, 0, *aborts)
}

func TestReaddirMissingEntryIsFatal(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	c.Readdir("readdir", 2, "c", []DirEntry{{Name: "a"}, {Name: "b"}})
	assert.Equal(t, 1, *aborts)
}

func TestReaddirNameMismatchIsFatal(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	c.Readdir("readdir", 0, "a", []DirEntry{{Name: "z"}})
	assert.Equal(t, 1, *aborts)
}

func TestReaddirAgreementDoesNotAbort(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	c.Readdir("readdir", 0, "a", []DirEntry{{Name: "a"}})
	assert.Equal(t, 0, *aborts)
}

func TestFatalAlwaysAbortsRegardlessOfConfiguration(t *testing.T) {
	c, aborts := newRecordingChecker(false)
	c.Fatal("open", "fd success-ness disagreement")
	assert.Equal(t, 1, *aborts)
}
