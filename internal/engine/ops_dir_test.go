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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/winfsp/cgofuse/fuse"
)

// fakeFiller records every name Readdir hands it and can be told to signal
// "stop" after a fixed number of calls, mimicking the host driver's filler
// callback.
type fakeFiller struct {
	names  []string
	stopAt int
	n      int
}

func (f *fakeFiller) fill(name string, stat *fuse.Stat_t, ofst int64) bool {
	f.names = append(f.names, name)
	f.n++
	if f.stopAt > 0 && f.n >= f.stopAt {
		return false
	}
	return true
}

// Testable property 6: mkdir(p); readdir(parent(p)) yields an entry whose
// name equals basename(p) on every replica.
func TestReaddirYieldsMkdirAndCreateEntries(t *testing.T) {
	e, _ := newTestEngine(t, true)

	require.Equal(t, 0, e.Mkdir("/d", 0o755))
	rc, fh := e.Create("/f", os.O_CREATE|os.O_WRONLY, 0o644)
	require.Equal(t, 0, rc)
	require.Equal(t, 0, e.Release("/f", fh))

	filler := &fakeFiller{}
	rc = e.Readdir("/", filler.fill, 0, 0)
	require.Equal(t, 0, rc)

	require.Equal(t, []string{".", "..", "d", "f"}, sortedAfterDots(filler.names))
}

// sortedAfterDots keeps the leading "." and ".." in place (Readdir always
// emits them first) and sorts the remaining real entries, so the assertion
// does not depend on kernel-yielded directory order.
func sortedAfterDots(names []string) []string {
	out := append([]string(nil), names...)
	for i := 2; i < len(out); i++ {
		for j := i; j > 2 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// S4's implicit readdir check, and invariant "stops on filler stop": if the
// filler signals enough on the "." entry, Readdir must not call it again
// for ".." or any real entry.
func TestReaddirStopsImmediatelyWhenFillerSignalsStopOnDot(t *testing.T) {
	e, _ := newTestEngine(t, true)
	require.Equal(t, 0, e.Mkdir("/d", 0o755))

	filler := &fakeFiller{stopAt: 1}
	rc := e.Readdir("/", filler.fill, 0, 0)
	require.Equal(t, 0, rc)
	require.Equal(t, []string{"."}, filler.names)
}

// Readdir stops as soon as the filler signals enough among the real
// entries too, without visiting every name replica 0 yielded.
func TestReaddirStopsWhenFillerSignalsStopOnRealEntry(t *testing.T) {
	e, _ := newTestEngine(t, true)
	require.Equal(t, 0, e.Mkdir("/a", 0o755))
	require.Equal(t, 0, e.Mkdir("/b", 0o755))

	filler := &fakeFiller{stopAt: 3}
	rc := e.Readdir("/", filler.fill, 0, 0)
	require.Equal(t, 0, rc)
	require.Len(t, filler.names, 3)
	require.Equal(t, []string{".", ".."}, filler.names[:2])
}

// Readdir reports -ENOENT when the directory does not exist on any replica.
func TestReaddirOnMissingDirectoryFails(t *testing.T) {
	e, _ := newTestEngine(t, true)
	filler := &fakeFiller{}
	rc := e.Readdir("/nope", filler.fill, 0, 0)
	require.NotEqual(t, 0, rc)
	require.Empty(t, filler.names)
}

// A name divergence between replicas during readdir is a payload
// divergence: always fatal, regardless of abort_on_difference.
func TestReaddirNameDivergenceAcrossReplicasAlwaysAborts(t *testing.T) {
	e, reg := newTestEngine(t, false)
	aborted := false
	e.check.SetAbortFunc(func() { aborted = true })

	require.NoError(t, os.Mkdir(filepath.Join(reg.Path(0), "x"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(reg.Path(1), "y"), 0o755))

	filler := &fakeFiller{}
	e.Readdir("/", filler.fill, 0, 0)
	require.True(t, aborted)
}
