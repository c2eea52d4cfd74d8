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

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgsSeparatesReplicasFromMountPoint(t *testing.T) {
	replicas, mountPoint, err := splitArgs([]string{"/a", "/b", "/c", "/mnt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b", "/c"}, replicas)
	assert.Equal(t, "/mnt", mountPoint)
}

func TestSplitArgsMinimalTwoReplicasAndMount(t *testing.T) {
	replicas, mountPoint, err := splitArgs([]string{"/a", "/b", "/mnt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, replicas)
	assert.Equal(t, "/mnt", mountPoint)
}

func TestSplitArgsRejectsTooManyReplicas(t *testing.T) {
	args := make([]string, 0, 13)
	for i := 0; i < 12; i++ {
		args = append(args, "/r")
	}
	args = append(args, "/mnt")
	_, _, err := splitArgs(args)
	assert.Error(t, err)
}
