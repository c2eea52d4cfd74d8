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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuseMountOptionsAlwaysDisablesCaching(t *testing.T) {
	old := mountOptions
	defer func() { mountOptions = old }()
	mountOptions = nil

	args := fuseMountOptions()
	require.Len(t, args, 2)
	assert.Equal(t, "-o", args[0])
	assert.Contains(t, args[1], "attr_timeout=0")
	assert.Contains(t, args[1], "entry_timeout=0")
	assert.Contains(t, args[1], "negative_timeout=0")
	assert.Contains(t, args[1], "use_ino")
}

func TestFuseMountOptionsMergesUserSuppliedOptions(t *testing.T) {
	old := mountOptions
	defer func() { mountOptions = old }()
	mountOptions = []string{"allow_other", "uid=1000"}

	args := fuseMountOptions()
	require.Len(t, args, 2)
	parts := strings.Split(args[1], ",")
	assert.Contains(t, parts, "allow_other")
	assert.Contains(t, parts, "uid=1000")
}
