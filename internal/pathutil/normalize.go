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

// Package pathutil rewrites absolute host-driver paths into the relative
// fragments the *at(2) syscall family expects rooted at a replica
// directory descriptor.
package pathutil

// Normalize rewrites an absolute path delivered by the host driver (always
// beginning with a single leading "/") into the fragment expected by the
// *at(2) family of syscalls rooted at a replica directory fd: "/" becomes
// ".", and "/x/y" becomes "x/y".
//
// This function is pure and never allocates: it returns a subslice of path.
func Normalize(path string) string {
	if path == "/" {
		return "."
	}
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}
