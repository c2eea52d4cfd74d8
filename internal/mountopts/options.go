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

// Package mountopts parses repeated "-o key=value,key2" command-line mount
// options into the flat map the host driver's mount options expect:
// mirrorfs's own flags are bound through cfg.BindFlags, and everything else
// is handed on to the FUSE layer via -o without mirrorfs acting on it.
package mountopts

import "strings"

// Parse splits s on commas and adds each comma-separated "key" or
// "key=value" pair into m. A bare key (no "=") is recorded with an empty
// value, which is how host drivers expect boolean options like "ro" or
// "allow_other".
func Parse(m map[string]string, s string) {
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '='); i >= 0 {
			m[part[:i]] = part[i+1:]
			continue
		}
		m[part] = ""
	}
}

// ToArgs flattens m back into the "-o" argument list cgofuse expects.
func ToArgs(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	var b strings.Builder
	first := true
	for k, v := range m {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(k)
		if v != "" {
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return []string{"-o", b.String()}
}
