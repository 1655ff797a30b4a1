// Copyright 2025 PingCAP, Inc.
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

package types

// PrefixNext returns the smallest byte string greater than every string
// prefixed by b: the last byte is incremented, carrying over 0xff bytes.
// The second return value is false when b is all 0xff, in which case no
// upper bound exists.
func PrefixNext(b []byte) ([]byte, bool) {
	next := make([]byte, len(b))
	copy(next, b)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			return next[:i+1], true
		}
	}
	return nil, false
}
