/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package analysis hosts the Mid-IR and assembly analyses built on top of the
// dataflow engine.
package analysis

import (
	"sort"
	"strings"
)

// NameSet is an immutable set of temporary or register names.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	ret := make(NameSet, len(names))
	for _, v := range names {
		ret[v] = struct{}{}
	}
	return ret
}

func (self NameSet) Has(name string) bool {
	_, ok := self[name]
	return ok
}

// Sorted returns the names in ascending order.
func (self NameSet) Sorted() []string {
	ret := make([]string, 0, len(self))
	for k := range self {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func (self NameSet) Equal(other NameSet) bool {
	if len(self) != len(other) {
		return false
	}
	for k := range self {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

func (self NameSet) String() string {
	return "{" + strings.Join(self.Sorted(), ", ") + "}"
}
