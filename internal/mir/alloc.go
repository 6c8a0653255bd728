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

package mir

import (
	"fmt"
)

// Allocator hands out fresh temporaries and labels for a single function. It
// carries mutable counters and must not be shared across functions.
type Allocator struct {
	fn    string
	temp  int
	label int
	vars  map[string]*Temp
}

func NewAllocator(fn string) *Allocator {
	return &Allocator{
		fn:   fn,
		vars: make(map[string]*Temp),
	}
}

// Temp allocates a fresh temporary.
func (self *Allocator) Temp() *Temp {
	self.temp++
	return T(fmt.Sprintf("_t%d", self.temp-1))
}

// Label allocates a fresh label, the annotation only helps readability.
func (self *Allocator) Label(annotation string) string {
	self.label++
	return fmt.Sprintf("l%d_%s", self.label-1, annotation)
}

// Bind associates a source variable with a temporary named after it. Variable
// temporaries are prefixed with "_v_", fresh ones with "_t".
func (self *Allocator) Bind(name string) *Temp {
	tv := T("_v_" + name)
	self.vars[name] = tv
	return tv
}

// Lookup returns the temporary bound to a source variable.
func (self *Allocator) Lookup(name string) *Temp {
	if tv, ok := self.vars[name]; !ok {
		panic(fmt.Sprintf("mir: variable %s is not bound in function %s", name, self.fn))
	} else {
		return tv
	}
}
