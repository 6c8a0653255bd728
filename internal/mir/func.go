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
	"strings"
)

type Function struct {
	Name      string
	Args      []*Temp
	Body      []Stmt
	HasReturn bool
}

func (self *Function) String() string {
	return fmt.Sprintf(
		"function %s(%s) {\n%s}",
		self.Name,
		templist(self.Args),
		Dump(self.Body),
	)
}

// Global is a read-only data item, i.e. a string literal.
type Global struct {
	Name  string
	Value string
}

type Program struct {
	Globals   []Global
	Functions []*Function
	Entry     string
}

// Lookup finds a function by name.
func (self *Program) Lookup(name string) *Function {
	for _, fn := range self.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func (self *Program) String() string {
	buf := make([]string, 0, len(self.Globals)+len(self.Functions))

	/* global data first */
	for _, g := range self.Globals {
		buf = append(buf, fmt.Sprintf("const %s = %q", g.Name, g.Value))
	}

	/* then all the functions */
	for _, fn := range self.Functions {
		buf = append(buf, fn.String())
	}

	/* join them together */
	return strings.Join(buf, "\n")
}

func templist(v []*Temp) string {
	buf := make([]string, 0, len(v))
	for _, t := range v {
		buf = append(buf, t.Id)
	}
	return strings.Join(buf, ", ")
}
