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

// Package ice reports internal compiler errors.
//
// Everything running after type checking assumes a well-formed input, so a
// violated invariant is a compiler defect rather than a user error. Such
// violations are raised with Panic and are never recovered by the compiler.
package ice

import (
	"fmt"
)

// NoNode is used when the violation is not attached to a specific node.
const NoNode = -1

// Error is the panic payload of an internal compiler error.
type Error struct {
	Pass   string
	Node   int
	Instr  string
	Reason string
}

func (self *Error) Error() string {
	if self.Node == NoNode {
		return fmt.Sprintf("%s: %s", self.Pass, self.Reason)
	} else {
		return fmt.Sprintf("%s: %s (node %d: %s)", self.Pass, self.Reason, self.Node, self.Instr)
	}
}

// Panic raises an internal compiler error for the pass at the given node.
func Panic(pass string, node int, instr fmt.Stringer, format string, args ...interface{}) {
	e := &Error{
		Pass:   pass,
		Node:   node,
		Reason: fmt.Sprintf(format, args...),
	}

	/* instruction context is optional */
	if instr != nil {
		e.Instr = instr.String()
	}

	/* never returns */
	panic(e)
}
