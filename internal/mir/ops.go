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

type Operator uint8

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
)

var _OpNames = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpAnd: "&",
	OpOr:  "|",
	OpXor: "^",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpEq:  "==",
	OpNe:  "!=",
}

var _OpInverse = [...]Operator{
	OpLt: OpGe,
	OpLe: OpGt,
	OpGt: OpLe,
	OpGe: OpLt,
	OpEq: OpNe,
	OpNe: OpEq,
}

func (self Operator) String() string {
	if int(self) < len(_OpNames) {
		return _OpNames[self]
	} else {
		return fmt.Sprintf("op(%d)", uint8(self))
	}
}

// IsCommutative reports whether the operands can be swapped freely.
func (self Operator) IsCommutative() bool {
	switch self {
	case OpAdd, OpMul, OpAnd, OpOr, OpXor, OpEq, OpNe:
		return true
	default:
		return false
	}
}

// IsComparison reports whether the operator produces a boolean.
func (self Operator) IsComparison() bool {
	return self >= OpLt && self <= OpNe
}

// Invert returns the comparison that holds exactly when self does not.
func (self Operator) Invert() Operator {
	if !self.IsComparison() {
		panic("mir: cannot invert a non-comparison operator: " + self.String())
	} else {
		return _OpInverse[self]
	}
}

// Eval folds the operator over two known operands. The second result is false
// when the operation has no defined value, i.e. a division or modulo by zero.
func (self Operator) Eval(x int64, y int64) (int64, bool) {
	switch self {
	case OpAdd:
		return x + y, true
	case OpSub:
		return x - y, true
	case OpMul:
		return x * y, true
	case OpDiv:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case OpMod:
		if y == 0 {
			return 0, false
		}
		return x % y, true
	case OpAnd:
		return x & y, true
	case OpOr:
		return x | y, true
	case OpXor:
		return x ^ y, true
	case OpLt:
		return b2i(x < y), true
	case OpLe:
		return b2i(x <= y), true
	case OpGt:
		return b2i(x > y), true
	case OpGe:
		return b2i(x >= y), true
	case OpEq:
		return b2i(x == y), true
	case OpNe:
		return b2i(x != y), true
	default:
		panic(fmt.Sprintf("mir: invalid binary operator: %d", self))
	}
}

func b2i(v bool) int64 {
	if v {
		return 1
	} else {
		return 0
	}
}
