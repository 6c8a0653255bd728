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

// Package hir defines the high-level input of the Mid-IR lowering.
//
// Trees handed to the lowering are fully type checked and monomorphic, and
// every variable name is already unique within it's function.
package hir

import (
	"fmt"
	"strconv"
	"strings"
)

type Expr interface {
	fmt.Stringer
	hirexpr()
}

type (
	IntLit struct {
		V int64
	}

	BoolLit struct {
		V bool
	}

	StrLit struct {
		V string
	}

	Var struct {
		Name string
	}

	// FnRef makes a closure out of a global function, without any context.
	FnRef struct {
		Fn string
	}

	// MethodRef makes a closure out of a method bound to Recv.
	MethodRef struct {
		Fn   string
		Recv Expr
	}

	Unary struct {
		Op UnaryOp
		X  Expr
	}

	Binary struct {
		Op BinaryOp
		X  Expr
		Y  Expr
	}

	Ternary struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	// Index reads the I-th word of a struct.
	Index struct {
		X Expr
		I int
	}

	StructNew struct {
		Fields []Expr
	}

	VariantNew struct {
		Tag  int64
		Data Expr
	}

	// Call calls a global function by name, builtins included.
	Call struct {
		Fn   string
		Args []Expr
	}

	// Lambda is an anonymous function capturing the listed variables by value.
	Lambda struct {
		Params    []string
		Captured  []string
		Body      []Stmt
		HasReturn bool
	}
)

type UnaryOp uint8

const (
	Not UnaryOp = iota
	Neg
)

type BinaryOp uint8

const (
	Mul BinaryOp = iota
	Div
	Mod
	Plus
	Minus
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	And
	Or
	Concat
)

var _BinaryOpNames = [...]string{
	Mul:    "*",
	Div:    "/",
	Mod:    "%",
	Plus:   "+",
	Minus:  "-",
	Lt:     "<",
	Le:     "<=",
	Gt:     ">",
	Ge:     ">=",
	Eq:     "==",
	Ne:     "!=",
	And:    "&&",
	Or:     "||",
	Concat: "::",
}

func (self BinaryOp) String() string {
	if int(self) < len(_BinaryOpNames) {
		return _BinaryOpNames[self]
	} else {
		return fmt.Sprintf("binop(%d)", uint8(self))
	}
}

func (*IntLit) hirexpr()     {}
func (*BoolLit) hirexpr()    {}
func (*StrLit) hirexpr()     {}
func (*Var) hirexpr()        {}
func (*FnRef) hirexpr()      {}
func (*MethodRef) hirexpr()  {}
func (*Unary) hirexpr()      {}
func (*Binary) hirexpr()     {}
func (*Ternary) hirexpr()    {}
func (*Index) hirexpr()      {}
func (*StructNew) hirexpr()  {}
func (*VariantNew) hirexpr() {}
func (*Call) hirexpr()       {}
func (*Lambda) hirexpr()     {}

func (self *IntLit) String() string  { return strconv.FormatInt(self.V, 10) }
func (self *BoolLit) String() string { return strconv.FormatBool(self.V) }
func (self *StrLit) String() string  { return strconv.Quote(self.V) }
func (self *Var) String() string     { return self.Name }
func (self *FnRef) String() string   { return self.Fn }

func (self *MethodRef) String() string {
	return fmt.Sprintf("%s.%s", self.Recv, self.Fn)
}

func (self *Unary) String() string {
	if self.Op == Not {
		return fmt.Sprintf("!%s", self.X)
	} else {
		return fmt.Sprintf("-%s", self.X)
	}
}

func (self *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", self.X, self.Op, self.Y)
}

func (self *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", self.Cond, self.Then, self.Else)
}

func (self *Index) String() string {
	return fmt.Sprintf("%s[%d]", self.X, self.I)
}

func (self *StructNew) String() string {
	return fmt.Sprintf("[%s]", exprlist(self.Fields))
}

func (self *VariantNew) String() string {
	return fmt.Sprintf("Tag%d(%s)", self.Tag, self.Data)
}

func (self *Call) String() string {
	return fmt.Sprintf("%s(%s)", self.Fn, exprlist(self.Args))
}

func (self *Lambda) String() string {
	return fmt.Sprintf("(%s) [%s] -> { %d statements }", strings.Join(self.Params, ", "), strings.Join(self.Captured, ", "), len(self.Body))
}

func exprlist(v []Expr) string {
	buf := make([]string, 0, len(v))
	for _, e := range v {
		buf = append(buf, e.String())
	}
	return strings.Join(buf, ", ")
}
