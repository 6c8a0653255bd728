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
	"strconv"
	"strings"
)

// Expr is a Mid-IR expression. The set of implementations is closed.
//
// The textual form of an expression is also its identity: two expressions are
// the same value iff their String() results are equal, which is what analyses
// key their tables on.
type Expr interface {
	fmt.Stringer
	irexpr()
}

type (
	Const struct {
		V int64
	}

	// Name refers to a global symbol, i.e. a function or a global variable.
	Name struct {
		N string
	}

	Temp struct {
		Id string
	}

	Op struct {
		Op Operator
		X  Expr
		Y  Expr
	}

	// Mem reads a machine word at Addr. Memory written by the generated code is
	// never overwritten with a different value once published.
	Mem struct {
		Addr Expr
	}

	// Call only appears before canonicalization.
	Call struct {
		Fn   Expr
		Args []Expr
	}

	// ExprSeq runs Stmts then evaluates E. Only appears before canonicalization.
	ExprSeq struct {
		Stmts []Stmt
		E     Expr
	}
)

func (*Const) irexpr()   {}
func (*Name) irexpr()    {}
func (*Temp) irexpr()    {}
func (*Op) irexpr()      {}
func (*Mem) irexpr()     {}
func (*Call) irexpr()    {}
func (*ExprSeq) irexpr() {}

func (self *Const) String() string {
	return strconv.FormatInt(self.V, 10)
}

func (self *Name) String() string {
	return "@" + self.N
}

func (self *Temp) String() string {
	return self.Id
}

func (self *Op) String() string {
	return fmt.Sprintf("(%s %s %s)", self.X, self.Op, self.Y)
}

func (self *Mem) String() string {
	return fmt.Sprintf("MEM[%s]", self.Addr)
}

func (self *Call) String() string {
	return fmt.Sprintf("%s(%s)", self.Fn, exprlist(self.Args))
}

func (self *ExprSeq) String() string {
	return fmt.Sprintf("ESEQ([%s], %s)", stmtlist(self.Stmts), self.E)
}

func exprlist(v []Expr) string {
	nb := len(v)
	buf := make([]string, 0, nb)

	/* convert every expression */
	for _, e := range v {
		buf = append(buf, e.String())
	}

	/* join them together */
	return strings.Join(buf, ", ")
}

// Key returns the structural identity of an expression.
func Key(e Expr) string {
	return e.String()
}

// SameExpr reports whether two expressions are structurally identical.
func SameExpr(a Expr, b Expr) bool {
	return a.String() == b.String()
}

func classof(e Expr) int {
	switch e.(type) {
	case *Const:
		return 0
	case *Name:
		return 1
	case *Temp:
		return 2
	case *Mem:
		return 3
	case *Op:
		return 4
	default:
		panic(fmt.Sprintf("mir: expression %s has no ordering", e))
	}
}

// Compare orders canonical expressions: constants, names, temporaries, memory
// reads, then binary operations.
func Compare(a Expr, b Expr) int {
	ca := classof(a)
	cb := classof(b)

	/* different kinds of expressions */
	if ca != cb {
		return ca - cb
	}

	/* same kind, compare the content */
	switch x := a.(type) {
	case *Const:
		return cmpint(x.V, b.(*Const).V)
	case *Name:
		return strings.Compare(x.N, b.(*Name).N)
	case *Temp:
		return strings.Compare(x.Id, b.(*Temp).Id)
	case *Mem:
		return Compare(x.Addr, b.(*Mem).Addr)
	default:
		y := b.(*Op)
		p := a.(*Op)
		if p.Op != y.Op {
			return int(p.Op) - int(y.Op)
		} else if r := Compare(p.X, y.X); r != 0 {
			return r
		} else {
			return Compare(p.Y, y.Y)
		}
	}
}

func cmpint(a int64, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	} else {
		return 0
	}
}
