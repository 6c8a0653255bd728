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

// Stmt is a Mid-IR statement. The set of implementations is closed, and a
// statement is never mutated once it has been built.
type Stmt interface {
	fmt.Stringer
	irstmt()
}

type (
	Label struct {
		Name string
	}

	Jump struct {
		Label string
	}

	// CJump jumps to True if Cond is non-zero, otherwise to False.
	CJump struct {
		Cond  Expr
		True  string
		False string
	}

	// CJumpFallThrough jumps to Label if Cond is non-zero, otherwise continues
	// with the next statement.
	CJumpFallThrough struct {
		Cond  Expr
		Label string
	}

	MoveTemp struct {
		Dst *Temp
		Src Expr
	}

	MoveMem struct {
		Dst *Mem
		Src Expr
	}

	// CallFunction calls Fn, storing the result into Ret if it is not nil.
	CallFunction struct {
		Fn   Expr
		Args []Expr
		Ret  *Temp
	}

	// Return returns Value, or nothing when it is nil.
	Return struct {
		Value Expr
	}

	// Seq only appears before canonicalization.
	Seq struct {
		Stmts []Stmt
	}

	// Ignore evaluates E for it's side effects only. Only appears before
	// canonicalization.
	Ignore struct {
		E Expr
	}
)

func (*Label) irstmt()            {}
func (*Jump) irstmt()             {}
func (*CJump) irstmt()            {}
func (*CJumpFallThrough) irstmt() {}
func (*MoveTemp) irstmt()         {}
func (*MoveMem) irstmt()          {}
func (*CallFunction) irstmt()     {}
func (*Return) irstmt()           {}
func (*Seq) irstmt()              {}
func (*Ignore) irstmt()           {}

func (self *Label) String() string {
	return self.Name + ":"
}

func (self *Jump) String() string {
	return "goto " + self.Label
}

func (self *CJump) String() string {
	return fmt.Sprintf("if %s then goto %s else goto %s", self.Cond, self.True, self.False)
}

func (self *CJumpFallThrough) String() string {
	return fmt.Sprintf("if %s then goto %s", self.Cond, self.Label)
}

func (self *MoveTemp) String() string {
	return fmt.Sprintf("%s = %s", self.Dst, self.Src)
}

func (self *MoveMem) String() string {
	return fmt.Sprintf("%s = %s", self.Dst, self.Src)
}

func (self *CallFunction) String() string {
	if self.Ret == nil {
		return fmt.Sprintf("%s(%s)", self.Fn, exprlist(self.Args))
	} else {
		return fmt.Sprintf("%s = %s(%s)", self.Ret, self.Fn, exprlist(self.Args))
	}
}

func (self *Return) String() string {
	if self.Value == nil {
		return "return"
	} else {
		return "return " + self.Value.String()
	}
}

func (self *Seq) String() string {
	return fmt.Sprintf("SEQ([%s])", stmtlist(self.Stmts))
}

func (self *Ignore) String() string {
	return fmt.Sprintf("IGNORE(%s)", self.E)
}

func stmtlist(v []Stmt) string {
	nb := len(v)
	buf := make([]string, 0, nb)

	/* convert every statement */
	for _, s := range v {
		buf = append(buf, s.String())
	}

	/* join them together */
	return strings.Join(buf, "; ")
}

// Dump formats a statement list one statement per line, indenting everything
// except labels.
func Dump(v []Stmt) string {
	var sb strings.Builder
	for _, s := range v {
		if _, ok := s.(*Label); !ok {
			sb.WriteString("  ")
		}
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
