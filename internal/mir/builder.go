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

var (
	Zero  = &Const{V: 0}
	One   = &Const{V: 1}
	Eight = &Const{V: 8}
)

func C(v int64) *Const {
	return &Const{V: v}
}

func N(name string) *Name {
	return &Name{N: name}
}

func T(id string) *Temp {
	return &Temp{Id: id}
}

func Bin(op Operator, x Expr, y Expr) *Op {
	return &Op{Op: op, X: x, Y: y}
}

func Add(x Expr, y Expr) *Op {
	return Bin(OpAdd, x, y)
}

func Load(addr Expr) *Mem {
	return &Mem{Addr: addr}
}

func Move(dst *Temp, src Expr) *MoveTemp {
	return &MoveTemp{Dst: dst, Src: src}
}

func Store(addr Expr, src Expr) *MoveMem {
	return &MoveMem{Dst: &Mem{Addr: addr}, Src: src}
}

func Goto(label string) *Jump {
	return &Jump{Label: label}
}

func Lbl(name string) *Label {
	return &Label{Name: name}
}

func Branch(cond Expr, t string, f string) *CJump {
	return &CJump{Cond: cond, True: t, False: f}
}

func Ret(v Expr) *Return {
	return &Return{Value: v}
}

// Invoke calls a global function by name.
func Invoke(fn string, args []Expr, ret *Temp) *CallFunction {
	return &CallFunction{Fn: N(fn), Args: args, Ret: ret}
}

// Eseq wraps a statement list in front of an expression, collapsing an empty
// prefix.
func Eseq(stmts []Stmt, e Expr) Expr {
	if len(stmts) == 0 {
		return e
	} else {
		return &ExprSeq{Stmts: stmts, E: e}
	}
}
