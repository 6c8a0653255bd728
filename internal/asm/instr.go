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

// Package asm defines the x86-64 assembly-level IR whose registers are
// either physical or still virtual.
package asm

import (
	"fmt"
	"strings"
)

// Operand is an instruction argument: Imm, Reg or Mem.
type Operand interface {
	fmt.Stringer
	asmoperand()
}

type Imm int64

// Reg is either a physical register named after one of ArchRegs, or a virtual
// register awaiting allocation. The empty Reg means no register.
type Reg string

// Mem addresses D(M,I,S).
type Mem struct {
	M Reg
	I Reg
	S uint8
	D int32
}

func (Imm) asmoperand() {}
func (Reg) asmoperand() {}
func (Mem) asmoperand() {}

func (self Imm) String() string {
	return fmt.Sprintf("$%d", int64(self))
}

func (self Reg) String() string {
	if IsPrecolored(string(self)) {
		return "%" + string(self)
	} else {
		return string(self)
	}
}

func (self Mem) String() string {
	if self.I == "" {
		if self.D == 0 {
			return fmt.Sprintf("(%s)", self.M)
		} else {
			return fmt.Sprintf("%d(%s)", self.D, self.M)
		}
	} else if self.S <= 1 {
		if self.D == 0 {
			return fmt.Sprintf("(%s,%s)", self.M, self.I)
		} else {
			return fmt.Sprintf("%d(%s,%s)", self.D, self.M, self.I)
		}
	} else {
		if self.D == 0 {
			return fmt.Sprintf("(%s,%s,%d)", self.M, self.I, self.S)
		} else {
			return fmt.Sprintf("%d(%s,%s,%d)", self.D, self.M, self.I, self.S)
		}
	}
}

// Regs returns the registers read to compute the address.
func (self Mem) Regs() []Reg {
	var ret []Reg
	if self.M != "" {
		ret = append(ret, self.M)
	}
	if self.I != "" {
		ret = append(ret, self.I)
	}
	return ret
}

// Instr is an assembly instruction. The set of implementations is closed.
type Instr interface {
	fmt.Stringer
	asminstr()
}

type (
	Label struct {
		Name string
	}

	Comment struct {
		Text string
	}

	// MovImm loads a 64-bit immediate into a register or memory.
	MovImm struct {
		Dst Operand
		V   int64
	}

	MovToMem struct {
		Dst Mem
		Src Operand
	}

	MovToReg struct {
		Dst Reg
		Src Operand
	}

	Lea struct {
		Dst Reg
		M   Mem
	}

	Cmp struct {
		X Operand
		Y Operand
	}

	SetCC struct {
		Cond Cond
		Dst  Reg
	}

	// Jmp jumps to Label, unconditionally when Cond is Always.
	Jmp struct {
		Cond  Cond
		Label string
	}

	Call struct {
		Target Operand
	}

	Ret struct{}

	// BinOp computes Dst = Dst op Src, Dst is a Reg or a Mem.
	BinOp struct {
		Op  BinOpKind
		Dst Operand
		Src Operand
	}

	// IMul3 computes Dst = Src * V.
	IMul3 struct {
		Dst Reg
		Src Operand
		V   int32
	}

	Cqo struct{}

	IDiv struct {
		Divisor Operand
	}

	// Unary updates Dst in place, Dst is a Reg or a Mem.
	Unary struct {
		Op  UnaryKind
		Dst Operand
	}

	Push struct {
		Arg Operand
	}

	Pop struct {
		Dst Reg
	}
)

type Cond uint8

const (
	Always Cond = iota
	CondE
	CondNE
	CondL
	CondLE
	CondG
	CondGE
)

var _CondNames = [...]string{
	Always: "mp",
	CondE:  "e",
	CondNE: "ne",
	CondL:  "l",
	CondLE: "le",
	CondG:  "g",
	CondGE: "ge",
}

type BinOpKind uint8

const (
	AddQ BinOpKind = iota
	SubQ
	AndQ
	OrQ
	XorQ
	IMulQ
)

var _BinOpNames = [...]string{
	AddQ:  "addq",
	SubQ:  "subq",
	AndQ:  "andq",
	OrQ:   "orq",
	XorQ:  "xorq",
	IMulQ: "imulq",
}

type UnaryKind uint8

const (
	NegQ UnaryKind = iota
	ShlQ
)

func (*Label) asminstr()    {}
func (*Comment) asminstr()  {}
func (*MovImm) asminstr()   {}
func (*MovToMem) asminstr() {}
func (*MovToReg) asminstr() {}
func (*Lea) asminstr()      {}
func (*Cmp) asminstr()      {}
func (*SetCC) asminstr()    {}
func (*Jmp) asminstr()      {}
func (*Call) asminstr()     {}
func (*Ret) asminstr()      {}
func (*BinOp) asminstr()    {}
func (*IMul3) asminstr()    {}
func (*Cqo) asminstr()      {}
func (*IDiv) asminstr()     {}
func (*Unary) asminstr()    {}
func (*Push) asminstr()     {}
func (*Pop) asminstr()      {}

func (self *Label) String() string    { return self.Name + ":" }
func (self *Comment) String() string  { return "## " + self.Text }
func (self *MovImm) String() string   { return fmt.Sprintf("movabsq $%d, %s", self.V, self.Dst) }
func (self *MovToMem) String() string { return fmt.Sprintf("movq %s, %s", self.Src, self.Dst) }
func (self *MovToReg) String() string { return fmt.Sprintf("movq %s, %s", self.Src, self.Dst) }
func (self *Lea) String() string      { return fmt.Sprintf("leaq %s, %s", self.M, self.Dst) }
func (self *Cmp) String() string      { return fmt.Sprintf("cmpq %s, %s", self.Y, self.X) }
func (self *SetCC) String() string    { return fmt.Sprintf("set%s %s", _CondNames[self.Cond], self.Dst) }
func (self *Jmp) String() string      { return fmt.Sprintf("j%s %s", _CondNames[self.Cond], self.Label) }
func (self *Call) String() string     { return fmt.Sprintf("callq *%s", self.Target) }
func (self *Ret) String() string      { return "retq" }
func (self *BinOp) String() string {
	return fmt.Sprintf("%s %s, %s", _BinOpNames[self.Op], self.Src, self.Dst)
}
func (self *IMul3) String() string {
	return fmt.Sprintf("imulq $%d, %s, %s", self.V, self.Src, self.Dst)
}
func (self *Cqo) String() string  { return "cqto" }
func (self *IDiv) String() string { return fmt.Sprintf("idivq %s", self.Divisor) }
func (self *Push) String() string { return fmt.Sprintf("pushq %s", self.Arg) }
func (self *Pop) String() string  { return fmt.Sprintf("popq %s", self.Dst) }

func (self *Unary) String() string {
	if self.Op == NegQ {
		return fmt.Sprintf("negq %s", self.Dst)
	} else {
		return fmt.Sprintf("shlq %s", self.Dst)
	}
}

// Dump formats an instruction list one instruction per line.
func Dump(v []Instr) string {
	var sb strings.Builder
	for _, ins := range v {
		if _, ok := ins.(*Label); !ok {
			sb.WriteString("    ")
		}
		sb.WriteString(ins.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
