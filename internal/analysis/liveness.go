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

package analysis

import (
	"github.com/cloudwego/midir/internal/asm"
	"github.com/cloudwego/midir/internal/cfg"
	"github.com/cloudwego/midir/internal/dataflow"
	"github.com/cloudwego/midir/internal/mir"
)

// Liveness holds the per-node facts of a live variable analysis.
type Liveness struct {
	Defs    [][]string
	Uses    [][]string
	LiveIn  []NameSet
	LiveOut []NameSet
}

type _LiveOp[T any] struct {
	defs []NameSet
	uses []NameSet
}

func (_LiveOp[T]) Initial() NameSet {
	return NameSet{}
}

func (_LiveOp[T]) Join(edges []NameSet, _ int) NameSet {
	ret := NameSet{}
	for _, e := range edges {
		for k := range e {
			ret[k] = struct{}{}
		}
	}
	return ret
}

// Transfer computes in = uses ∪ (out − defs).
func (self _LiveOp[T]) Transfer(out NameSet, _ T, id int) NameSet {
	ret := make(NameSet, len(out)+len(self.uses[id]))
	for k := range self.uses[id] {
		ret[k] = struct{}{}
	}
	for k := range out {
		if !self.defs[id].Has(k) {
			ret[k] = struct{}{}
		}
	}
	return ret
}

func (_LiveOp[T]) Equal(a NameSet, b NameSet) bool {
	return a.Equal(b)
}

func liveness[T any](g *cfg.Graph[T], defs [][]string, uses [][]string) *Liveness {
	op := _LiveOp[T]{
		defs: make([]NameSet, len(defs)),
		uses: make([]NameSet, len(uses)),
	}

	/* build the lookup sets */
	for i := range defs {
		op.defs[i] = NewNameSet(defs[i]...)
		op.uses[i] = NewNameSet(uses[i]...)
	}

	/* backward run, the "in" of the engine is the live-out set */
	rs := dataflow.Solve[T, NameSet](g, dataflow.Backward, op)
	return &Liveness{
		Defs:    defs,
		Uses:    uses,
		LiveIn:  rs.Out,
		LiveOut: rs.In,
	}
}

// LiveTemps computes the live temporaries around each statement of a
// canonical body.
func LiveTemps(body []mir.Stmt) *Liveness {
	defs := make([][]string, len(body))
	uses := make([][]string, len(body))

	/* collect the defs and uses */
	for i, s := range body {
		defs[i] = DefsOf(s)
		uses[i] = UsesOf(s)
	}

	/* run the analysis */
	return liveness(mir.BuildGraph(body), defs, uses)
}

// DefsOf returns the temporaries assigned by s.
func DefsOf(s mir.Stmt) []string {
	switch v := s.(type) {
	case *mir.MoveTemp:
		return []string{v.Dst.Id}
	case *mir.CallFunction:
		if v.Ret != nil {
			return []string{v.Ret.Id}
		}
	}
	return nil
}

// UsesOf returns the temporaries read by s.
func UsesOf(s mir.Stmt) []string {
	var ret []string
	switch v := s.(type) {
	case *mir.MoveTemp:
		ret = temps(ret, v.Src)
	case *mir.MoveMem:
		ret = temps(temps(ret, v.Dst.Addr), v.Src)
	case *mir.CallFunction:
		ret = temps(ret, v.Fn)
		for _, a := range v.Args {
			ret = temps(ret, a)
		}
	case *mir.CJump:
		ret = temps(ret, v.Cond)
	case *mir.CJumpFallThrough:
		ret = temps(ret, v.Cond)
	case *mir.Return:
		if v.Value != nil {
			ret = temps(ret, v.Value)
		}
	}
	return ret
}

func temps(buf []string, e mir.Expr) []string {
	switch v := e.(type) {
	case *mir.Temp:
		return append(buf, v.Id)
	case *mir.Op:
		return temps(temps(buf, v.X), v.Y)
	case *mir.Mem:
		return temps(buf, v.Addr)
	default:
		return buf
	}
}

// LiveVariables computes the live registers around each assembly instruction,
// honoring the calling convention. The last instruction is the epilogue,
// which reads the return value register when the function returns a value.
func LiveVariables(ins []asm.Instr, hasReturn bool) *Liveness {
	defs := make([][]string, len(ins))
	uses := make([][]string, len(ins))

	/* collect the defs and uses */
	for i, v := range ins {
		du := new(_DefUse)
		du.visit(v, hasReturn)
		defs[i], uses[i] = du.defs, du.uses
	}

	/* the epilogue reads the return value */
	if n := len(ins); n > 0 && hasReturn {
		uses[n-1] = append(uses[n-1], string(asm.RAX))
	}

	/* run the analysis */
	return liveness(asm.BuildGraph(ins), defs, uses)
}

type _DefUse struct {
	defs []string
	uses []string
}

func (self *_DefUse) def(r asm.Reg) {
	self.defs = append(self.defs, string(r))
}

func (self *_DefUse) use(v asm.Operand) {
	switch x := v.(type) {
	case asm.Reg:
		self.uses = append(self.uses, string(x))
	case asm.Mem:
		for _, r := range x.Regs() {
			self.uses = append(self.uses, string(r))
		}
	}
}

// update handles operands written in place: registers are both read and
// written, while memory only reads the address registers.
func (self *_DefUse) update(v asm.Operand) {
	if r, ok := v.(asm.Reg); ok {
		self.def(r)
	}
	self.use(v)
}

func (self *_DefUse) visit(ins asm.Instr, hasReturn bool) {
	switch v := ins.(type) {
	case *asm.MovImm:
		if r, ok := v.Dst.(asm.Reg); ok {
			self.def(r)
		} else {
			self.use(v.Dst)
		}
	case *asm.MovToMem:
		self.use(v.Dst)
		self.use(v.Src)
	case *asm.MovToReg:
		self.def(v.Dst)
		self.use(v.Src)
	case *asm.Lea:
		self.def(v.Dst)
		self.use(v.M)
	case *asm.Cmp:
		self.use(v.X)
		self.use(v.Y)
	case *asm.SetCC:
		self.def(v.Dst)
	case *asm.Call:
		self.use(v.Target)
		for _, r := range asm.ArgRegs {
			self.use(asm.Arch(r))
		}
		for _, r := range asm.CallerSaved {
			self.def(asm.Arch(r))
		}
	case *asm.Ret:
		if hasReturn {
			self.use(asm.RAX)
		}
	case *asm.BinOp:
		self.update(v.Dst)
		self.use(v.Src)
	case *asm.IMul3:
		self.def(v.Dst)
		self.use(v.Src)
	case *asm.Cqo:
		self.use(asm.RAX)
		self.def(asm.RDX)
	case *asm.IDiv:
		self.def(asm.RAX)
		self.def(asm.RDX)
		self.use(asm.RAX)
		self.use(asm.RDX)
		self.use(v.Divisor)
	case *asm.Unary:
		self.update(v.Dst)
	case *asm.Push:
		self.def(asm.RSP)
		self.use(asm.RSP)
		self.use(v.Arg)
	case *asm.Pop:
		self.def(asm.RSP)
		self.use(asm.RSP)
		self.def(v.Dst)
	}
}
