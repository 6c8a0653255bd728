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

package lower

import (
	"fmt"

	"github.com/cloudwego/midir/internal/ice"
	"github.com/cloudwego/midir/internal/mir"
)

type _SecondPass struct {
	alloc *mir.Allocator
}

// Canonicalize flattens the output of FirstPass into canonical statements.
// Sub-expressions with side effects are hoisted in evaluation order, using
// fresh temporaries from alloc.
func Canonicalize(body []mir.Stmt, alloc *mir.Allocator) []mir.Stmt {
	p := _SecondPass{alloc}
	ret := make([]mir.Stmt, 0, len(body))

	/* lower every statement */
	for _, s := range body {
		ret = append(ret, p.stmt(s)...)
	}
	return ret
}

func (self _SecondPass) stmts(v []mir.Stmt) []mir.Stmt {
	var ret []mir.Stmt
	for _, s := range v {
		ret = append(ret, self.stmt(s)...)
	}
	return ret
}

func (self _SecondPass) stmt(s mir.Stmt) []mir.Stmt {
	switch v := s.(type) {
	case *mir.Label, *mir.Jump:
		return []mir.Stmt{v}
	case *mir.Seq:
		return self.stmts(v.Stmts)
	case *mir.MoveTemp:
		return self.moveTemp(v)
	case *mir.MoveMem:
		return self.moveMem(v)
	case *mir.CallFunction:
		return self.call(v.Fn, v.Args, v.Ret)
	case *mir.Ignore:
		return self.ignore(v)
	case *mir.CJump:
		buf, cond := self.expr(v.Cond)
		return append(buf, mir.Branch(cond, v.True, v.False))
	case *mir.Return:
		return self.ret(v)
	case *mir.CJumpFallThrough:
		ice.Panic("lower", ice.NoNode, v, "fall-through conditional jumps cannot appear before scheduling")
		return nil
	default:
		panic(fmt.Sprintf("lower: invalid statement type: %T", s))
	}
}

func (self _SecondPass) moveTemp(s *mir.MoveTemp) []mir.Stmt {
	if fn, ok := s.Src.(*mir.Call); ok {
		return self.call(fn.Fn, fn.Args, s.Dst)
	} else {
		buf, src := self.expr(s.Src)
		return append(buf, mir.Move(s.Dst, src))
	}
}

// moveMem evaluates the address before the value to store.
func (self _SecondPass) moveMem(s *mir.MoveMem) []mir.Stmt {
	if mir.IsCanonical(s.Dst) && mir.IsCanonical(s.Src) {
		return []mir.Stmt{&mir.MoveMem{Dst: mir.ReorderOp(s.Dst).(*mir.Mem), Src: mir.ReorderOp(s.Src)}}
	}

	/* lower both sides */
	buf, addr := self.expr(s.Dst.Addr)
	sbuf, src := self.expr(s.Src)

	/* save the address before evaluating the value */
	addr, buf = self.keep(addr, buf, sbuf)
	buf = append(buf, sbuf...)
	return append(buf, mir.Store(addr, src))
}

func (self _SecondPass) ignore(s *mir.Ignore) []mir.Stmt {
	if fn, ok := s.E.(*mir.Call); ok {
		return self.call(fn.Fn, fn.Args, nil)
	} else {
		buf, _ := self.expr(s.E)
		return buf
	}
}

func (self _SecondPass) ret(s *mir.Return) []mir.Stmt {
	if s.Value == nil {
		return []mir.Stmt{s}
	}

	/* the returned value must be canonical after lowering */
	buf, val := self.expr(s.Value)
	if !mir.IsCanonical(val) {
		ice.Panic("lower", ice.NoNode, s, "returned value lowered to non-canonical expression %s", val)
	}

	/* add the return statement */
	return append(buf, mir.Ret(val))
}

func (self _SecondPass) call(fn mir.Expr, args []mir.Expr, ret *mir.Temp) []mir.Stmt {
	buf, fv := self.expr(fn)
	abuf, argv := self.exprs(args)
	buf = append(buf, abuf...)
	return append(buf, &mir.CallFunction{Fn: fv, Args: argv, Ret: ret})
}

// exprs lowers an argument list. If any of the arguments is not canonical,
// every argument is evaluated into a temporary in order.
func (self _SecondPass) exprs(v []mir.Expr) ([]mir.Stmt, []mir.Expr) {
	var buf []mir.Stmt
	ret := make([]mir.Expr, 0, len(v))

	/* fast path: all canonical */
	if mir.AllCanonical(v) {
		for _, e := range v {
			ret = append(ret, mir.ReorderOp(e))
		}
		return nil, ret
	}

	/* lower all the arguments */
	ss := make([][]mir.Stmt, 0, len(v))
	es := make([]mir.Expr, 0, len(v))
	for _, e := range v {
		b, x := self.expr(e)
		ss = append(ss, b)
		es = append(es, x)
	}

	/* force every argument into a temporary */
	for i, x := range es {
		tv := self.alloc.Temp()
		buf = append(buf, ss[i]...)
		buf = append(buf, mir.Move(tv, x))
		ret = append(ret, tv)
	}
	return buf, ret
}

func (self _SecondPass) expr(e mir.Expr) ([]mir.Stmt, mir.Expr) {
	switch v := e.(type) {
	case *mir.Const, *mir.Name, *mir.Temp:
		return nil, v
	case *mir.Op:
		return self.op(v)
	case *mir.Mem:
		buf, addr := self.expr(v.Addr)
		return buf, mir.Load(addr)
	case *mir.Call:
		tv := self.alloc.Temp()
		return self.call(v.Fn, v.Args, tv), tv
	case *mir.ExprSeq:
		buf := self.stmts(v.Stmts)
		ebuf, x := self.expr(v.E)
		return append(buf, ebuf...), x
	default:
		panic(fmt.Sprintf("lower: invalid expression type: %T", e))
	}
}

// op keeps the left-to-right evaluation order: the left operand is saved into
// a temporary before the side effects of the right operand happen, unless
// those cannot change it's value.
func (self _SecondPass) op(e *mir.Op) ([]mir.Stmt, mir.Expr) {
	xbuf, x := self.expr(e.X)
	ybuf, y := self.expr(e.Y)

	/* both operands are canonical */
	if mir.IsCanonical(e.X) && mir.IsCanonical(e.Y) {
		return nil, mir.ReorderOp(e)
	}

	/* save the left operand if needed */
	x, xbuf = self.keep(x, xbuf, ybuf)
	return append(xbuf, ybuf...), mir.ReorderOp(mir.Bin(e.Op, x, y))
}

// keep saves x into a fresh temporary when the statements in next might change
// it's value. Memory is never overwritten, so only temporaries matter.
func (self _SecondPass) keep(x mir.Expr, buf []mir.Stmt, next []mir.Stmt) (mir.Expr, []mir.Stmt) {
	switch v := x.(type) {
	case *mir.Const, *mir.Name:
		return x, buf
	case *mir.Temp:
		if !assigns(next, v.Id) {
			return x, buf
		}
	}

	/* any other expression goes into a temporary, unless nothing follows */
	if len(next) == 0 {
		return x, buf
	}

	/* save the value */
	tv := self.alloc.Temp()
	return tv, append(buf, mir.Move(tv, x))
}

func assigns(v []mir.Stmt, id string) bool {
	for _, s := range v {
		switch p := s.(type) {
		case *mir.MoveTemp:
			if p.Dst.Id == id {
				return true
			}
		case *mir.CallFunction:
			if p.Ret != nil && p.Ret.Id == id {
				return true
			}
		}
	}
	return false
}
