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

// Package lower translates the high-level tree into canonical Mid-IR.
//
// Lowering happens in two passes. FirstPass produces a non-canonical Mid-IR in
// which expressions may still embed statements, and Canonicalize hoists all
// of them out, leaving a flat list of canonical statements.
package lower

import (
	"fmt"
	"sync/atomic"

	"github.com/cloudwego/midir/internal/hir"
	"github.com/cloudwego/midir/internal/mir"
)

const (
	FnMalloc = "_builtin_malloc"
	FnThrow  = "_builtin_throw"
	FnConcat = "_builtin_stringConcat"
)

var (
	FuncCount   uint32
	LambdaCount uint32
)

type _FirstPass struct {
	fn      string
	alloc   *mir.Allocator
	strs    map[string]string
	globals []mir.Global
	lambdas []*mir.Function
}

// FirstPass lowers a single function. Lambdas are lifted out into functions of
// their own, which are returned along with the string literals referenced by
// the function.
//
// Lifted lambdas share the allocator of the function they are lifted from, so
// they must be canonicalized with the same allocator.
func FirstPass(fn *hir.Function, alloc *mir.Allocator) (*mir.Function, []*mir.Function, []mir.Global) {
	p := &_FirstPass{
		fn:    fn.Name,
		alloc: alloc,
		strs:  make(map[string]string),
	}

	/* the lowered function */
	ret := &mir.Function{
		Name:      fn.Name,
		Args:      make([]*mir.Temp, 0, len(fn.Params)),
		HasReturn: fn.HasReturn,
	}

	/* bind all the parameters */
	for _, v := range fn.Params {
		ret.Args = append(ret.Args, alloc.Bind(v))
	}

	/* translate the body */
	ret.Body = p.stmts(fn.Body)
	atomic.AddUint32(&FuncCount, 1)
	atomic.AddUint32(&LambdaCount, uint32(len(p.lambdas)))
	return ret, p.lambdas, p.globals
}

func (self *_FirstPass) stmts(v []hir.Stmt) []mir.Stmt {
	ret := make([]mir.Stmt, 0, len(v))
	for _, s := range v {
		ret = append(ret, self.stmt(s))
	}
	return ret
}

func (self *_FirstPass) stmt(s hir.Stmt) mir.Stmt {
	switch v := s.(type) {
	case *hir.Let:
		return mir.Move(self.alloc.Bind(v.Name), self.expr(v.Value))
	case *hir.ExprStmt:
		return &mir.Ignore{E: self.expr(v.E)}
	case *hir.If:
		return self.ifElse(v)
	case *hir.Match:
		return self.match(v)
	case *hir.ClosureApply:
		return self.closureApply(v)
	case *hir.Return:
		return self.ret(v)
	case *hir.Throw:
		return mir.Invoke(FnThrow, []mir.Expr{self.expr(v.Value)}, nil)
	default:
		panic(fmt.Sprintf("lower: invalid statement type: %T", s))
	}
}

func (self *_FirstPass) ret(s *hir.Return) mir.Stmt {
	if s.Value == nil {
		return mir.Ret(nil)
	} else {
		return mir.Ret(self.expr(s.Value))
	}
}

// cjump emits a conditional jump on a boolean expression, short-circuiting
// the logical operators.
func (self *_FirstPass) cjump(e hir.Expr, t string, f string, buf []mir.Stmt) []mir.Stmt {
	switch v := e.(type) {
	case *hir.BoolLit:
		if v.V {
			return append(buf, mir.Goto(t))
		} else {
			return append(buf, mir.Goto(f))
		}

	/* logical operators */
	case *hir.Binary:
		if v.Op == hir.And {
			lb := self.alloc.Label("AND")
			buf = self.cjump(v.X, lb, f, buf)
			buf = append(buf, mir.Lbl(lb))
			return self.cjump(v.Y, t, f, buf)
		} else if v.Op == hir.Or {
			lb := self.alloc.Label("OR")
			buf = self.cjump(v.X, t, lb, buf)
			buf = append(buf, mir.Lbl(lb))
			return self.cjump(v.Y, t, f, buf)
		}
	}

	/* generic conditions */
	return append(buf, mir.Branch(self.expr(e), t, f))
}

func (self *_FirstPass) ifElse(s *hir.If) mir.Stmt {
	lt := self.alloc.Label("TRUE_BRANCH")
	lf := self.alloc.Label("FALSE_BRANCH")
	le := self.alloc.Label("IF_ELSE_END")

	/* condition and the true branch */
	buf := self.cjump(s.Cond, lt, lf, nil)
	buf = append(buf, mir.Lbl(lt))
	buf = append(buf, self.stmts(s.Then)...)
	buf = append(buf, mir.Goto(le))

	/* the false branch */
	buf = append(buf, mir.Lbl(lf))
	buf = append(buf, self.stmts(s.Else)...)
	buf = append(buf, mir.Lbl(le))
	return &mir.Seq{Stmts: buf}
}

func (self *_FirstPass) match(s *hir.Match) mir.Stmt {
	tag := self.alloc.Temp()
	val := self.alloc.Lookup(s.Matched)
	res := self.alloc.Bind(s.Result)
	end := self.alloc.Label("MATCH_END")

	/* load the tag, and initialize the result */
	buf := []mir.Stmt{
		mir.Move(tag, mir.Load(val)),
		mir.Move(res, mir.Zero),
	}

	/* matches are exhaustive, so the last case needs no test */
	for i, c := range s.Cases {
		miss := ""
		lb := self.alloc.Label(fmt.Sprintf("MATCH_BRANCH_%d", c.Tag))

		/* test the tag */
		if i < len(s.Cases)-1 {
			miss = self.alloc.Label(fmt.Sprintf("MATCH_MISS_%d", c.Tag))
			buf = append(buf, mir.Branch(mir.Bin(mir.OpEq, tag, mir.C(c.Tag)), lb, miss))
		}

		/* bind the data if needed */
		buf = append(buf, mir.Lbl(lb))
		if c.DataVar != "" {
			buf = append(buf, mir.Move(self.alloc.Bind(c.DataVar), mir.Load(mir.Add(val, mir.Eight))))
		}

		/* the body, followed by the value of this case */
		buf = append(buf, self.stmts(c.Body)...)
		buf = append(buf, mir.Move(res, self.expr(c.Value)))
		buf = append(buf, mir.Goto(end))

		/* try the next case */
		if miss != "" {
			buf = append(buf, mir.Lbl(miss))
		}
	}

	/* end of the match */
	buf = append(buf, mir.Lbl(end))
	return &mir.Seq{Stmts: buf}
}

// closureApply calls the function stored in a closure. A closure is a pair of
// words: the function and it's context. Closures without a context (context is
// zero) are called with the arguments alone, otherwise the context is passed
// as the first argument.
//
// The closure and the arguments appear in both calls, so anything that is not
// a plain value is evaluated exactly once, in order, before the dispatch.
func (self *_FirstPass) closureApply(s *hir.ClosureApply) mir.Stmt {
	var ret *mir.Temp
	var buf []mir.Stmt
	fn := self.expr(s.Closure)
	args := self.exprs(s.Args)

	/* save the closure and the arguments if needed */
	if !isValue(fn) || !allValues(args) {
		fn, buf = self.save(fn, buf)
		for i, v := range args {
			args[i], buf = self.save(v, buf)
		}
	}

	/* result collector is optional */
	ctx := self.alloc.Temp()
	if s.Result != "" {
		ret = self.alloc.Bind(s.Result)
	}

	/* allocate the labels */
	ls := self.alloc.Label("CLOSURE_SIMPLE")
	lc := self.alloc.Label("CLOSURE_COMPLEX")
	le := self.alloc.Label("CLOSURE_APP_END")

	/* prepend the context */
	argv := make([]mir.Expr, 0, len(args)+1)
	argv = append(argv, ctx)
	argv = append(argv, args...)

	/* dispatch on the context */
	return &mir.Seq{Stmts: append(buf,
		mir.Move(ctx, mir.Load(mir.Add(fn, mir.Eight))),
		mir.Branch(mir.Bin(mir.OpEq, ctx, mir.Zero), ls, lc),
		mir.Lbl(ls),
		&mir.CallFunction{Fn: mir.Load(fn), Args: args, Ret: ret},
		mir.Goto(le),
		mir.Lbl(lc),
		&mir.CallFunction{Fn: mir.Load(fn), Args: argv, Ret: ret},
		mir.Lbl(le),
	)}
}

// save evaluates e into a fresh temporary, constants and names are kept as is.
func (self *_FirstPass) save(e mir.Expr, buf []mir.Stmt) (mir.Expr, []mir.Stmt) {
	switch e.(type) {
	case *mir.Const, *mir.Name:
		return e, buf
	default:
		tv := self.alloc.Temp()
		return tv, append(buf, mir.Move(tv, e))
	}
}

// isValue reports whether e can be evaluated any number of times with the
// same result and without side effects.
func isValue(e mir.Expr) bool {
	switch e.(type) {
	case *mir.Const, *mir.Name, *mir.Temp:
		return true
	default:
		return false
	}
}

func allValues(v []mir.Expr) bool {
	for _, e := range v {
		if !isValue(e) {
			return false
		}
	}
	return true
}

func (self *_FirstPass) exprs(v []hir.Expr) []mir.Expr {
	ret := make([]mir.Expr, 0, len(v))
	for _, e := range v {
		ret = append(ret, self.expr(e))
	}
	return ret
}

func (self *_FirstPass) expr(e hir.Expr) mir.Expr {
	switch v := e.(type) {
	case *hir.IntLit:
		return mir.C(v.V)
	case *hir.BoolLit:
		return mir.C(b2i(v.V))
	case *hir.StrLit:
		return mir.Add(mir.N(self.str(v.V)), mir.Eight)
	case *hir.Var:
		return self.alloc.Lookup(v.Name)
	case *hir.FnRef:
		return self.closure(mir.N(v.Fn), mir.Zero, nil)
	case *hir.MethodRef:
		return self.closure(mir.N(v.Fn), self.expr(v.Recv), nil)
	case *hir.Unary:
		return self.unary(v)
	case *hir.Binary:
		return self.binary(v)
	case *hir.Ternary:
		return self.ternary(v)
	case *hir.Index:
		return mir.Load(mir.Add(self.expr(v.X), mir.C(int64(v.I)*8)))
	case *hir.StructNew:
		return self.structNew(v)
	case *hir.VariantNew:
		return self.variantNew(v)
	case *hir.Call:
		return &mir.Call{Fn: mir.N(v.Fn), Args: self.exprs(v.Args)}
	case *hir.Lambda:
		return self.lambda(v)
	default:
		panic(fmt.Sprintf("lower: invalid expression type: %T", e))
	}
}

func (self *_FirstPass) str(v string) string {
	if name, ok := self.strs[v]; ok {
		return name
	}

	/* allocate a new global for the string */
	name := fmt.Sprintf("_str_%s_%d", self.fn, len(self.globals))
	self.strs[v] = name
	self.globals = append(self.globals, mir.Global{Name: name, Value: v})
	return name
}

func (self *_FirstPass) unary(e *hir.Unary) mir.Expr {
	switch x := self.expr(e.X); e.Op {
	case hir.Not:
		return mir.Bin(mir.OpXor, x, mir.One)
	case hir.Neg:
		return mir.Bin(mir.OpSub, mir.Zero, x)
	default:
		panic(fmt.Sprintf("lower: invalid unary operator: %d", e.Op))
	}
}

var _BinaryOps = map[hir.BinaryOp]mir.Operator{
	hir.Mul:   mir.OpMul,
	hir.Div:   mir.OpDiv,
	hir.Mod:   mir.OpMod,
	hir.Plus:  mir.OpAdd,
	hir.Minus: mir.OpSub,
	hir.Lt:    mir.OpLt,
	hir.Le:    mir.OpLe,
	hir.Gt:    mir.OpGt,
	hir.Ge:    mir.OpGe,
	hir.Eq:    mir.OpEq,
	hir.Ne:    mir.OpNe,
	hir.And:   mir.OpAnd,
	hir.Or:    mir.OpOr,
}

func (self *_FirstPass) binary(e *hir.Binary) mir.Expr {
	if e.Op == hir.Concat {
		return &mir.Call{Fn: mir.N(FnConcat), Args: []mir.Expr{self.expr(e.X), self.expr(e.Y)}}
	} else if op, ok := _BinaryOps[e.Op]; !ok {
		panic("lower: invalid binary operator: " + e.Op.String())
	} else {
		return mir.Bin(op, self.expr(e.X), self.expr(e.Y))
	}
}

func (self *_FirstPass) ternary(e *hir.Ternary) mir.Expr {
	tv := self.alloc.Temp()
	lt := self.alloc.Label("TERNARY_TRUE")
	lf := self.alloc.Label("TERNARY_FALSE")
	le := self.alloc.Label("TERNARY_END")

	/* both branches assign to the same temporary */
	buf := self.cjump(e.Cond, lt, lf, nil)
	buf = append(buf, mir.Lbl(lt), mir.Move(tv, self.expr(e.Then)), mir.Goto(le))
	buf = append(buf, mir.Lbl(lf), mir.Move(tv, self.expr(e.Else)), mir.Lbl(le))
	return mir.Eseq(buf, tv)
}

func (self *_FirstPass) malloc(dst *mir.Temp, size int64) mir.Stmt {
	return mir.Move(dst, &mir.Call{Fn: mir.N(FnMalloc), Args: []mir.Expr{mir.C(size)}})
}

// words stores every value into consecutive words starting at base.
func (self *_FirstPass) words(base *mir.Temp, vals []mir.Expr, buf []mir.Stmt) []mir.Stmt {
	for i, v := range vals {
		buf = append(buf, mir.Store(mir.Add(base, mir.C(int64(i)*8)), v))
	}
	return buf
}

func (self *_FirstPass) closure(fn mir.Expr, ctx mir.Expr, buf []mir.Stmt) mir.Expr {
	tv := self.alloc.Temp()
	buf = append(buf, self.malloc(tv, 16))
	buf = append(buf, mir.Store(tv, fn))
	buf = append(buf, mir.Store(mir.Add(tv, mir.Eight), ctx))
	return mir.Eseq(buf, tv)
}

func (self *_FirstPass) structNew(e *hir.StructNew) mir.Expr {
	tv := self.alloc.Temp()
	buf := []mir.Stmt{self.malloc(tv, int64(len(e.Fields))*8)}
	return mir.Eseq(self.words(tv, self.exprs(e.Fields), buf), tv)
}

func (self *_FirstPass) variantNew(e *hir.VariantNew) mir.Expr {
	tv := self.alloc.Temp()
	buf := []mir.Stmt{self.malloc(tv, 16)}
	return mir.Eseq(self.words(tv, []mir.Expr{mir.C(e.Tag), self.expr(e.Data)}, buf), tv)
}

// lambda lifts the lambda into a new function taking the context as the first
// argument, and builds a closure out of it. Captured values are copied into the
// context, lambdas capturing nothing use a non-zero dummy context.
func (self *_FirstPass) lambda(e *hir.Lambda) mir.Expr {
	var buf []mir.Stmt
	var ctx mir.Expr = mir.One

	/* copy the captured values */
	if len(e.Captured) != 0 {
		tv := self.alloc.Temp()
		vals := make([]mir.Expr, 0, len(e.Captured))

		/* lookup all the captured variables */
		for _, v := range e.Captured {
			vals = append(vals, self.alloc.Lookup(v))
		}

		/* allocate the context */
		ctx = tv
		buf = append(buf, self.malloc(tv, int64(len(e.Captured))*8))
		buf = self.words(tv, vals, buf)
	}

	/* the context is always the first argument */
	cv := self.alloc.Temp()
	fn := &mir.Function{
		Name:      fmt.Sprintf("%s_lambda_%d", self.fn, len(self.lambdas)),
		Args:      []*mir.Temp{cv},
		HasReturn: e.HasReturn,
	}

	/* bind the parameters */
	for _, v := range e.Params {
		fn.Args = append(fn.Args, self.alloc.Bind(v))
	}

	/* unpack the context */
	for i, v := range e.Captured {
		fn.Body = append(fn.Body, mir.Move(self.alloc.Bind(v), mir.Load(mir.Add(cv, mir.C(int64(i)*8)))))
	}

	/* reserve the name before lowering the body, which may contain other lambdas */
	self.lambdas = append(self.lambdas, fn)
	fn.Body = append(fn.Body, self.stmts(e.Body)...)
	return self.closure(mir.N(fn.Name), ctx, buf)
}

func b2i(v bool) int64 {
	if v {
		return 1
	} else {
		return 0
	}
}
