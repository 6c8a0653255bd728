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

// IsCanonical reports whether e is built purely from constants, names,
// temporaries, binary operations and memory reads.
func IsCanonical(e Expr) bool {
	switch v := e.(type) {
	case *Const, *Name, *Temp:
		return true
	case *Op:
		return IsCanonical(v.X) && IsCanonical(v.Y)
	case *Mem:
		return IsCanonical(v.Addr)
	default:
		return false
	}
}

// AllCanonical reports whether every expression in v is canonical.
func AllCanonical(v []Expr) bool {
	for _, e := range v {
		if !IsCanonical(e) {
			return false
		}
	}
	return true
}

// ContainsTemp reports whether the canonical expression e reads temporary id.
func ContainsTemp(e Expr, id string) bool {
	switch v := e.(type) {
	case *Temp:
		return v.Id == id
	case *Op:
		return ContainsTemp(v.X, id) || ContainsTemp(v.Y, id)
	case *Mem:
		return ContainsTemp(v.Addr, id)
	default:
		return false
	}
}

// HasMem reports whether the canonical expression e reads memory.
func HasMem(e Expr) bool {
	switch v := e.(type) {
	case *Mem:
		return true
	case *Op:
		return HasMem(v.X) || HasMem(v.Y)
	default:
		return false
	}
}

// Subexprs returns every non-leaf sub-expression of a canonical expression in
// evaluation order, e itself last.
func Subexprs(e Expr) []Expr {
	var ret []Expr
	var walk func(Expr)

	/* post-order traversal */
	walk = func(x Expr) {
		switch v := x.(type) {
		case *Op:
			walk(v.X)
			walk(v.Y)
			ret = append(ret, v)
		case *Mem:
			walk(v.Addr)
			ret = append(ret, v)
		}
	}

	/* collect the sub-expressions */
	walk(e)
	return ret
}

// ReorderOp normalizes the operand order of a canonical binary operation
// so that commutative operations compare equal regardless of the source
// order. Non-commutative operations are returned as is.
func ReorderOp(e Expr) Expr {
	switch v := e.(type) {
	case *Op:
		x := ReorderOp(v.X)
		y := ReorderOp(v.Y)
		if v.Op.IsCommutative() && Compare(x, y) < 0 {
			x, y = y, x
		}
		return Bin(v.Op, x, y)
	case *Mem:
		return Load(ReorderOp(v.Addr))
	default:
		return e
	}
}

// InvertCondition returns an expression that is non-zero exactly when cond is
// zero, with cond being a boolean (0 or 1) valued expression.
func InvertCondition(cond Expr) Expr {
	switch v := cond.(type) {
	case *Const:
		return C(v.V ^ 1)
	case *Op:
		if v.Op.IsComparison() {
			return Bin(v.Op.Invert(), v.X, v.Y)
		} else if c, ok := v.Y.(*Const); ok && v.Op == OpXor && c.V == 1 {
			return v.X
		}
	}
	return Bin(OpXor, cond, One)
}

// Rewrite rebuilds a canonical expression bottom-up, replacing every node for
// which fn returns a non-nil replacement.
func Rewrite(e Expr, fn func(Expr) Expr) Expr {
	var r Expr
	switch v := e.(type) {
	case *Op:
		r = Bin(v.Op, Rewrite(v.X, fn), Rewrite(v.Y, fn))
	case *Mem:
		r = Load(Rewrite(v.Addr, fn))
	case *Const, *Name, *Temp:
		r = v
	default:
		panic(fmt.Sprintf("mir: cannot rewrite non-canonical expression %s", e))
	}

	/* replace the rebuilt node if needed */
	if x := fn(r); x != nil {
		return x
	} else {
		return r
	}
}
