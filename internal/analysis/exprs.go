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
	"sort"

	"github.com/cloudwego/midir/internal/dataflow"
	"github.com/cloudwego/midir/internal/mir"
)

// ExprInfo records where an available expression was first computed.
type ExprInfo struct {
	Expr  mir.Expr
	First []int
}

// Exprs maps the key of every available expression to it's provenance.
type Exprs map[string]ExprInfo

type _ExprOp struct{}

func (_ExprOp) Initial() Exprs {
	return Exprs{}
}

// Join keeps the expressions available on every incoming edge, merging the
// places they were computed at.
func (_ExprOp) Join(edges []Exprs, _ int) Exprs {
	ret := Exprs{}
	for key, info := range edges[0] {
		ok := true
		ids := append([]int(nil), info.First...)

		/* must be available on all edges */
		for _, e := range edges[1:] {
			if v, found := e[key]; !found {
				ok = false
				break
			} else {
				ids = mergeIds(ids, v.First)
			}
		}

		/* add to result if so */
		if ok {
			ret[key] = ExprInfo{Expr: info.Expr, First: ids}
		}
	}
	return ret
}

func (_ExprOp) Transfer(in Exprs, ins mir.Stmt, id int) Exprs {
	var kill string
	var add []mir.Expr

	/* find the computed expressions, and the redefined temporary */
	switch s := ins.(type) {
	case *mir.MoveTemp:
		add, kill = mir.Subexprs(s.Src), s.Dst.Id
	case *mir.MoveMem:
		add = append(mir.Subexprs(s.Src), mir.Subexprs(s.Dst)...)
	case *mir.CallFunction:
		for _, v := range s.Args {
			add = append(add, mir.Subexprs(v)...)
		}
		if s.Ret != nil {
			kill = s.Ret.Id
		}
	case *mir.CJump:
		add = mir.Subexprs(s.Cond)
	case *mir.CJumpFallThrough:
		add = mir.Subexprs(s.Cond)
	case *mir.Return:
		if s.Value != nil {
			add = mir.Subexprs(s.Value)
		}
	}

	/* nothing changed */
	if len(add) == 0 && kill == "" {
		return in
	}

	/* the first appearance wins */
	ret := make(Exprs, len(in)+len(add))
	for k, v := range in {
		ret[k] = v
	}
	for _, e := range add {
		if key := mir.Key(e); !ret.has(key) {
			ret[key] = ExprInfo{Expr: e, First: []int{id}}
		}
	}

	/* expressions reading a redefined temporary are no longer available */
	if kill != "" {
		for k, v := range ret {
			if mir.ContainsTemp(v.Expr, kill) {
				delete(ret, k)
			}
		}
	}
	return ret
}

func (_ExprOp) Equal(a Exprs, b Exprs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || !sameIds(v.First, w.First) {
			return false
		}
	}
	return true
}

func (self Exprs) has(key string) bool {
	_, ok := self[key]
	return ok
}

// Keys returns the available expression keys in ascending order.
func (self Exprs) Keys() []string {
	ret := make([]string, 0, len(self))
	for k := range self {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func mergeIds(a []int, b []int) []int {
	ret := append(append([]int(nil), a...), b...)
	sort.Ints(ret)

	/* remove duplicates */
	n := 0
	for i, v := range ret {
		if i == 0 || v != ret[n-1] {
			ret[n] = v
			n++
		}
	}
	return ret[:n]
}

func sameIds(a []int, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AvailableExpressions computes the expressions available before and after
// each statement of a canonical body.
func AvailableExpressions(body []mir.Stmt) *dataflow.Result[Exprs] {
	return dataflow.Solve[mir.Stmt, Exprs](mir.BuildGraph(body), dataflow.Forward, _ExprOp{})
}
