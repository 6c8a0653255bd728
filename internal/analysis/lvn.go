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
	"github.com/cloudwego/midir/internal/cfg"
	"github.com/cloudwego/midir/internal/mir"
	"github.com/oleiade/lane"
)

type _Numbered struct {
	e mir.Expr
	n int
}

// Numbering is an immutable value numbering table, every update returns a new
// table.
type Numbering struct {
	exprs map[string]_Numbered
	temps map[int]*mir.Temp
}

func newNumbering() *Numbering {
	return &Numbering{
		exprs: make(map[string]_Numbered),
		temps: make(map[int]*mir.Temp),
	}
}

func (self *Numbering) clone() *Numbering {
	ret := &Numbering{
		exprs: make(map[string]_Numbered, len(self.exprs)+1),
		temps: make(map[int]*mir.Temp, len(self.temps)+1),
	}
	for k, v := range self.exprs {
		ret.exprs[k] = v
	}
	for k, v := range self.temps {
		ret.temps[k] = v
	}
	return ret
}

// NumberOf returns the value number of e.
func (self *Numbering) NumberOf(e mir.Expr) (int, bool) {
	v, ok := self.exprs[mir.Key(e)]
	return v.n, ok
}

// TempFor returns the temporary already holding the value of e.
func (self *Numbering) TempFor(e mir.Expr) (*mir.Temp, bool) {
	if v, ok := self.exprs[mir.Key(e)]; !ok {
		return nil, false
	} else if tv, ok := self.temps[v.n]; !ok {
		return nil, false
	} else {
		return tv, true
	}
}

func (self *Numbering) withExpr(e mir.Expr, n int) *Numbering {
	ret := self.clone()
	ret.exprs[mir.Key(e)] = _Numbered{e: e, n: n}
	return ret
}

func (self *Numbering) withTemp(n int, tv *mir.Temp) *Numbering {
	ret := self.clone()
	ret.temps[n] = tv
	ret.exprs[mir.Key(tv)] = _Numbered{e: tv, n: n}
	return ret
}

func (self *Numbering) without(pred func(e mir.Expr) bool) *Numbering {
	nums := make(map[int]bool)
	for _, v := range self.exprs {
		if pred(v.e) {
			nums[v.n] = true
		}
	}

	/* nothing to remove */
	if len(nums) == 0 {
		return self
	}

	/* remove every entry with the numbers */
	ret := newNumbering()
	for k, v := range self.exprs {
		if !nums[v.n] {
			ret.exprs[k] = v
		}
	}
	for n, tv := range self.temps {
		if !nums[n] {
			ret.temps[n] = tv
		}
	}
	return ret
}

// ValueNumbering is the result of the local value numbering analysis. In
// holds the table flowing into each statement, or nil if the statement is
// unreachable.
type ValueNumbering struct {
	In []*Numbering

	next  int
	graph *cfg.Graph[mir.Stmt]
	seen  []bool
}

// NumberValues runs local value numbering over a canonical body. Tables flow
// along single-entry paths, and restart empty at every merge point.
func NumberValues(body []mir.Stmt) *ValueNumbering {
	g := mir.BuildGraph(body)
	vn := &ValueNumbering{
		In:    make([]*Numbering, g.Len()),
		graph: g,
		seen:  make([]bool, g.Len()),
	}

	/* empty function */
	if g.Start() == cfg.None {
		return vn
	}

	/* start from the entry, merge points are re-queued */
	wl := lane.NewQueue()
	for wl.Enqueue(g.Start()); !wl.Empty(); {
		vn.dfs(wl.Dequeue().(int), true, newNumbering(), wl)
	}

	/* all done */
	return vn
}

func (self *ValueNumbering) dfs(id int, first bool, info *Numbering, wl *lane.Queue) {
	if self.seen[id] {
		return
	}

	/* multiple entry points, start over from here later */
	if !first && len(self.graph.Parents(id)) > 1 {
		wl.Enqueue(id)
		return
	}

	/* record the input, and compute the output */
	self.seen[id] = true
	self.In[id] = info
	out := self.transfer(info, self.graph.Instr(id))

	/* visit all the children */
	for _, c := range self.graph.Children(id) {
		self.dfs(c, false, out, wl)
	}
}

func (self *ValueNumbering) alloc() int {
	self.next++
	return self.next - 1
}

func (self *ValueNumbering) plus(info *Numbering, e mir.Expr) *Numbering {
	if _, ok := info.NumberOf(e); ok {
		return info
	} else {
		return info.withExpr(e, self.alloc())
	}
}

func (self *ValueNumbering) plusAll(info *Numbering, e mir.Expr) *Numbering {
	switch v := e.(type) {
	case *mir.Temp:
		return self.plus(info, v)
	case *mir.Op:
		return self.plus(self.plusAll(self.plusAll(info, v.X), v.Y), v)
	case *mir.Mem:
		return self.plus(self.plusAll(info, v.Addr), v)
	default:
		return info
	}
}

func (self *ValueNumbering) redefine(info *Numbering, tv *mir.Temp) *Numbering {
	return info.without(func(e mir.Expr) bool {
		return mir.ContainsTemp(e, tv.Id)
	})
}

func (self *ValueNumbering) transfer(info *Numbering, ins mir.Stmt) *Numbering {
	switch s := ins.(type) {
	case *mir.MoveTemp:
		info = self.redefine(self.plusAll(info, s.Src), s.Dst)
		if n, ok := info.NumberOf(s.Src); ok {
			return info.withTemp(n, s.Dst)
		} else {
			return info.withTemp(self.alloc(), s.Dst)
		}
	case *mir.MoveMem:
		info = self.plusAll(info, s.Src).without(mir.HasMem)
		return self.plusAll(info, s.Dst)
	case *mir.CallFunction:
		for _, v := range s.Args {
			info = self.plusAll(info, v)
		}
		if s.Ret == nil {
			return info
		} else {
			return self.redefine(info, s.Ret).withTemp(self.alloc(), s.Ret)
		}
	case *mir.CJump:
		return self.plusAll(info, s.Cond)
	case *mir.CJumpFallThrough:
		return self.plusAll(info, s.Cond)
	case *mir.Return:
		if s.Value == nil {
			return info
		} else {
			return self.plus(info, s.Value)
		}
	default:
		return info
	}
}
