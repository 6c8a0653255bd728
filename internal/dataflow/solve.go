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

// Package dataflow solves monotone dataflow problems over control-flow graphs
// with a worklist algorithm.
package dataflow

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cloudwego/midir/internal/cfg"
	"github.com/davecgh/go-spew/spew"
	"github.com/oleiade/lane"
)

var (
	SolveCount uint32
	StepCount  uint32
)

type Direction uint8

const (
	// Forward runs propagate values from parents to children.
	Forward Direction = iota

	// Backward runs propagate values from children to parents.
	Backward
)

func (self Direction) String() string {
	switch self {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", uint8(self))
	}
}

// Operator describes a dataflow problem over instructions of type T with
// edge values of type E. Edge values are replaced as a whole and must never be
// mutated once returned, since they may be shared between nodes.
type Operator[T any, E any] interface {
	// Initial is the value every node starts with, and the fixed input of nodes
	// without any incoming edges unless the operator implements Boundary.
	Initial() E

	// Join merges the output values of the incoming edges of node id.
	Join(edges []E, id int) E

	// Transfer computes the output value of node id from it's input value.
	Transfer(in E, ins T, id int) E

	// Equal reports whether two edge values are the same.
	Equal(a E, b E) bool
}

// Boundary may be implemented by operators whose entry value differs from the
// value every other node starts with, such as values defined on entry.
type Boundary[E any] interface {
	Boundary() E
}

func boundary[T any, E any](op Operator[T, E]) E {
	if v, ok := op.(Boundary[E]); ok {
		return v.Boundary()
	} else {
		return op.Initial()
	}
}

// Result is the fixpoint of a dataflow problem. For forward runs In holds the
// values flowing into each node and Out the values leaving it; backward runs
// use the same names relative to the direction of propagation, so In is the
// value after the node and Out the value before it in program order.
type Result[E any] struct {
	Dir Direction
	In  []E
	Out []E
}

// Solve runs the worklist algorithm until no value changes. Termination
// relies on the operator being monotone over a lattice of finite height.
func Solve[T any, E any](g *cfg.Graph[T], dir Direction, op Operator[T, E]) *Result[E] {
	nb := g.Len()
	rs := &Result[E]{
		Dir: dir,
		In:  make([]E, nb),
		Out: make([]E, nb),
	}

	/* initialize every node */
	for i := 0; i < nb; i++ {
		rs.In[i] = op.Initial()
		rs.Out[i] = op.Initial()
	}

	/* every node starts in the worklist */
	wl := lane.NewQueue()
	queued := make([]bool, nb)

	/* backward problems converge faster when walking from the end */
	for i := 0; i < nb; i++ {
		if dir == Forward {
			queued[i] = true
			wl.Enqueue(i)
		} else {
			queued[nb-i-1] = true
			wl.Enqueue(nb - i - 1)
		}
	}

	/* iterate until the fixpoint */
	for !wl.Empty() {
		id := wl.Dequeue().(int)
		src, dst := sides(g, dir, id)

		/* this node is no longer in the queue */
		queued[id] = false
		atomic.AddUint32(&StepCount, 1)

		/* compute the new input, the entry of a forward run is fixed */
		if len(src) == 0 || (dir == Forward && id == g.Start()) {
			rs.In[id] = boundary(op)
		} else {
			rs.In[id] = op.Join(collect(rs.Out, src), id)
		}

		/* check if the output changed */
		out := op.Transfer(rs.In[id], g.Instr(id), id)
		if op.Equal(out, rs.Out[id]) {
			continue
		}

		/* update the output, and re-visit all the affected nodes */
		rs.Out[id] = out
		for _, v := range dst {
			if !queued[v] {
				queued[v] = true
				wl.Enqueue(v)
			}
		}
	}

	/* all done */
	atomic.AddUint32(&SolveCount, 1)
	return rs
}

func sides[T any](g *cfg.Graph[T], dir Direction, id int) ([]int, []int) {
	if dir == Forward {
		return g.Parents(id), g.Children(id)
	} else {
		return g.Children(id), g.Parents(id)
	}
}

func collect[E any](vals []E, ids []int) []E {
	ret := make([]E, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, vals[id])
	}
	return ret
}

// Stable reports whether one more round of join and transfer over a converged
// result leaves every node unchanged.
func Stable[T any, E any](g *cfg.Graph[T], rs *Result[E], op Operator[T, E]) bool {
	for id := 0; id < g.Len(); id++ {
		var in E
		src, _ := sides(g, rs.Dir, id)

		/* recompute the input */
		if len(src) == 0 || (rs.Dir == Forward && id == g.Start()) {
			in = boundary(op)
		} else {
			in = op.Join(collect(rs.Out, src), id)
		}

		/* both values must stay the same */
		if !op.Equal(in, rs.In[id]) || !op.Equal(op.Transfer(in, g.Instr(id), id), rs.Out[id]) {
			return false
		}
	}
	return true
}

// Dump formats the result alongside the instructions for debugging.
func Dump[T any, E any](g *cfg.Graph[T], rs *Result[E]) string {
	buf := make([]string, 0, g.Len())
	sc := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

	/* dump every node */
	for id := 0; id < g.Len(); id++ {
		buf = append(buf, fmt.Sprintf(
			"#%d %v\n  in:  %s  out: %s",
			id,
			g.Instr(id),
			sc.Sdump(rs.In[id]),
			sc.Sdump(rs.Out[id]),
		))
	}

	/* join them together */
	return fmt.Sprintf("%s dataflow {\n%s}", rs.Dir, strings.Join(buf, "\n"))
}
