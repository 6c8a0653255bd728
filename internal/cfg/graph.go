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

// Package cfg builds control-flow graphs over flat instruction sequences.
//
// A graph node is identified by the position of its instruction in the
// original sequence, so node i+1 is always the fall-through successor of node
// i when one exists.
package cfg

import (
	"fmt"

	"github.com/cloudwego/midir/internal/ice"
	"github.com/oleiade/lane"
)

// None is the absent node.
const None = -1

// Adapter extracts control-flow facts from one kind of instruction.
type Adapter[T any] interface {
	// Label returns the label defined by ins, if any.
	Label(ins T) (string, bool)

	// Target returns the destination of an unconditional jump.
	Target(ins T) (string, bool)

	// Branches returns the destinations of a conditional jump, along with
	// whether the jump may also fall through to the next instruction.
	Branches(ins T) ([]string, bool)

	// IsTerminal reports whether control never reaches the next instruction.
	IsTerminal(ins T) bool
}

type Node[T any] struct {
	Id  int
	Ins T
}

// Graph is an immutable control-flow graph. Node 0 is the entry.
type Graph[T any] struct {
	nodes    []Node[T]
	labels   map[string]int
	children [][]int
	parents  [][]int
}

// Build constructs the control-flow graph of ins. A jump to an unknown label
// is an internal compiler error.
func Build[T any](ins []T, adapter Adapter[T]) *Graph[T] {
	nb := len(ins)
	gr := &Graph[T]{
		nodes:    make([]Node[T], nb),
		labels:   make(map[string]int),
		children: make([][]int, nb),
		parents:  make([][]int, nb),
	}

	/* assign node IDs, and record all the labels */
	for i, v := range ins {
		gr.nodes[i] = Node[T]{Id: i, Ins: v}

		/* check for labels */
		if lb, ok := adapter.Label(v); ok {
			if _, dup := gr.labels[lb]; dup {
				ice.Panic("cfg", i, stringer(v), "duplicated label %s", lb)
			} else {
				gr.labels[lb] = i
			}
		}
	}

	/* link every node to it's successors */
	for i, v := range ins {
		if lb, ok := adapter.Target(v); ok {
			gr.link(i, gr.resolve(i, v, lb))
		} else if bv, ft := adapter.Branches(v); bv != nil {
			for _, br := range bv {
				gr.link(i, gr.resolve(i, v, br))
			}
			if nx := gr.next(i); ft && nx != None {
				gr.link(i, nx)
			}
		} else if nx := gr.next(i); nx != None && !adapter.IsTerminal(v) {
			gr.link(i, nx)
		}
	}

	/* invert the edges, nodes are visited in order so the parents are sorted */
	for i, cc := range gr.children {
		for _, c := range cc {
			gr.parents[c] = append(gr.parents[c], i)
		}
	}

	/* all done */
	return gr
}

func (self *Graph[T]) next(id int) int {
	if id+1 < len(self.nodes) {
		return id + 1
	} else {
		return None
	}
}

func (self *Graph[T]) resolve(id int, ins T, label string) int {
	if to, ok := self.labels[label]; ok {
		return to
	} else {
		ice.Panic("cfg", id, stringer(ins), "jump to unknown label %s", label)
		return None
	}
}

func (self *Graph[T]) link(from int, to int) {
	for _, v := range self.children[from] {
		if v == to {
			return
		}
	}
	self.children[from] = append(self.children[from], to)
}

func stringer(v interface{}) fmt.Stringer {
	if s, ok := v.(fmt.Stringer); ok {
		return s
	} else {
		return nil
	}
}

// Len returns the number of nodes.
func (self *Graph[T]) Len() int {
	return len(self.nodes)
}

// Start returns the entry node, or None for an empty graph.
func (self *Graph[T]) Start() int {
	if len(self.nodes) == 0 {
		return None
	} else {
		return 0
	}
}

func (self *Graph[T]) Node(id int) Node[T] {
	return self.nodes[id]
}

func (self *Graph[T]) Instr(id int) T {
	return self.nodes[id].Ins
}

// Next returns the fall-through position after id, or None after the last
// node. It says nothing about whether an edge exists.
func (self *Graph[T]) Next(id int) int {
	return self.next(id)
}

// LabelOf returns the node that defines label.
func (self *Graph[T]) LabelOf(label string) (int, bool) {
	id, ok := self.labels[label]
	return id, ok
}

// Children returns the successors of id in branch order.
func (self *Graph[T]) Children(id int) []int {
	return append([]int(nil), self.children[id]...)
}

// Parents returns the predecessors of id in ascending order.
func (self *Graph[T]) Parents(id int) []int {
	return append([]int(nil), self.parents[id]...)
}

// DFS visits every node reachable from the entry in pre-order. Successors are
// visited in branch order.
func (self *Graph[T]) DFS(visit func(node Node[T])) {
	if len(self.nodes) == 0 {
		return
	}

	/* the explicit stack and the visited set */
	st := lane.NewStack()
	vis := make([]bool, len(self.nodes))

	/* traverse the graph with DFS */
	for st.Push(0); !st.Empty(); {
		id := st.Pop().(int)
		cc := self.children[id]

		/* check for visited nodes */
		if vis[id] {
			continue
		}

		/* visit the node, and push children in reverse order */
		vis[id] = true
		visit(self.nodes[id])

		/* so that the first child will be popped first */
		for i := len(cc) - 1; i >= 0; i-- {
			if !vis[cc[i]] {
				st.Push(cc[i])
			}
		}
	}
}

// ReachableLeaves returns the reachable nodes without any successors, in
// DFS order.
func (self *Graph[T]) ReachableLeaves() []int {
	var ret []int
	self.DFS(func(node Node[T]) {
		if len(self.children[node.Id]) == 0 {
			ret = append(ret, node.Id)
		}
	})
	return ret
}

// Verify checks the structural invariants of the graph, that is node IDs
// match their positions and the edges are symmetric.
func (self *Graph[T]) Verify() error {
	for i, p := range self.nodes {
		if p.Id != i {
			return &ice.Error{Pass: "cfg", Node: i, Reason: fmt.Sprintf("node has id %d", p.Id)}
		}
	}

	/* every child must list the node as one of it's parents */
	for i, cc := range self.children {
		for _, c := range cc {
			if !contains(self.parents[c], i) {
				return &ice.Error{Pass: "cfg", Node: i, Reason: fmt.Sprintf("missing parent edge from %d", c)}
			}
		}
	}

	/* and vice versa */
	for i, pp := range self.parents {
		for _, p := range pp {
			if !contains(self.children[p], i) {
				return &ice.Error{Pass: "cfg", Node: i, Reason: fmt.Sprintf("missing child edge from %d", p)}
			}
		}
	}

	/* everything checks out */
	return nil
}

func contains(v []int, x int) bool {
	for _, p := range v {
		if p == x {
			return true
		}
	}
	return false
}
