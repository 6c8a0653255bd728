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
	"github.com/cloudwego/midir/internal/mir"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

type _CallGraph struct {
	g     *simple.DirectedGraph
	ids   map[string]int64
	names []string
}

func (self *_CallGraph) node(name string) graph.Node {
	if id, ok := self.ids[name]; ok {
		return self.g.Node(id)
	}

	/* allocate a new node */
	id := int64(len(self.names))
	nd := simple.Node(id)

	/* add to graph */
	self.ids[name] = id
	self.names = append(self.names, name)
	self.g.AddNode(nd)
	return nd
}

func (self *_CallGraph) link(from string, to string) {
	if from != to {
		self.g.SetEdge(self.g.NewEdge(self.node(from), self.node(to)))
	}
}

// UsedNames returns every global name transitively reachable from the
// program entry, the entry included. Names that are not functions of the
// program, such as builtins and global data, are reported but never expanded.
func UsedNames(p *mir.Program) NameSet {
	cg := &_CallGraph{
		g:   simple.NewDirectedGraph(),
		ids: make(map[string]int64),
	}

	/* scan every function for referenced names */
	for _, fn := range p.Functions {
		cg.node(fn.Name)
		for _, s := range fn.Body {
			for _, name := range NamesOf(s) {
				cg.link(fn.Name, name)
			}
		}
	}

	/* the entry might not even be a function */
	root := cg.node(p.Entry)
	ret := NewNameSet(p.Entry)

	/* BFS from the entry */
	bfs := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			ret[cg.names[n.ID()]] = struct{}{}
		},
	}

	/* walk the entire call graph */
	bfs.Walk(cg.g, root, nil)
	return ret
}

// NamesOf returns the global names referenced by a statement.
func NamesOf(s mir.Stmt) []string {
	var ret []string
	switch v := s.(type) {
	case *mir.MoveTemp:
		ret = names(ret, v.Src)
	case *mir.MoveMem:
		ret = names(names(ret, v.Dst), v.Src)
	case *mir.CallFunction:
		ret = names(ret, v.Fn)
		for _, a := range v.Args {
			ret = names(ret, a)
		}
	case *mir.CJump:
		ret = names(ret, v.Cond)
	case *mir.CJumpFallThrough:
		ret = names(ret, v.Cond)
	case *mir.Return:
		if v.Value != nil {
			ret = names(ret, v.Value)
		}
	}
	return ret
}

func names(buf []string, e mir.Expr) []string {
	switch v := e.(type) {
	case *mir.Name:
		return append(buf, v.N)
	case *mir.Op:
		return names(names(buf, v.X), v.Y)
	case *mir.Mem:
		return names(buf, v.Addr)
	default:
		return buf
	}
}
