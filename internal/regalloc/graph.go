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

// Package regalloc builds interference graphs out of live ranges, which is
// what register allocators color.
package regalloc

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is an undirected interference graph. Pre-colored nodes are fixed to a
// physical register: they take part in interference, but their degree is
// never tracked, so it always reads zero.
//
// A Graph belongs to a single function and must not be shared.
type Graph struct {
	adj        map[string]map[string]struct{}
	deg        map[string]int
	precolored map[string]bool
}

func NewGraph(precolored []string) *Graph {
	ret := &Graph{
		adj:        make(map[string]map[string]struct{}),
		deg:        make(map[string]int),
		precolored: make(map[string]bool, len(precolored)),
	}

	/* mark all the pre-colored nodes */
	for _, v := range precolored {
		ret.precolored[v] = true
	}
	return ret
}

// AddNode adds a node without any edges.
func (self *Graph) AddNode(v string) {
	if _, ok := self.adj[v]; !ok {
		self.adj[v] = make(map[string]struct{})
	}
}

// AddEdge records that u and v interfere. Adding an edge twice, or an edge
// from a node to itself, has no effect.
func (self *Graph) AddEdge(u string, v string) {
	if u == v || self.Contains(u, v) {
		return
	}

	/* insert both directions */
	self.AddNode(u)
	self.AddNode(v)
	self.adj[u][v] = struct{}{}
	self.adj[v][u] = struct{}{}

	/* only count the degree of non-pre-colored nodes */
	if !self.precolored[u] {
		self.deg[u]++
	}
	if !self.precolored[v] {
		self.deg[v]++
	}
}

func (self *Graph) Degree(v string) int {
	return self.deg[v]
}

// DecrementDegree lowers the degree of v by one, and returns the degree before
// the update.
func (self *Graph) DecrementDegree(v string) int {
	ret := self.deg[v]
	self.deg[v] = ret - 1
	return ret
}

func (self *Graph) Contains(u string, v string) bool {
	_, ok := self.adj[u][v]
	return ok
}

func (self *Graph) IsPrecolored(v string) bool {
	return self.precolored[v]
}

// Adjacent lists the neighbors of v in sorted order.
func (self *Graph) Adjacent(v string) []string {
	ret := make([]string, 0, len(self.adj[v]))
	for k := range self.adj[v] {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Nodes lists every node in sorted order.
func (self *Graph) Nodes() []string {
	ret := make([]string, 0, len(self.adj))
	for k := range self.adj {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Clear drops all nodes and edges, keeping the pre-colored set.
func (self *Graph) Clear() {
	self.adj = make(map[string]map[string]struct{})
	self.deg = make(map[string]int)
}

func (self *Graph) String() string {
	buf := make([]string, 0, len(self.adj))
	for _, v := range self.Nodes() {
		buf = append(buf, fmt.Sprintf("%s(%d): %s", v, self.deg[v], strings.Join(self.Adjacent(v), ", ")))
	}
	return strings.Join(buf, "\n")
}
