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
	"github.com/cloudwego/midir/internal/dataflow"
	"github.com/cloudwego/midir/internal/mir"
)

// Copies maps the destination of every available copy to it's source.
type Copies map[string]string

// Resolve follows the copy chain of name back to it's ultimate source.
func (self Copies) Resolve(name string) string {
	for i := 0; i <= len(self); i++ {
		if src, ok := self[name]; !ok {
			return name
		} else {
			name = src
		}
	}
	return name
}

type _CopyOp struct{}

func (_CopyOp) Initial() Copies {
	return Copies{}
}

// Join keeps a copy only when every incoming edge carries the same source for
// the destination.
func (_CopyOp) Join(edges []Copies, _ int) Copies {
	ret := Copies{}
	for dst, src := range edges[0] {
		ok := true
		for _, e := range edges[1:] {
			if s, found := e[dst]; !found || s != src {
				ok = false
				break
			}
		}
		if ok {
			ret[dst] = src
		}
	}
	return ret
}

func (_CopyOp) Transfer(in Copies, ins mir.Stmt, _ int) Copies {
	switch s := ins.(type) {
	case *mir.MoveTemp:
		ret := killCopies(in, s.Dst.Id)
		if src, ok := s.Src.(*mir.Temp); ok && src.Id != s.Dst.Id {
			ret[s.Dst.Id] = src.Id
		}
		return ret
	case *mir.CallFunction:
		if s.Ret == nil {
			return in
		} else {
			return killCopies(in, s.Ret.Id)
		}
	default:
		return in
	}
}

func (_CopyOp) Equal(a Copies, b Copies) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if s, ok := b[k]; !ok || s != v {
			return false
		}
	}
	return true
}

func killCopies(in Copies, name string) Copies {
	ret := make(Copies, len(in)+1)
	for dst, src := range in {
		if dst != name && src != name {
			ret[dst] = src
		}
	}
	return ret
}

// AvailableCopies computes the copies available before and after each
// statement.
func AvailableCopies(body []mir.Stmt) *dataflow.Result[Copies] {
	return dataflow.Solve[mir.Stmt, Copies](mir.BuildGraph(body), dataflow.Forward, _CopyOp{})
}
