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

package regalloc

import (
	"sync/atomic"

	"github.com/cloudwego/midir/internal/analysis"
	"github.com/cloudwego/midir/internal/asm"
	"github.com/cloudwego/midir/internal/mir"
)

var (
	GraphCount uint32
)

// Move is a register-to-register copy, which allocators may coalesce.
type Move struct {
	Dst string
	Src string
}

// Build constructs the interference graph from the live ranges of a
// function. Every name defined by an instruction interferes with every name
// live after it, except that the source of a move does not interfere with it's
// destination. moves reports which instructions are such moves.
func Build(lv *analysis.Liveness, moves func(id int) (Move, bool), precolored []string) (*Graph, []Move) {
	var mv []Move
	g := NewGraph(precolored)

	/* add every instruction */
	for i := range lv.Defs {
		live := make(analysis.NameSet, len(lv.LiveOut[i])+len(lv.Defs[i]))
		for k := range lv.LiveOut[i] {
			live[k] = struct{}{}
		}

		/* all the names get a node, even without any interference */
		for _, v := range lv.Uses[i] {
			g.AddNode(v)
		}
		for _, v := range lv.Defs[i] {
			g.AddNode(v)
		}

		/* sources of moves do not interfere with the destination */
		if m, ok := moves(i); ok {
			mv = append(mv, m)
			for _, v := range lv.Uses[i] {
				delete(live, v)
			}
		}

		/* defined names are live after the instruction */
		for _, v := range lv.Defs[i] {
			live[v] = struct{}{}
		}

		/* add the interference edges */
		for _, d := range lv.Defs[i] {
			for k := range live {
				g.AddEdge(k, d)
			}
		}
	}

	/* all done */
	atomic.AddUint32(&GraphCount, 1)
	return g, mv
}

// MirMoves reports the temporary-to-temporary moves of a canonical body.
func MirMoves(body []mir.Stmt) func(id int) (Move, bool) {
	return func(id int) (Move, bool) {
		if v, ok := body[id].(*mir.MoveTemp); !ok {
			return Move{}, false
		} else if src, ok := v.Src.(*mir.Temp); !ok {
			return Move{}, false
		} else {
			return Move{Dst: v.Dst.Id, Src: src.Id}, true
		}
	}
}

// FromMir builds the interference graph of the temporaries of a canonical
// function body.
func FromMir(body []mir.Stmt) (*Graph, []Move) {
	return Build(analysis.LiveTemps(body), MirMoves(body), nil)
}

// FromAsm builds the interference graph of the registers of an assembly
// function, the physical registers being pre-colored.
func FromAsm(ins []asm.Instr, hasReturn bool) (*Graph, []Move) {
	return Build(analysis.LiveVariables(ins, hasReturn), func(id int) (Move, bool) {
		if v, ok := ins[id].(*asm.MovToReg); !ok {
			return Move{}, false
		} else if src, ok := v.Src.(asm.Reg); !ok {
			return Move{}, false
		} else {
			return Move{Dst: string(v.Dst), Src: string(src)}, true
		}
	}, asm.PrecoloredNames())
}
