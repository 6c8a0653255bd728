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

package trace

import (
	"sync/atomic"

	"github.com/cloudwego/midir/internal/ice"
	"github.com/cloudwego/midir/internal/mir"
	"github.com/oleiade/lane"
)

var (
	TraceCount uint32
)

type _Trace struct {
	bb     *Block
	next   *_Trace
	weight int
}

func (self *_Trace) push(bb *Block) *_Trace {
	if self == nil {
		return &_Trace{bb: bb, weight: bb.Weight()}
	} else {
		return &_Trace{bb: bb, next: self, weight: self.weight + bb.Weight()}
	}
}

type _Scheduler struct {
	bbs     []*Block
	labels  map[string]*Block
	placed  map[string]bool
	visited map[string]bool
	memo    map[string]*_Trace
}

// Schedule orders the blocks into traces. The first block stays first, and
// every trace greedily follows the heaviest path of blocks not yet placed.
func Schedule(bbs []*Block) []*Block {
	q := lane.NewQueue()
	ret := make([]*Block, 0, len(bbs))

	/* initialize the scheduler */
	s := &_Scheduler{
		bbs:    bbs,
		labels: make(map[string]*Block, len(bbs)),
		placed: make(map[string]bool, len(bbs)),
	}

	/* index the blocks, traces are started in original order */
	for _, bb := range bbs {
		q.Enqueue(bb)
		s.labels[bb.Label] = bb
	}

	/* build traces until all blocks are placed */
	for !q.Empty() {
		if bb := q.Dequeue().(*Block); !s.placed[bb.Label] {
			s.memo = make(map[string]*_Trace)
			s.visited = make(map[string]bool)
			atomic.AddUint32(&TraceCount, 1)

			/* place the blocks of the trace */
			for tr := s.build(bb.Label); tr != nil; tr = tr.next {
				ret = append(ret, tr.bb)
				s.placed[tr.bb.Label] = true
			}
		}
	}

	/* all done */
	return ret
}

// build returns the heaviest trace starting at the block, or nil if the block
// cannot be part of the trace.
func (self *_Scheduler) build(label string) *_Trace {
	var ok bool
	var bb *Block
	var best *_Trace

	/* placed in other traces, or already in the current path */
	if self.placed[label] || self.visited[label] {
		return nil
	}

	/* check for memoized results */
	if tr, ok := self.memo[label]; ok {
		return tr
	}

	/* find the block */
	if bb, ok = self.labels[label]; !ok {
		ice.Panic("trace", ice.NoNode, nil, "jump to unknown block %s", label)
	}

	/* the first heaviest target wins */
	self.visited[label] = true
	for _, v := range bb.Targets {
		if tr := self.build(v); tr != nil && (best == nil || tr.weight > best.weight) {
			best = tr
		}
	}

	/* unwind the visited set */
	delete(self.visited, label)
	ret := best.push(bb)
	self.memo[label] = ret
	return ret
}

// Fixup rewrites the terminators of the ordered blocks. Conditional jumps are
// turned into fall-through form, jumps to the next block are dropped, and
// jumps are added where a block no longer falls through to it's successor.
// Falling off the end of the function is turned into a return if the block is
// no longer the last one.
func Fixup(bbs []*Block) []*Block {
	ret := make([]*Block, 0, len(bbs))
	for i, bb := range bbs {
		next := ""
		body := bb.Ins[:len(bb.Ins)-1]

		/* label of the next block */
		if i < len(bbs)-1 {
			next = bbs[i+1].Label
		}

		/* check the terminator */
		switch v := bb.Last().(type) {
		case *mir.Return:
			ret = append(ret, bb)
		case *mir.Jump:
			if v.Label != next {
				ret = append(ret, bb)
			} else {
				ret = append(ret, bb.with(clone(body)))
			}
		case *mir.CJump:
			switch next {
			case v.True:
				ret = append(ret, bb.with(clone(body, &mir.CJumpFallThrough{Cond: mir.InvertCondition(v.Cond), Label: v.False})))
			case v.False:
				ret = append(ret, bb.with(clone(body, &mir.CJumpFallThrough{Cond: v.Cond, Label: v.True})))
			default:
				ret = append(ret, bb.with(clone(body, &mir.CJumpFallThrough{Cond: v.Cond, Label: v.True}, mir.Goto(v.False))))
			}
		case *mir.Label, *mir.MoveTemp, *mir.MoveMem, *mir.CallFunction:
			if len(bb.Targets) == 0 && next != "" {
				ret = append(ret, bb.with(clone(bb.Ins, mir.Ret(nil))))
			} else if len(bb.Targets) != 0 && bb.Targets[0] != next {
				ret = append(ret, bb.with(clone(bb.Ins, mir.Goto(bb.Targets[0]))))
			} else {
				ret = append(ret, bb)
			}
		default:
			ice.Panic("trace", i, v, "unexpected block terminator")
		}
	}
	return ret
}

func (self *Block) with(ins []mir.Stmt) *Block {
	return &Block{Label: self.Label, Ins: ins, Targets: self.Targets}
}

func clone(ins []mir.Stmt, tail ...mir.Stmt) []mir.Stmt {
	ret := make([]mir.Stmt, 0, len(ins)+len(tail))
	ret = append(ret, ins...)
	return append(ret, tail...)
}

// Reorder segments, schedules and fixes up a canonical function body.
func Reorder(body []mir.Stmt, alloc *mir.Allocator) []mir.Stmt {
	return Flatten(Fixup(Schedule(Segment(body, alloc))))
}
