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

// Package trace reorders basic blocks into traces, so that most conditional
// jumps fall through to the block that follows them.
package trace

import (
	"fmt"
	"strings"

	"github.com/cloudwego/midir/internal/mir"
)

// Block is a basic block. The first instruction is always the label of the
// block, and control only leaves the block after the last instruction.
type Block struct {
	Label   string
	Ins     []mir.Stmt
	Targets []string
}

func (self *Block) Last() mir.Stmt {
	return self.Ins[len(self.Ins)-1]
}

// Weight is the number of instructions in the block.
func (self *Block) Weight() int {
	return len(self.Ins)
}

func (self *Block) String() string {
	return fmt.Sprintf("bb %s -> [%s]", self.Label, strings.Join(self.Targets, ", "))
}

// Segment splits canonical statements into basic blocks and links them
// together. Blocks not starting with a label are given a fresh one.
func Segment(body []mir.Stmt, alloc *mir.Allocator) []*Block {
	var buf []mir.Stmt
	var ret []*Block

	/* closes the current block */
	flush := func() {
		if len(buf) != 0 {
			ret = append(ret, newBlock(buf, alloc))
			buf = nil
		}
	}

	/* labels start a block, jumps and returns end a block */
	for _, s := range body {
		switch s.(type) {
		case *mir.Label:
			flush()
			buf = append(buf, s)
		case *mir.Jump, *mir.CJump, *mir.Return:
			buf = append(buf, s)
			flush()
		default:
			buf = append(buf, s)
		}
	}

	/* the last block */
	flush()
	link(ret)
	return ret
}

func newBlock(ins []mir.Stmt, alloc *mir.Allocator) *Block {
	if lb, ok := ins[0].(*mir.Label); ok {
		return &Block{Label: lb.Name, Ins: ins}
	}

	/* synthesize a label */
	lb := alloc.Label("BLOCK")
	return &Block{Label: lb, Ins: append([]mir.Stmt{mir.Lbl(lb)}, ins...)}
}

// link computes the targets of every block. The false branch of conditional
// jumps comes first, which makes it preferred when building traces.
func link(bbs []*Block) {
	for i, bb := range bbs {
		switch v := bb.Last().(type) {
		case *mir.Jump:
			bb.Targets = []string{v.Label}
		case *mir.CJump:
			bb.Targets = []string{v.False, v.True}
		case *mir.Return:
			bb.Targets = nil
		default:
			if i != len(bbs)-1 {
				bb.Targets = []string{bbs[i+1].Label}
			}
		}
	}
}

// Flatten concatenates the instructions of all the blocks.
func Flatten(bbs []*Block) []mir.Stmt {
	var ret []mir.Stmt
	for _, bb := range bbs {
		ret = append(ret, bb.Ins...)
	}
	return ret
}
