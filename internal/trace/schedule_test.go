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
	"fmt"
	"sort"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cloudwego/midir/internal/ice"
	"github.com/cloudwego/midir/internal/mir"
	"github.com/stretchr/testify/require"
)

func labelsOf(bbs []*Block) []string {
	ret := make([]string, 0, len(bbs))
	for _, bb := range bbs {
		ret = append(ret, bb.Label)
	}
	return ret
}

// successors computes where control may go after each block, taking the
// block order into account for fall-through.
func successors(bbs []*Block) map[string][]string {
	ret := make(map[string][]string, len(bbs))
	for i, bb := range bbs {
		var next []string
		var succ []string

		/* label of the next block */
		if i < len(bbs)-1 {
			next = []string{bbs[i+1].Label}
		}

		/* decode the terminator */
		switch v := bb.Last().(type) {
		case *mir.Return:
			break
		case *mir.Jump:
			succ = []string{v.Label}
			if p, ok := bb.Ins[len(bb.Ins)-2].(*mir.CJumpFallThrough); ok {
				succ = append(succ, p.Label)
			}
		case *mir.CJumpFallThrough:
			succ = append([]string{v.Label}, next...)
		case *mir.CJump:
			succ = []string{v.True, v.False}
		default:
			succ = next
		}

		/* use sorted lists for comparison */
		sort.Strings(succ)
		ret[bb.Label] = dedup(succ)
	}
	return ret
}

func dedup(v []string) []string {
	var ret []string
	for i, s := range v {
		if i == 0 || s != v[i-1] {
			ret = append(ret, s)
		}
	}
	return ret
}

// requireFallThroughLaw checks that every block either ends with an explicit
// transfer, or falls through to the block following it.
func requireFallThroughLaw(t *testing.T, orig []*Block, fixed []*Block) {
	require.Equal(t, orig[0].Label, fixed[0].Label)
	require.ElementsMatch(t, labelsOf(orig), labelsOf(fixed))
	require.Equal(t, successors(orig), successors(fixed))

	/* conditional jumps are all in fall-through form, with a block to fall to */
	for i, bb := range fixed {
		for _, s := range bb.Ins {
			_, ok := s.(*mir.CJump)
			require.False(t, ok, s.String())
		}
		if _, ok := bb.Last().(*mir.CJumpFallThrough); ok {
			require.Less(t, i, len(fixed)-1, bb.String())
		}
	}
}

func TestSegment(t *testing.T) {
	bbs := Segment([]mir.Stmt{
		mir.Move(mir.T("a"), mir.One),
		mir.Lbl("L1"),
		mir.Branch(mir.T("a"), "L2", "L3"),
		mir.Lbl("L2"),
		mir.Ret(nil),
		mir.Lbl("L3"),
		mir.Move(mir.T("a"), mir.Zero),
	}, mir.NewAllocator("test"))
	require.Equal(t, []string{"l0_BLOCK", "L1", "L2", "L3"}, labelsOf(bbs))
	require.Equal(t, "l0_BLOCK:", bbs[0].Ins[0].String())
	require.Equal(t, []string{"L1"}, bbs[0].Targets)
	require.Equal(t, []string{"L3", "L2"}, bbs[1].Targets)
	require.Empty(t, bbs[2].Targets)
	require.Empty(t, bbs[3].Targets)
	require.Equal(t, 2, bbs[0].Weight())
}

func TestSchedule_FalseBranchFirst(t *testing.T) {
	bbs := Segment([]mir.Stmt{
		mir.Lbl("E"),
		mir.Branch(mir.T("c"), "T", "F"),
		mir.Lbl("T"),
		mir.Ret(mir.One),
		mir.Lbl("F"),
		mir.Ret(mir.Zero),
	}, mir.NewAllocator("test"))
	fixed := Fixup(Schedule(bbs))
	require.Equal(t, []string{"E", "F", "T"}, labelsOf(fixed))
	require.Equal(t, "if c then goto T", fixed[0].Last().String())
	requireFallThroughLaw(t, bbs, fixed)
}

func TestSchedule_InvertCondition(t *testing.T) {
	bbs := Segment([]mir.Stmt{
		mir.Lbl("E"),
		mir.Branch(mir.Bin(mir.OpLt, mir.T("a"), mir.T("b")), "T", "F"),
		mir.Lbl("T"),
		mir.Move(mir.T("a"), mir.One),
		mir.Move(mir.T("b"), mir.One),
		mir.Ret(mir.T("a")),
		mir.Lbl("F"),
		mir.Ret(mir.Zero),
	}, mir.NewAllocator("test"))
	fixed := Fixup(Schedule(bbs))
	require.Equal(t, []string{"E", "T", "F"}, labelsOf(fixed))
	require.Equal(t, "if (a >= b) then goto F", fixed[0].Last().String())
	requireFallThroughLaw(t, bbs, fixed)
}

func TestSchedule_RedundantJump(t *testing.T) {
	body := []mir.Stmt{
		mir.Lbl("E"),
		mir.Branch(mir.T("c"), "T", "F"),
		mir.Lbl("T"),
		mir.Ret(nil),
		mir.Lbl("F"),
		mir.Move(mir.T("x"), mir.One),
		mir.Goto("T"),
	}
	bbs := Segment(body, mir.NewAllocator("test"))
	fixed := Fixup(Schedule(bbs))
	require.Equal(t, []string{"E", "F", "T"}, labelsOf(fixed))
	require.Equal(t, "x = 1", fixed[1].Last().String())
	requireFallThroughLaw(t, bbs, fixed)
	require.Equal(t, ""+
		"E:\n"+
		"  if c then goto T\n"+
		"F:\n"+
		"  x = 1\n"+
		"T:\n"+
		"  return\n",
		mir.Dump(Reorder(body, mir.NewAllocator("test"))),
	)
}

func TestSchedule_NoAdjacentTarget(t *testing.T) {
	bbs := Segment([]mir.Stmt{
		mir.Lbl("E"),
		mir.Branch(mir.T("c"), "A", "B"),
		mir.Lbl("A"),
		mir.Ret(nil),
		mir.Lbl("B"),
		mir.Ret(nil),
		mir.Lbl("Z"),
		mir.Branch(mir.T("d"), "A", "B"),
	}, mir.NewAllocator("test"))
	fixed := Fixup(Schedule(bbs))
	require.Equal(t, []string{"E", "B", "A", "Z"}, labelsOf(fixed))
	require.Equal(t, "  if d then goto A\n  goto B\n", mir.Dump(fixed[3].Ins[1:]))
	requireFallThroughLaw(t, bbs, fixed)
}

func TestSchedule_Loop(t *testing.T) {
	bbs := Segment([]mir.Stmt{
		mir.Lbl("E"),
		mir.Move(mir.T("i"), mir.Zero),
		mir.Lbl("H"),
		mir.Branch(mir.Bin(mir.OpLt, mir.T("i"), mir.C(10)), "B", "X"),
		mir.Lbl("X"),
		mir.Ret(mir.T("i")),
		mir.Lbl("B"),
		mir.Move(mir.T("i"), mir.Add(mir.T("i"), mir.One)),
		mir.Move(mir.T("j"), mir.T("i")),
		mir.Goto("H"),
	}, mir.NewAllocator("test"))
	fixed := Fixup(Schedule(bbs))
	require.Equal(t, []string{"E", "H", "B", "X"}, labelsOf(fixed))
	require.Equal(t, "if (i >= 10) then goto X", fixed[1].Last().String())
	requireFallThroughLaw(t, bbs, fixed)
}

func TestSchedule_LostFallThrough(t *testing.T) {
	body := []mir.Stmt{
		mir.Lbl("E"),
		mir.Goto("Q"),
		mir.Lbl("P"),
		mir.Move(mir.T("x"), mir.One),
		mir.Lbl("Q"),
		mir.Ret(nil),
	}
	bbs := Segment(body, mir.NewAllocator("test"))
	requireFallThroughLaw(t, bbs, Fixup(Schedule(bbs)))
	require.Equal(t, ""+
		"E:\n"+
		"Q:\n"+
		"  return\n"+
		"P:\n"+
		"  x = 1\n"+
		"  goto Q\n",
		mir.Dump(Reorder(body, mir.NewAllocator("test"))),
	)
}

func TestSchedule_FallOffTheEnd(t *testing.T) {
	bbs := Segment([]mir.Stmt{
		mir.Lbl("E"),
		mir.Branch(mir.T("c"), "A", "B"),
		mir.Lbl("A"),
		mir.Ret(nil),
		mir.Lbl("B"),
		mir.Move(mir.T("x"), mir.One),
	}, mir.NewAllocator("test"))
	fixed := Fixup(Schedule(bbs))
	require.Equal(t, []string{"E", "B", "A"}, labelsOf(fixed))
	require.Equal(t, "return", fixed[1].Last().String())
	require.Equal(t, successors(bbs), successors(fixed))
}

func TestFixup_UnexpectedTerminator(t *testing.T) {
	defer func() {
		e, ok := recover().(*ice.Error)
		require.True(t, ok)
		require.Equal(t, "trace", e.Pass)
		require.Equal(t, 0, e.Node)
	}()
	Fixup([]*Block{{Label: "L", Ins: []mir.Stmt{mir.Lbl("L"), &mir.Ignore{E: mir.One}}}})
	t.Fatal("should not reach here")
}

func randomBody(f *gofakeit.Faker) []mir.Stmt {
	var ret []mir.Stmt
	nb := f.Number(1, 12)
	lb := func() string { return fmt.Sprintf("L%d", f.Number(0, nb-1)) }

	/* blocks with random terminators */
	for i := 0; i < nb; i++ {
		ret = append(ret, mir.Lbl(fmt.Sprintf("L%d", i)))
		for n := f.Number(0, 3); n > 0; n-- {
			ret = append(ret, mir.Move(mir.T("x"), mir.C(int64(n))))
		}
		switch f.Number(0, 3) {
		case 0:
			ret = append(ret, mir.Ret(nil))
		case 1:
			ret = append(ret, mir.Goto(lb()))
		case 2:
			ret = append(ret, mir.Branch(mir.T("x"), lb(), lb()))
		}
	}
	return ret
}

func TestSchedule_Random(t *testing.T) {
	f := gofakeit.New(20240101)
	for i := 0; i < 200; i++ {
		bbs := Segment(randomBody(f), mir.NewAllocator("test"))
		requireFallThroughLaw(t, bbs, Fixup(Schedule(bbs)))
	}
}
