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
	"testing"

	"github.com/cloudwego/midir/internal/asm"
	"github.com/cloudwego/midir/internal/mir"
	"github.com/stretchr/testify/require"
)

func TestLiveTemps_StraightLine(t *testing.T) {
	body := []mir.Stmt{
		mir.Move(t1, mir.One),
		mir.Move(t2, mir.C(2)),
		mir.Move(t3, mir.Add(t1, t2)),
		mir.Ret(t3),
	}
	lv := LiveTemps(body)
	require.True(t, lv.LiveOut[0].Has("t1"))
	require.False(t, lv.LiveOut[0].Has("t2"))
	require.Equal(t, []string{"t1", "t2"}, lv.LiveOut[1].Sorted())
	require.Equal(t, []string{"t3"}, lv.LiveOut[2].Sorted())
	require.Empty(t, lv.LiveOut[3])
	require.Empty(t, lv.LiveIn[0])
}

func TestLiveTemps_Loop(t *testing.T) {
	body := []mir.Stmt{
		mir.Move(t0, mir.Zero), // 0
		mir.Lbl("loop"),        // 1
		&mir.CJumpFallThrough{Cond: mir.Bin(mir.OpGe, t0, t1), Label: "end"}, // 2
		mir.Store(t2, t0),                  // 3
		mir.Move(t0, mir.Add(t0, mir.One)), // 4
		mir.Goto("loop"),                   // 5
		mir.Lbl("end"),                     // 6
		mir.Ret(nil),                       // 7
	}
	lv := LiveTemps(body)
	require.Equal(t, []string{"t1", "t2"}, lv.LiveIn[0].Sorted())
	require.Equal(t, []string{"t0", "t1", "t2"}, lv.LiveOut[4].Sorted())
	require.Equal(t, []string{"t0", "t1", "t2"}, lv.LiveOut[2].Sorted())
	require.Empty(t, lv.LiveOut[6])
}

func TestUsesAndDefs(t *testing.T) {
	call := &mir.CallFunction{Fn: mir.Load(t0), Args: []mir.Expr{t1, mir.N("g")}, Ret: t2}
	require.Equal(t, []string{"t0", "t1"}, UsesOf(call))
	require.Equal(t, []string{"t2"}, DefsOf(call))
	require.Equal(t, []string{"t3", "t4"}, UsesOf(mir.Store(t3, t4)))
	require.Empty(t, DefsOf(mir.Store(t3, t4)))
	require.Empty(t, UsesOf(mir.Ret(nil)))
}

func TestLiveVariables_CallingConvention(t *testing.T) {
	ins := []asm.Instr{
		&asm.MovToReg{Dst: "x", Src: asm.Imm(1)},                        // 0
		&asm.MovToReg{Dst: asm.Arch(asm.ArgRegs[0]), Src: asm.Reg("x")}, // 1
		&asm.Call{Target: asm.Reg("fp")},                                // 2
		&asm.MovToReg{Dst: "y", Src: asm.RAX},                           // 3
		&asm.MovToReg{Dst: asm.RAX, Src: asm.Reg("y")},                  // 4
		&asm.Label{Name: "epilogue"},                                    // 5
	}
	lv := LiveVariables(ins, true)
	require.Contains(t, lv.Uses[2], "rdi")
	require.Contains(t, lv.Uses[2], "r9")
	require.Contains(t, lv.Uses[2], "fp")
	require.Contains(t, lv.Defs[2], "r11")
	require.NotContains(t, lv.Defs[2], "rbx")
	require.Equal(t, []string{"rax"}, lv.Uses[5])
	require.True(t, lv.LiveOut[4].Has("rax"))
	require.True(t, lv.LiveOut[2].Has("rax"))
	require.False(t, lv.LiveOut[2].Has("rdi"))
	require.True(t, lv.LiveOut[1].Has("rdi"))

	/* no return value, nothing is live at the end */
	lv = LiveVariables(ins, false)
	require.Empty(t, lv.Uses[5])
	require.False(t, lv.LiveOut[4].Has("rax"))
}

func TestLiveVariables_Division(t *testing.T) {
	ins := []asm.Instr{
		&asm.MovToReg{Dst: asm.RAX, Src: asm.Reg("a")},
		&asm.Cqo{},
		&asm.IDiv{Divisor: asm.Mem{M: "b", I: "c", S: 8}},
		&asm.MovToReg{Dst: "q", Src: asm.RAX},
		&asm.Push{Arg: asm.Reg("q")},
		&asm.Pop{Dst: asm.RBP},
		&asm.Ret{},
	}
	lv := LiveVariables(ins, false)
	require.Equal(t, []string{"rax"}, lv.Uses[1])
	require.Equal(t, []string{"rdx"}, lv.Defs[1])
	require.Equal(t, []string{"rax", "rdx", "b", "c"}, lv.Uses[2])
	require.Equal(t, []string{"b", "c", "rax", "rsp"}, lv.LiveOut[0].Sorted())
	require.Equal(t, []string{"rsp", "rbp"}, lv.Defs[5])
	require.Equal(t, []string{"a", "b", "c", "rsp"}, lv.LiveIn[0].Sorted())
}
