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
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cloudwego/midir/internal/asm"
	"github.com/cloudwego/midir/internal/mir"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph([]string{"rax"})
	g.AddEdge("a", "a")
	require.Equal(t, 0, g.Degree("a"))
	require.False(t, g.Contains("a", "a"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.AddEdge("a", "rax")
	require.True(t, g.Contains("a", "b"))
	require.True(t, g.Contains("b", "a"))
	require.True(t, g.Contains("rax", "a"))
	require.Equal(t, 2, g.Degree("a"))
	require.Equal(t, 1, g.Degree("b"))
	require.Equal(t, 0, g.Degree("rax"))
	require.Equal(t, []string{"a", "b", "rax"}, g.Nodes())
	require.Equal(t, []string{"b", "rax"}, g.Adjacent("a"))
	require.Equal(t, 2, g.DecrementDegree("a"))
	require.Equal(t, 1, g.Degree("a"))
	g.Clear()
	require.Empty(t, g.Nodes())
	require.False(t, g.Contains("a", "b"))
	require.Equal(t, 0, g.Degree("b"))
	require.True(t, g.IsPrecolored("rax"))
}

func TestGraph_Idempotence(t *testing.T) {
	f := gofakeit.New(20240101)
	once := NewGraph(asm.PrecoloredNames())
	twice := NewGraph(asm.PrecoloredNames())
	names := []string{"rax", "rdi", "r11"}

	/* random names, plus a few pre-colored ones */
	for i := 0; i < 20; i++ {
		names = append(names, f.Username())
	}

	/* add every edge once to one graph, and twice to the other */
	for i := 0; i < 200; i++ {
		u := names[f.Number(0, len(names)-1)]
		v := names[f.Number(0, len(names)-1)]
		once.AddEdge(u, v)
		twice.AddEdge(u, v)
		twice.AddEdge(v, u)
		twice.AddEdge(u, u)
	}

	/* degrees must be identical */
	for _, v := range names {
		require.Equal(t, once.Degree(v), twice.Degree(v), v)
		require.Equal(t, once.Adjacent(v), twice.Adjacent(v), v)
		if asm.IsPrecolored(v) {
			require.Equal(t, 0, once.Degree(v))
		} else {
			require.Equal(t, len(once.Adjacent(v)), once.Degree(v))
		}
	}
}

func TestFromMir(t *testing.T) {
	g, mv := FromMir([]mir.Stmt{
		mir.Move(mir.T("t1"), mir.One),
		mir.Move(mir.T("t2"), mir.C(2)),
		mir.Move(mir.T("t3"), mir.Add(mir.T("t1"), mir.T("t2"))),
		mir.Ret(mir.T("t3")),
	})
	require.Empty(t, mv)
	require.Equal(t, []string{"t1", "t2", "t3"}, g.Nodes())
	require.True(t, g.Contains("t1", "t2"))
	require.False(t, g.Contains("t1", "t3"))
	require.False(t, g.Contains("t2", "t3"))
	require.Equal(t, 1, g.Degree("t1"))
	require.Equal(t, 0, g.Degree("t3"))
}

func TestFromMir_Move(t *testing.T) {
	g, mv := FromMir([]mir.Stmt{
		mir.Move(mir.T("a"), mir.One),
		mir.Move(mir.T("b"), mir.T("a")),
		mir.Ret(mir.Add(mir.T("a"), mir.T("b"))),
	})
	require.Equal(t, []Move{{Dst: "b", Src: "a"}}, mv)
	require.False(t, g.Contains("a", "b"))
}

func TestFromAsm(t *testing.T) {
	g, mv := FromAsm([]asm.Instr{
		&asm.MovToReg{Dst: "x", Src: asm.Imm(1)},
		&asm.Call{Target: asm.Reg("f")},
		&asm.MovToReg{Dst: "y", Src: asm.RAX},
		&asm.BinOp{Op: asm.AddQ, Dst: asm.Reg("y"), Src: asm.Reg("x")},
		&asm.MovToReg{Dst: asm.RAX, Src: asm.Reg("y")},
		&asm.Ret{},
	}, true)
	require.Equal(t, []Move{{Dst: "y", Src: "rax"}, {Dst: "rax", Src: "y"}}, mv)
	require.Equal(t, []string{"f", "r10", "r11", "r8", "r9", "rax", "rcx", "rdi", "rdx", "rsi", "y"}, g.Adjacent("x"))
	require.Equal(t, 11, g.Degree("x"))
	require.Equal(t, 1, g.Degree("y"))
	require.Equal(t, 1, g.Degree("f"))
	require.Equal(t, 0, g.Degree("rax"))
	require.False(t, g.Contains("y", "rax"))
	require.True(t, g.Contains("rax", "r11"))
}
