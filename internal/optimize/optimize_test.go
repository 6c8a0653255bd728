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

package optimize

import (
	"testing"

	"github.com/cloudwego/midir/internal/mir"
	"github.com/stretchr/testify/require"
)

func newFunc(body ...mir.Stmt) *mir.Function {
	return &mir.Function{Name: "test", Body: body, HasReturn: true}
}

func TestCopyProp(t *testing.T) {
	fn := newFunc(
		mir.Move(mir.T("t1"), mir.T("t0")),
		mir.Move(mir.T("t2"), mir.T("t1")),
		mir.Ret(mir.T("t2")),
	)
	CopyProp{}.Apply(fn)
	require.Equal(t, "  t1 = t0\n  t2 = t0\n  return t0\n", mir.Dump(fn.Body))
}

func TestCopyProp_Killed(t *testing.T) {
	fn := newFunc(
		mir.Move(mir.T("t1"), mir.T("t0")),
		mir.Move(mir.T("t0"), mir.One),
		mir.Ret(mir.Add(mir.T("t1"), mir.T("t0"))),
	)
	CopyProp{}.Apply(fn)
	require.Equal(t, "  t1 = t0\n  t0 = 1\n  return (t1 + t0)\n", mir.Dump(fn.Body))
}

func TestConstFold(t *testing.T) {
	fn := newFunc(
		mir.Move(mir.T("t1"), mir.C(3)),
		mir.Move(mir.T("t2"), mir.C(4)),
		mir.Move(mir.T("t3"), mir.Add(mir.T("t1"), mir.T("t2"))),
		mir.Move(mir.T("t4"), mir.Bin(mir.OpDiv, mir.T("t1"), mir.Zero)),
		mir.Branch(mir.Bin(mir.OpLt, mir.T("t3"), mir.C(10)), "A", "B"),
		mir.Lbl("A"),
		mir.Ret(mir.T("t3")),
		mir.Lbl("B"),
		mir.Ret(mir.T("t4")),
	)
	ConstFold{}.Apply(fn)
	require.Equal(t, ""+
		"  t1 = 3\n"+
		"  t2 = 4\n"+
		"  t3 = 7\n"+
		"  t4 = (3 / 0)\n"+
		"  goto A\n"+
		"A:\n"+
		"  return 7\n"+
		"B:\n"+
		"  return t4\n",
		mir.Dump(fn.Body),
	)
}

func TestConstFold_ParameterRedefinedOnOnePath(t *testing.T) {
	fn := newFunc(
		mir.Branch(mir.T("c"), "A", "B"),
		mir.Lbl("A"),
		mir.Move(mir.T("p"), mir.C(5)),
		mir.Goto("C"),
		mir.Lbl("B"),
		mir.Lbl("C"),
		mir.Ret(mir.T("p")),
	)
	fn.Args = []*mir.Temp{mir.T("p"), mir.T("c")}
	ConstFold{}.Apply(fn)
	require.Equal(t, ""+
		"  if c then goto A else goto B\n"+
		"A:\n"+
		"  p = 5\n"+
		"  goto C\n"+
		"B:\n"+
		"C:\n"+
		"  return p\n",
		mir.Dump(fn.Body),
	)
}

func TestConstFold_FallThrough(t *testing.T) {
	fn := newFunc(
		mir.Move(mir.T("c"), mir.Zero),
		&mir.CJumpFallThrough{Cond: mir.T("c"), Label: "A"},
		mir.Ret(mir.Zero),
		mir.Lbl("A"),
		mir.Ret(mir.One),
	)
	ConstFold{}.Apply(fn)
	require.Equal(t, "  c = 0\n  return 0\nA:\n  return 1\n", mir.Dump(fn.Body))
}

func TestValueNumbering(t *testing.T) {
	fn := newFunc(
		mir.Move(mir.T("x"), mir.Add(mir.T("a"), mir.T("b"))),
		mir.Move(mir.T("y"), mir.Add(mir.T("a"), mir.T("b"))),
		mir.Move(mir.T("z"), mir.Load(mir.Add(mir.T("a"), mir.T("b")))),
		mir.Move(mir.T("x"), mir.Add(mir.T("a"), mir.T("b"))),
		mir.Ret(mir.Add(mir.T("y"), mir.T("z"))),
	)
	ValueNumbering{}.Apply(fn)
	require.Equal(t, "  x = (a + b)\n  y = x\n  z = MEM[y]\n  x = y\n  return (y + z)\n", mir.Dump(fn.Body))
}

func TestDeadTemps(t *testing.T) {
	fn := newFunc(
		mir.Move(mir.T("x"), mir.One),
		mir.Invoke("f", nil, mir.T("r")),
		mir.Move(mir.T("y"), mir.C(2)),
		mir.Ret(mir.T("y")),
	)
	DeadTemps{}.Apply(fn)
	require.Equal(t, "  @f()\n  y = 2\n  return y\n", mir.Dump(fn.Body))
}

func TestOptimize(t *testing.T) {
	fn := newFunc(
		mir.Move(mir.T("a"), mir.T("p")),
		mir.Move(mir.T("x"), mir.Load(mir.Add(mir.T("a"), mir.Eight))),
		mir.Move(mir.T("y"), mir.Load(mir.Add(mir.T("p"), mir.Eight))),
		mir.Move(mir.T("k"), mir.C(2)),
		mir.Ret(mir.Bin(mir.OpMul, mir.Add(mir.T("x"), mir.T("y")), mir.T("k"))),
	)
	Optimize(fn, 2)
	require.Equal(t, "  x = MEM[(p + 8)]\n  return ((x + x) * 2)\n", mir.Dump(fn.Body))

	/* already optimized */
	body := mir.Dump(fn.Body)
	Optimize(fn, 1)
	require.Equal(t, body, mir.Dump(fn.Body))
}

func TestDropUnused(t *testing.T) {
	p := &mir.Program{
		Entry: "main",
		Functions: []*mir.Function{
			{Name: "main", Body: []mir.Stmt{mir.Invoke("a", nil, nil), mir.Ret(nil)}},
			{Name: "a", Body: []mir.Stmt{mir.Ret(mir.N("c"))}},
			{Name: "b", Body: []mir.Stmt{mir.Invoke("a", nil, nil), mir.Ret(nil)}},
			{Name: "c", Body: []mir.Stmt{mir.Ret(nil)}},
		},
	}
	require.Equal(t, []string{"b"}, DropUnused(p))
	require.Len(t, p.Functions, 3)
	require.Equal(t, "c", p.Functions[2].Name)
}
