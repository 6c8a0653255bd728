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

	"github.com/cloudwego/midir/internal/mir"
	"github.com/stretchr/testify/require"
)

func TestLocalValueNumbering(t *testing.T) {
	sum := mir.Add(t0, t1)
	body := []mir.Stmt{
		mir.Move(t2, sum),        // 0
		mir.Move(t3, t2),         // 1
		mir.Branch(t3, "A", "B"), // 2
		mir.Lbl("A"),             // 3
		mir.Move(t4, sum),        // 4
		mir.Goto("B"),            // 5
		mir.Lbl("B"),             // 6
		mir.Ret(sum),             // 7
	}
	vn := NumberValues(body)

	/* the first statement starts from nothing */
	_, ok := vn.In[0].TempFor(sum)
	require.False(t, ok)

	/* the sum now lives in t2, and t3 shares it's number */
	tv, ok := vn.In[1].TempFor(sum)
	require.True(t, ok)
	require.Equal(t, "t2", tv.Id)
	n2, _ := vn.In[2].NumberOf(t2)
	n3, _ := vn.In[2].NumberOf(t3)
	require.Equal(t, n2, n3)

	/* the table flows into the single-entry branch, where the latest copy holds the sum */
	tv, ok = vn.In[4].TempFor(sum)
	require.True(t, ok)
	require.Equal(t, "t3", tv.Id)

	/* B is a merge point, and starts over */
	require.NotNil(t, vn.In[6])
	_, ok = vn.In[6].TempFor(sum)
	require.False(t, ok)
	require.NotNil(t, vn.In[7])
}

func TestLocalValueNumbering_Invalidation(t *testing.T) {
	load := mir.Load(t0)
	body := []mir.Stmt{
		mir.Move(t1, load),
		mir.Move(t2, mir.Add(t1, mir.One)),
		mir.Store(t0, t2),
		mir.Move(t1, mir.C(9)),
		mir.Ret(nil),
	}
	vn := NumberValues(body)
	_, ok := vn.In[2].TempFor(load)
	require.True(t, ok)
	_, ok = vn.In[3].TempFor(load)
	require.False(t, ok, "memory writes invalidate loads")
	_, ok = vn.In[3].NumberOf(mir.Load(t0))
	require.True(t, ok, "the stored location is numbered again")
	_, ok = vn.In[4].TempFor(mir.Add(t1, mir.One))
	require.False(t, ok, "redefined temporaries invalidate expressions")
}

func TestUsedNames(t *testing.T) {
	p := &mir.Program{
		Entry: "main",
		Functions: []*mir.Function{
			{Name: "main", Body: []mir.Stmt{
				mir.Invoke("a", nil, nil),
				mir.Move(t0, mir.N("str")),
				mir.Ret(nil),
			}},
			{Name: "a", Body: []mir.Stmt{
				mir.Move(t0, mir.N("b")),
				mir.Invoke("a", nil, nil),
				mir.Invoke("_builtin_println", []mir.Expr{t0}, nil),
				mir.Ret(nil),
			}},
			{Name: "b", Body: []mir.Stmt{mir.Ret(mir.Zero)}},
			{Name: "dead", Body: []mir.Stmt{mir.Invoke("b", nil, nil), mir.Invoke("dead2", nil, nil)}},
			{Name: "dead2", Body: []mir.Stmt{mir.Ret(nil)}},
		},
	}
	used := UsedNames(p)
	require.Equal(t, []string{"_builtin_println", "a", "b", "main", "str"}, used.Sorted())
	require.False(t, used.Has("dead"))
	require.False(t, used.Has("dead2"))
}
