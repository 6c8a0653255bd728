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

package debug

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/midir"
	"github.com/cloudwego/midir/internal/hir"
)

func TestGetStats(t *testing.T) {
	p := &hir.Program{
		Entry: "main",
		Functions: []*hir.Function{
			{Name: "main", Body: []hir.Stmt{&hir.Return{}}},
			{Name: "dead", Body: []hir.Stmt{&hir.Return{}}},
		},
	}

	/* compile a tiny program */
	old := GetStats()
	_, err := midir.Compile(context.Background(), p)
	require.NoError(t, err)
	st := GetStats()

	/* every counter only goes up */
	require.Equal(t, old.Lower.Funcs+2, st.Lower.Funcs)
	require.Equal(t, old.Lower.Dropped+1, st.Lower.Dropped)
	require.Greater(t, st.Dataflow.Solves, old.Dataflow.Solves)
	require.Greater(t, st.Dataflow.Steps, old.Dataflow.Steps)
	require.Equal(t, old.Dataflow.Graphs+2, st.Dataflow.Graphs)
	require.Equal(t, old.Schedule.Traces+2, st.Schedule.Traces)
}
