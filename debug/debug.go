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
	"sync/atomic"

	"github.com/cloudwego/midir/internal/dataflow"
	"github.com/cloudwego/midir/internal/lower"
	"github.com/cloudwego/midir/internal/optimize"
	"github.com/cloudwego/midir/internal/regalloc"
	"github.com/cloudwego/midir/internal/trace"
)

// A Stats records statistics about the compiler.
type Stats struct {
	Lower    LowerStats
	Dataflow DataflowStats
	Schedule ScheduleStats
}

// A LowerStats records statistics about the functions being compiled.
type LowerStats struct {
	Funcs   int
	Lambdas int
	Dropped int
}

// A DataflowStats records statistics about the dataflow solver.
type DataflowStats struct {
	Solves int
	Steps  int
	Graphs int
}

// A ScheduleStats records statistics about the trace scheduler.
type ScheduleStats struct {
	Traces int
}

// GetStats returns statistics of the compiler.
func GetStats() Stats {
	return Stats{
		Lower: LowerStats{
			Funcs:   int(atomic.LoadUint32(&lower.FuncCount)),
			Lambdas: int(atomic.LoadUint32(&lower.LambdaCount)),
			Dropped: int(atomic.LoadUint32(&optimize.DropCount)),
		},
		Dataflow: DataflowStats{
			Solves: int(atomic.LoadUint32(&dataflow.SolveCount)),
			Steps:  int(atomic.LoadUint32(&dataflow.StepCount)),
			Graphs: int(atomic.LoadUint32(&regalloc.GraphCount)),
		},
		Schedule: ScheduleStats{
			Traces: int(atomic.LoadUint32(&trace.TraceCount)),
		},
	}
}
