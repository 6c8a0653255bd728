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

package midir

import (
	"fmt"

	"github.com/cloudwego/midir/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithParallelism sets the number of functions compiled concurrently.
//
// Functions are lowered, optimized and analyzed independently of each other,
// so this only affects the compilation time, never the output.
//
// The default value of this option is "1".
func WithParallelism(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("midir: invalid parallelism: %d", n))
	} else {
		return func(o *opts.Options) { o.Parallelism = n }
	}
}

// WithOptimizeRounds sets how many times the optimization passes are run over
// every function. Set this option to "0" disables optimization entirely.
//
// The default value of this option is "2".
func WithOptimizeRounds(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("midir: invalid optimize rounds: %d", n))
	} else {
		return func(o *opts.Options) { o.OptimizeRounds = n }
	}
}

// WithDumpIR logs the Mid-IR of every function once it has been scheduled.
func WithDumpIR(v bool) Option {
	return func(o *opts.Options) { o.DumpIR = v }
}

// WithInvariantChecks verifies every compiled function before analyzing it,
// which is mostly useful when working on the compiler itself.
func WithInvariantChecks(v bool) Option {
	return func(o *opts.Options) { o.InvariantChecks = v }
}

// SetParallelism sets the default parallelism for all compilations from now
// on.
//
// This value can also be configured with the `MIDIR_PARALLELISM` environment
// variable.
//
// Returns the old opts.Parallelism value.
func SetParallelism(n int) int {
	n, opts.Parallelism = opts.Parallelism, n
	return n
}

// SetOptimizeRounds sets the default number of optimization rounds for all
// compilations from now on.
//
// This value can also be configured with the `MIDIR_OPT_ROUNDS` environment
// variable.
//
// Returns the old opts.OptimizeRounds value.
func SetOptimizeRounds(n int) int {
	n, opts.OptimizeRounds = opts.OptimizeRounds, n
	return n
}
