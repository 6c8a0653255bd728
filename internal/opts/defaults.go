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

package opts

import (
	"os"
	"strconv"
)

const (
	_DefaultParallelism    = 1 // compile functions one at a time
	_DefaultOptimizeRounds = 2 // two rounds catch most of the copies left by value numbering
)

var (
	Parallelism     = parseOrDefault("MIDIR_PARALLELISM", _DefaultParallelism, 1)
	OptimizeRounds  = parseOrDefault("MIDIR_OPT_ROUNDS", _DefaultOptimizeRounds, 0)
	DumpIR          = parseBool("MIDIR_DUMP")
	InvariantChecks = parseBool("MIDIR_CHECK")
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("midir: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("midir: value too small for " + key)
	} else {
		return ret
	}
}

func parseBool(key string) bool {
	if env := os.Getenv(key); env == "" {
		return false
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("midir: invalid value for " + key)
	} else {
		return val
	}
}
