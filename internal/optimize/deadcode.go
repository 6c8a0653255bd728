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
	"sync/atomic"

	"github.com/cloudwego/midir/internal/analysis"
	"github.com/cloudwego/midir/internal/mir"
)

var (
	DropCount uint32
)

// DeadTemps removes assignments to temporaries that are never read. Calls are
// kept for their side effects, only without the result.
type DeadTemps struct{}

func (DeadTemps) Apply(fn *mir.Function) {
	lv := analysis.LiveTemps(fn.Body)
	ret := make([]mir.Stmt, 0, len(fn.Body))

	/* check every definition */
	for i, s := range fn.Body {
		switch v := s.(type) {
		case *mir.MoveTemp:
			if lv.LiveOut[i].Has(v.Dst.Id) {
				ret = append(ret, v)
			}
		case *mir.CallFunction:
			if v.Ret == nil || lv.LiveOut[i].Has(v.Ret.Id) {
				ret = append(ret, v)
			} else {
				ret = append(ret, &mir.CallFunction{Fn: v.Fn, Args: v.Args})
			}
		default:
			ret = append(ret, s)
		}
	}

	/* update the body */
	fn.Body = ret
}

// DropUnused removes the functions not reachable from the entry of the
// program, and returns their names.
func DropUnused(p *mir.Program) []string {
	var drop []string
	used := analysis.UsedNames(p)
	keep := p.Functions[:0]

	/* filter the functions */
	for _, fn := range p.Functions {
		if used.Has(fn.Name) {
			keep = append(keep, fn)
		} else {
			drop = append(drop, fn.Name)
		}
	}

	/* update the program */
	p.Functions = keep
	atomic.AddUint32(&DropCount, uint32(len(drop)))
	return drop
}
