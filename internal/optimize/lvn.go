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
	"github.com/cloudwego/midir/internal/analysis"
	"github.com/cloudwego/midir/internal/mir"
)

// ValueNumbering replaces recomputed expressions with a temporary already
// holding the same value.
type ValueNumbering struct{}

func (ValueNumbering) Apply(fn *mir.Function) {
	vn := analysis.NumberValues(fn.Body)
	for i, s := range fn.Body {
		if info := vn.In[i]; info != nil {
			fn.Body[i] = reads(s, func(e mir.Expr) mir.Expr {
				return reuse(e, info)
			})
		}
	}

	/* drop the self assignments */
	ret := fn.Body[:0]
	for _, s := range fn.Body {
		if v, ok := s.(*mir.MoveTemp); !ok || !mir.SameExpr(v.Dst, v.Src) {
			ret = append(ret, s)
		}
	}

	/* update the body */
	fn.Body = ret
}

// reuse replaces the outermost sub-expressions of e that already live in a
// temporary.
func reuse(e mir.Expr, info *analysis.Numbering) mir.Expr {
	switch v := e.(type) {
	case *mir.Op:
		if tv, ok := info.TempFor(v); ok {
			return tv
		} else {
			return mir.Bin(v.Op, reuse(v.X, info), reuse(v.Y, info))
		}
	case *mir.Mem:
		if tv, ok := info.TempFor(v); ok {
			return tv
		} else {
			return mir.Load(reuse(v.Addr, info))
		}
	default:
		return e
	}
}
