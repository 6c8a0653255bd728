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

// ConstFold replaces temporaries known to be constant with their values, folds
// constant operations, and resolves constant conditional jumps.
type ConstFold struct{}

func (ConstFold) Apply(fn *mir.Function) {
	rs := analysis.PropagateConstants(fn.Body, fn.Args)
	ret := make([]mir.Stmt, 0, len(fn.Body))

	/* fold every statement */
	for i, s := range fn.Body {
		consts := rs.ConstantsIn(i)
		s = reads(s, func(e mir.Expr) mir.Expr { return fold(e, consts) })

		/* resolve constant branches */
		switch v := s.(type) {
		case *mir.CJump:
			if c, ok := v.Cond.(*mir.Const); !ok {
				ret = append(ret, v)
			} else if c.V != 0 {
				ret = append(ret, mir.Goto(v.True))
			} else {
				ret = append(ret, mir.Goto(v.False))
			}
		case *mir.CJumpFallThrough:
			if c, ok := v.Cond.(*mir.Const); !ok {
				ret = append(ret, v)
			} else if c.V != 0 {
				ret = append(ret, mir.Goto(v.Label))
			}
		default:
			ret = append(ret, s)
		}
	}

	/* update the body */
	fn.Body = ret
}

func fold(e mir.Expr, consts map[string]int64) mir.Expr {
	return mir.Rewrite(e, func(x mir.Expr) mir.Expr {
		switch v := x.(type) {
		case *mir.Temp:
			if c, ok := consts[v.Id]; ok {
				return mir.C(c)
			}
		case *mir.Op:
			if x, ok := v.X.(*mir.Const); ok {
				if y, ok := v.Y.(*mir.Const); ok {
					if r, ok := v.Op.Eval(x.V, y.V); ok {
						return mir.C(r)
					}
				}
			}
		}
		return nil
	})
}
