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

// CopyProp replaces temporaries with the ultimate source of the copies
// available at each statement.
type CopyProp struct{}

func (CopyProp) Apply(fn *mir.Function) {
	rs := analysis.AvailableCopies(fn.Body)
	for i, s := range fn.Body {
		if cp := rs.In[i]; len(cp) != 0 {
			fn.Body[i] = reads(s, func(e mir.Expr) mir.Expr {
				return mir.Rewrite(e, func(x mir.Expr) mir.Expr {
					if tv, ok := x.(*mir.Temp); !ok {
						return nil
					} else if src := cp.Resolve(tv.Id); src == tv.Id {
						return nil
					} else {
						return mir.T(src)
					}
				})
			})
		}
	}
}
