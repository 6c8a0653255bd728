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
	"github.com/cloudwego/midir/internal/cfg"
	"github.com/cloudwego/midir/internal/dataflow"
	"github.com/cloudwego/midir/internal/ice"
	"github.com/cloudwego/midir/internal/mir"
)

func stable[E any](name string, g *cfg.Graph[mir.Stmt], op dataflow.Operator[mir.Stmt, E]) error {
	if rs := dataflow.Solve[mir.Stmt, E](g, dataflow.Forward, op); dataflow.Stable(g, rs, op) {
		return nil
	} else {
		return &ice.Error{Pass: name, Node: ice.NoNode, Reason: "result is not a fixpoint"}
	}
}

// Verify checks a canonical body against the invariants the analyses rely
// on: the control flow graph is consistent, every statement is canonical,
// and every forward analysis converges to a fixpoint.
func Verify(body []mir.Stmt, params []*mir.Temp) error {
	g := mir.BuildGraph(body)
	if err := g.Verify(); err != nil {
		return err
	}

	/* only canonical statements may reach the analyses */
	for i, s := range body {
		if !isCanonical(s) {
			return &ice.Error{Pass: "analysis", Node: i, Instr: s.String(), Reason: "statement is not canonical"}
		}
	}

	/* each analysis must reach it's fixpoint */
	if err := stable[Copies]("copies", g, _CopyOp{}); err != nil {
		return err
	} else if err = stable[Exprs]("exprs", g, _ExprOp{}); err != nil {
		return err
	} else {
		return stable[Constants]("constprop", g, _ConstOp{params})
	}
}

func isCanonical(s mir.Stmt) bool {
	switch v := s.(type) {
	case *mir.Label, *mir.Jump:
		return true
	case *mir.CJump:
		return mir.IsCanonical(v.Cond)
	case *mir.CJumpFallThrough:
		return mir.IsCanonical(v.Cond)
	case *mir.MoveTemp:
		return mir.IsCanonical(v.Src)
	case *mir.MoveMem:
		return mir.IsCanonical(v.Dst) && mir.IsCanonical(v.Src)
	case *mir.CallFunction:
		return mir.IsCanonical(v.Fn) && mir.AllCanonical(v.Args)
	case *mir.Return:
		return v.Value == nil || mir.IsCanonical(v.Value)
	default:
		return false
	}
}
