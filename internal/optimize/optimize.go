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

// Package optimize rewrites canonical Mid-IR functions using the results of
// the dataflow analyses.
package optimize

import (
	"github.com/cloudwego/midir/internal/mir"
)

type Pass interface {
	Apply(*mir.Function)
}

type PassDescriptor struct {
	Pass Pass
	Name string
}

var Passes = [...]PassDescriptor{
	{Name: "Copy Propagation", Pass: new(CopyProp)},
	{Name: "Constant Folding", Pass: new(ConstFold)},
	{Name: "Value Numbering", Pass: new(ValueNumbering)},
	{Name: "Copy Propagation", Pass: new(CopyProp)},
	{Name: "Dead Temporary Elimination", Pass: new(DeadTemps)},
}

// Optimize runs all the passes over a canonical function for the given
// number of rounds.
func Optimize(fn *mir.Function, rounds int) {
	for i := 0; i < rounds; i++ {
		for _, p := range Passes {
			p.Pass.Apply(fn)
		}
	}
}

// reads rebuilds s with every expression it reads mapped through fn.
func reads(s mir.Stmt, fn func(mir.Expr) mir.Expr) mir.Stmt {
	switch v := s.(type) {
	case *mir.MoveTemp:
		return mir.Move(v.Dst, fn(v.Src))
	case *mir.MoveMem:
		return &mir.MoveMem{Dst: mir.Load(fn(v.Dst.Addr)), Src: fn(v.Src)}
	case *mir.CallFunction:
		args := make([]mir.Expr, 0, len(v.Args))
		for _, x := range v.Args {
			args = append(args, fn(x))
		}
		return &mir.CallFunction{Fn: fn(v.Fn), Args: args, Ret: v.Ret}
	case *mir.CJump:
		return mir.Branch(fn(v.Cond), v.True, v.False)
	case *mir.CJumpFallThrough:
		return &mir.CJumpFallThrough{Cond: fn(v.Cond), Label: v.Label}
	case *mir.Return:
		if v.Value == nil {
			return v
		} else {
			return mir.Ret(fn(v.Value))
		}
	default:
		return s
	}
}
