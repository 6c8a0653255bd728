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
	"fmt"

	"github.com/cloudwego/midir/internal/dataflow"
	"github.com/cloudwego/midir/internal/mir"
)

// Constant is the lattice value of a temporary. A temporary missing from the
// map has not been assigned yet on any path.
type Constant struct {
	Known bool
	Value int64
}

var Unknown = Constant{}

func Known(v int64) Constant {
	return Constant{Known: true, Value: v}
}

func (self Constant) String() string {
	if self.Known {
		return fmt.Sprintf("Known(%d)", self.Value)
	} else {
		return "Unknown"
	}
}

// Meet merges two lattice values.
func (self Constant) Meet(other Constant) Constant {
	if self.Known && other.Known && self.Value == other.Value {
		return self
	} else {
		return Unknown
	}
}

type Constants map[string]Constant

type _ConstOp struct {
	params []*mir.Temp
}

func (_ConstOp) Initial() Constants {
	return Constants{}
}

// Boundary defines every parameter on entry, with a value nobody knows.
func (self _ConstOp) Boundary() Constants {
	ret := make(Constants, len(self.params))
	for _, v := range self.params {
		ret[v.Id] = Unknown
	}
	return ret
}

func (_ConstOp) Join(edges []Constants, _ int) Constants {
	ret := Constants{}
	for _, e := range edges {
		for k, v := range e {
			if c, ok := ret[k]; ok {
				ret[k] = c.Meet(v)
			} else {
				ret[k] = v
			}
		}
	}
	return ret
}

func (_ConstOp) Transfer(in Constants, ins mir.Stmt, _ int) Constants {
	switch s := ins.(type) {
	case *mir.MoveTemp:
		return in.with(s.Dst.Id, Fold(in, s.Src))
	case *mir.CallFunction:
		if s.Ret == nil {
			return in
		} else {
			return in.with(s.Ret.Id, Unknown)
		}
	default:
		return in
	}
}

func (_ConstOp) Equal(a Constants, b Constants) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func (self Constants) with(name string, v Constant) Constants {
	ret := make(Constants, len(self)+1)
	for k, x := range self {
		ret[k] = x
	}
	ret[name] = v
	return ret
}

// Fold evaluates a canonical expression against the known constants. Names
// and memory reads are never known.
func Fold(in Constants, e mir.Expr) Constant {
	switch v := e.(type) {
	case *mir.Const:
		return Known(v.V)
	case *mir.Temp:
		return in[v.Id]
	case *mir.Op:
		x := Fold(in, v.X)
		y := Fold(in, v.Y)

		/* both sides must be known */
		if !x.Known || !y.Known {
			return Unknown
		}

		/* division by zero has no value */
		if r, ok := v.Op.Eval(x.Value, y.Value); ok {
			return Known(r)
		} else {
			return Unknown
		}
	default:
		return Unknown
	}
}

// ConstantPropagation is the result of the constant propagation analysis.
type ConstantPropagation struct {
	*dataflow.Result[Constants]
}

// ConstantsIn returns the known constants flowing into node id.
func (self ConstantPropagation) ConstantsIn(id int) map[string]int64 {
	ret := make(map[string]int64)
	for k, v := range self.In[id] {
		if v.Known {
			ret[k] = v.Value
		}
	}
	return ret
}

// ConstantsOut returns the known constants leaving node id.
func (self ConstantPropagation) ConstantsOut(id int) map[string]int64 {
	ret := make(map[string]int64)
	for k, v := range self.Out[id] {
		if v.Known {
			ret[k] = v.Value
		}
	}
	return ret
}

// PropagateConstants runs constant propagation over a canonical body taking
// the given parameters.
func PropagateConstants(body []mir.Stmt, params []*mir.Temp) ConstantPropagation {
	return ConstantPropagation{dataflow.Solve[mir.Stmt, Constants](mir.BuildGraph(body), dataflow.Forward, _ConstOp{params})}
}
