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

// Package midir compiles a type-checked program into scheduled, canonical
// Mid-IR, together with the per-function facts a back end needs for
// instruction selection and register allocation.
package midir

import (
	"context"
	"sync"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/davecgh/go-spew/spew"
	"github.com/nikandfor/errors"
	"github.com/nikandfor/tlog"

	"github.com/cloudwego/midir/internal/analysis"
	"github.com/cloudwego/midir/internal/dataflow"
	"github.com/cloudwego/midir/internal/hir"
	"github.com/cloudwego/midir/internal/lower"
	"github.com/cloudwego/midir/internal/mir"
	"github.com/cloudwego/midir/internal/optimize"
	"github.com/cloudwego/midir/internal/opts"
	"github.com/cloudwego/midir/internal/regalloc"
	"github.com/cloudwego/midir/internal/trace"
)

// Unit is a compiled function along with the facts computed over it's final
// body. All the per-statement slices are indexed by statement position.
type Unit struct {
	Func         *mir.Function
	LiveOut      []analysis.NameSet
	Constants    []map[string]int64
	Exprs        []analysis.Exprs
	Interference *regalloc.Graph
	Moves        []regalloc.Move
}

// Result is the outcome of compiling a whole program.
type Result struct {
	Program *mir.Program
	Units   map[string]*Unit
	Dropped []string
}

// Unit returns the compiled unit of the named function, or nil if there is no
// such function or it has been dropped.
func (self *Result) Unit(name string) *Unit {
	return self.Units[name]
}

// Dump formats the whole result for debugging.
func (self *Result) Dump() string {
	sc := spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	return sc.Sdump(self)
}

type _Lowered struct {
	err     error
	ice     interface{}
	units   []*Unit
	globals []mir.Global
}

// Compile lowers, canonicalizes, optimizes and schedules every function of p,
// then analyzes the scheduled code.
//
// The input must have passed type checking. Malformed programs are reported
// as a ProgramError, while any violated internal invariant panics.
func Compile(ctx context.Context, p *hir.Program, options ...Option) (res *Result, err error) {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}

	/* check the program before doing anything */
	if err = validate(p); err != nil {
		return nil, err
	}

	/* trace the whole compilation */
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "midir: compile program", "entry", p.Entry, "functions", len(p.Functions))
	defer tr.Finish("err", &err)

	/* compile every function */
	var ret []_Lowered
	if o.Concurrent() {
		ret = compileParallel(ctx, &o, p.Functions)
	} else {
		ret = compileSerial(ctx, &o, p.Functions)
	}

	/* assemble the program */
	prog := &mir.Program{Entry: p.Entry}
	units := make(map[string]*Unit, len(p.Functions))

	/* functions come in source order, each followed by it's lambdas */
	for i, v := range ret {
		if v.err != nil {
			return nil, errors.Wrap(v.err, "func %v", p.Functions[i].Name)
		}

		/* lifted lambdas must not collide with any other function */
		for _, u := range v.units {
			if _, ok := units[u.Func.Name]; ok {
				return nil, ProgramError{Func: u.Func.Name, Reason: "lifted lambda collides with another function"}
			}
			units[u.Func.Name] = u
			prog.Functions = append(prog.Functions, u.Func)
		}

		/* string literals of the function */
		prog.Globals = append(prog.Globals, v.globals...)
	}

	/* remove the functions never referenced */
	dropped := optimize.DropUnused(prog)
	for _, name := range dropped {
		delete(units, name)
	}

	/* log the dropped functions */
	if len(dropped) != 0 {
		tr.Printw("dropped unused functions", "names", dropped)
	}

	/* all done */
	return &Result{
		Program: prog,
		Units:   units,
		Dropped: dropped,
	}, nil
}

func validate(p *hir.Program) error {
	if p == nil {
		return ProgramError{Reason: "nil program"}
	}

	/* function names must be unique */
	names := make(map[string]bool, len(p.Functions))
	for _, fn := range p.Functions {
		if fn == nil {
			return ProgramError{Reason: "nil function"}
		} else if names[fn.Name] {
			return ProgramError{Func: fn.Name, Reason: "duplicated function"}
		} else {
			names[fn.Name] = true
		}
	}

	/* the entry must be one of them */
	if !names[p.Entry] {
		return ProgramError{Func: p.Entry, Reason: "entry function does not exist"}
	} else {
		return nil
	}
}

func compileSerial(ctx context.Context, o *opts.Options, fns []*hir.Function) []_Lowered {
	ret := make([]_Lowered, len(fns))
	for i, fn := range fns {
		ret[i] = compileFunc(ctx, o, fn)
	}
	return ret
}

func compileParallel(ctx context.Context, o *opts.Options, fns []*hir.Function) []_Lowered {
	var wg sync.WaitGroup
	ret := make([]_Lowered, len(fns))
	pool := gopool.NewPool("midir", int32(o.Parallelism), gopool.NewConfig())

	/* every function has it's own allocator, so they never share any state */
	for i, fn := range fns {
		i, fn := i, fn
		wg.Add(1)

		/* the pool recovers panics by itself, so keep them for later */
		pool.CtxGo(ctx, func() {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					ret[i].ice = v
				}
			}()
			ret[i] = compileFunc(ctx, o, fn)
		})
	}

	/* wait for all the functions */
	wg.Wait()

	/* internal compiler errors are fatal on the calling goroutine as well */
	for _, v := range ret {
		if v.ice != nil {
			panic(v.ice)
		}
	}

	/* all done */
	return ret
}

func compileFunc(ctx context.Context, o *opts.Options, fn *hir.Function) (ret _Lowered) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "func", "name", fn.Name)
	defer tr.Finish("err", &ret.err)

	/* lower the function, lifting all the lambdas */
	alloc := mir.NewAllocator(fn.Name)
	main, lambdas, globals := lower.FirstPass(fn, alloc)

	/* lambdas are compiled right after the function they come from */
	ret.globals = globals
	funcs := append([]*mir.Function{main}, lambdas...)

	/* canonicalize, optimize and schedule */
	for _, f := range funcs {
		f.Body = lower.Canonicalize(f.Body, alloc)
		optimize.Optimize(f, o.OptimizeRounds)
		f.Body = trace.Reorder(f.Body, alloc)

		/* dump the final IR if needed */
		dump := o.DumpIR || tr.If("dump_ir")
		if dump {
			tr.Printw("scheduled", "func", f.Name, "ir", f.String())
		}

		/* verify the scheduled function if needed */
		if o.InvariantChecks {
			if err := analysis.Verify(f.Body, f.Args); err != nil {
				ret.err = errors.Wrap(err, "verify %v", f.Name)
				return
			}
		}

		/* analyze the final body */
		u, cp, ae := analyze(f)
		ret.units = append(ret.units, u)

		/* dump the analysis results as well */
		if dump {
			g := mir.BuildGraph(f.Body)
			tr.Printw("constants", "func", f.Name, "dump", dataflow.Dump(g, cp.Result))
			tr.Printw("available expressions", "func", f.Name, "dump", dataflow.Dump(g, ae))
		}
	}

	/* all done */
	return
}

func analyze(fn *mir.Function) (*Unit, analysis.ConstantPropagation, *dataflow.Result[analysis.Exprs]) {
	nb := len(fn.Body)
	lv := analysis.LiveTemps(fn.Body)
	cp := analysis.PropagateConstants(fn.Body, fn.Args)
	ae := analysis.AvailableExpressions(fn.Body)
	gr, mv := regalloc.Build(lv, regalloc.MirMoves(fn.Body), nil)

	/* per-statement constants */
	consts := make([]map[string]int64, nb)
	for i := range consts {
		consts[i] = cp.ConstantsIn(i)
	}

	/* pack everything together */
	return &Unit{
		Func:         fn,
		LiveOut:      lv.LiveOut,
		Constants:    consts,
		Exprs:        ae.In,
		Interference: gr,
		Moves:        mv,
	}, cp, ae
}
