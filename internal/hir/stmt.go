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

package hir

type Stmt interface {
	hirstmt()
}

type (
	// Let binds Name to the value of Value. Binding an already bound name
	// assigns to it.
	Let struct {
		Name  string
		Value Expr
	}

	ExprStmt struct {
		E Expr
	}

	If struct {
		Cond Expr
		Then []Stmt
		Else []Stmt
	}

	// Match dispatches on the tag of the variant held by Matched, and binds
	// the value of the selected case to Result.
	Match struct {
		Result  string
		Matched string
		Cases   []MatchCase
	}

	MatchCase struct {
		Tag     int64
		DataVar string
		Body    []Stmt
		Value   Expr
	}

	// ClosureApply calls a closure, storing the result into Result.
	ClosureApply struct {
		Closure Expr
		Args    []Expr
		Result  string
	}

	// Return returns Value, or nothing when it is nil.
	Return struct {
		Value Expr
	}

	Throw struct {
		Value Expr
	}
)

func (*Let) hirstmt()          {}
func (*ExprStmt) hirstmt()     {}
func (*If) hirstmt()           {}
func (*Match) hirstmt()        {}
func (*ClosureApply) hirstmt() {}
func (*Return) hirstmt()       {}
func (*Throw) hirstmt()        {}

type Function struct {
	Name      string
	Params    []string
	Body      []Stmt
	HasReturn bool
}

// Program is a whole program. Entry names the synthesized entry function.
type Program struct {
	Functions []*Function
	Entry     string
}
