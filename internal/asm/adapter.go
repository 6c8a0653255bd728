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

package asm

import (
	"github.com/cloudwego/midir/internal/cfg"
)

// Adapter exposes the control-flow shape of assembly instructions.
type Adapter struct{}

func (Adapter) Label(ins Instr) (string, bool) {
	if v, ok := ins.(*Label); ok {
		return v.Name, true
	} else {
		return "", false
	}
}

func (Adapter) Target(ins Instr) (string, bool) {
	if v, ok := ins.(*Jmp); ok && v.Cond == Always {
		return v.Label, true
	} else {
		return "", false
	}
}

func (Adapter) Branches(ins Instr) ([]string, bool) {
	if v, ok := ins.(*Jmp); ok && v.Cond != Always {
		return []string{v.Label}, true
	} else {
		return nil, false
	}
}

func (Adapter) IsTerminal(ins Instr) bool {
	switch v := ins.(type) {
	case *Jmp:
		return v.Cond == Always
	case *Ret:
		return true
	default:
		return false
	}
}

// BuildGraph builds the control-flow graph of an instruction list.
func BuildGraph(v []Instr) *cfg.Graph[Instr] {
	return cfg.Build[Instr](v, Adapter{})
}
