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
	"github.com/chenzhuoyu/iasm/x86_64"
)

var ArchRegs = [...]x86_64.Register64{
	x86_64.RAX,
	x86_64.RCX,
	x86_64.RDX,
	x86_64.RBX,
	x86_64.RSP,
	x86_64.RBP,
	x86_64.RSI,
	x86_64.RDI,
	x86_64.R8,
	x86_64.R9,
	x86_64.R10,
	x86_64.R11,
	x86_64.R12,
	x86_64.R13,
	x86_64.R14,
	x86_64.R15,
}

// System V argument passing order.
var ArgRegs = [...]x86_64.Register64{
	x86_64.RDI,
	x86_64.RSI,
	x86_64.RDX,
	x86_64.RCX,
	x86_64.R8,
	x86_64.R9,
}

// Registers clobbered by a call.
var CallerSaved = [...]x86_64.Register64{
	x86_64.RAX,
	x86_64.RCX,
	x86_64.RDX,
	x86_64.RSI,
	x86_64.RDI,
	x86_64.R8,
	x86_64.R9,
	x86_64.R10,
	x86_64.R11,
}

var (
	RAX = Arch(x86_64.RAX)
	RDX = Arch(x86_64.RDX)
	RSP = Arch(x86_64.RSP)
	RBP = Arch(x86_64.RBP)
)

// Arch returns the operand naming a physical register.
func Arch(r x86_64.Register64) Reg {
	if !isArchReg(r) {
		panic("asm: invalid architecture register: " + r.String())
	} else {
		return Reg(r.String())
	}
}

func isArchReg(r x86_64.Register64) bool {
	for _, v := range ArchRegs {
		if v == r {
			return true
		}
	}
	return false
}

// IsPrecolored reports whether name refers to a physical register.
func IsPrecolored(name string) bool {
	for _, r := range ArchRegs {
		if r.String() == name {
			return true
		}
	}
	return false
}

// PrecoloredNames lists the names of every physical register.
func PrecoloredNames() []string {
	ret := make([]string, 0, len(ArchRegs))
	for _, r := range ArchRegs {
		ret = append(ret, r.String())
	}
	return ret
}
