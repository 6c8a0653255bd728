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

package mir

import (
	"github.com/cloudwego/midir/internal/cfg"
)

// Adapter exposes the control-flow shape of Mid-IR statements.
type Adapter struct{}

func (Adapter) Label(s Stmt) (string, bool) {
	if v, ok := s.(*Label); ok {
		return v.Name, true
	} else {
		return "", false
	}
}

func (Adapter) Target(s Stmt) (string, bool) {
	if v, ok := s.(*Jump); ok {
		return v.Label, true
	} else {
		return "", false
	}
}

func (Adapter) Branches(s Stmt) ([]string, bool) {
	switch v := s.(type) {
	case *CJump:
		return []string{v.True, v.False}, false
	case *CJumpFallThrough:
		return []string{v.Label}, true
	default:
		return nil, false
	}
}

func (Adapter) IsTerminal(s Stmt) bool {
	switch s.(type) {
	case *Jump, *CJump, *Return:
		return true
	default:
		return false
	}
}

// BuildGraph builds the control-flow graph of a canonical statement list.
func BuildGraph(v []Stmt) *cfg.Graph[Stmt] {
	return cfg.Build[Stmt](v, Adapter{})
}
