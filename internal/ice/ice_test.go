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

package ice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type instr string

func (self instr) String() string {
	return string(self)
}

func TestPanic(t *testing.T) {
	defer func() {
		e, ok := recover().(*Error)
		require.True(t, ok)
		require.Equal(t, "trace: bad jump to L3 (node 4: goto L3)", e.Error())
	}()
	Panic("trace", 4, instr("goto L3"), "bad jump to %s", "L3")
}

func TestError_NoNode(t *testing.T) {
	e := &Error{Pass: "lower", Node: NoNode, Reason: "not canonical"}
	require.Equal(t, "lower: not canonical", e.Error())
}
