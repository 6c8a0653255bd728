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

package midir

import (
	"fmt"
)

// ProgramError occures when the input program is not well-formed enough to
// be compiled at all.
type ProgramError struct {
	Func   string
	Reason string
}

func (self ProgramError) Error() string {
	if self.Func != "" {
		return fmt.Sprintf("ProgramError(%s): %s", self.Func, self.Reason)
	} else {
		return fmt.Sprintf("ProgramError: %s", self.Reason)
	}
}
