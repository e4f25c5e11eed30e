// Copyright 2025 The CoReason Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// PathEscapeError indicates a reference that resolves outside the sandbox
// root. This is always fatal, in every validation mode — it points at a
// malicious or badly misconfigured input, never at a draft in progress.
type PathEscapeError struct {
	Attempted string
	Root      string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("reference escapes sandbox: %q resolves outside root %q", e.Attempted, e.Root)
}

// CycleError indicates a reference cycle between documents. Cycle holds the
// chain of absolute paths, ending with the path that closed the loop.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reference cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// DepthError indicates that composition exceeded the configured recursion
// depth before reaching a leaf document.
type DepthError struct {
	Limit int
	Path  string
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("composition depth exceeded limit %d at %q", e.Limit, e.Path)
}

// MalformedError indicates a referenced file that could not be parsed.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string { return fmt.Sprintf("malformed document %q: %v", e.Path, e.Err) }
func (e *MalformedError) Unwrap() error { return e.Err }

// UnreadableError indicates a referenced file that could not be read.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string { return fmt.Sprintf("unreadable document %q: %v", e.Path, e.Err) }
func (e *UnreadableError) Unwrap() error { return e.Err }

// IsSecurityError reports whether err (or any error in its chain) is a
// sandbox violation.
func IsSecurityError(err error) bool {
	var pe *PathEscapeError
	return errors.As(err, &pe)
}

// AsCycleError returns the CycleError in err's chain, or nil.
func AsCycleError(err error) *CycleError {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// IsCompositionError reports whether err belongs to the composition error
// family: cycles, depth limits, or malformed/unreadable referenced files.
func IsCompositionError(err error) bool {
	var (
		ce *CycleError
		de *DepthError
		me *MalformedError
		ue *UnreadableError
	)
	return errors.As(err, &ce) || errors.As(err, &de) || errors.As(err, &me) || errors.As(err, &ue)
}
