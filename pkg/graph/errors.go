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

package graph

import (
	"errors"
	"fmt"
)

// InvalidDefinitionError indicates a composed document whose workflow
// block does not decode into the authored step shape.
type InvalidDefinitionError struct {
	Err error
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid workflow definition: %v", e.Err)
}
func (e *InvalidDefinitionError) Unwrap() error { return e.Err }

// InvalidGraphError is returned by strict-mode compilation when blocking
// diagnostics exist. It carries the full diagnostic list, warnings
// included, so callers can render everything in one pass.
type InvalidGraphError struct {
	Diagnostics Diagnostics
}

func (e *InvalidGraphError) Error() string {
	errs := e.Diagnostics.Errors()
	if len(errs) == 1 {
		return fmt.Sprintf("graph is invalid: %s", errs[0])
	}
	return fmt.Sprintf("graph is invalid: %d errors, first: %s", len(errs), errs[0])
}

// AsInvalidGraphError returns the InvalidGraphError in err's chain, or nil.
func AsInvalidGraphError(err error) *InvalidGraphError {
	var ge *InvalidGraphError
	if errors.As(err, &ge) {
		return ge
	}
	return nil
}

// IsCompilationError reports whether err belongs to the compilation error
// family (as opposed to security or composition failures).
func IsCompilationError(err error) bool {
	var (
		ge *InvalidGraphError
		de *InvalidDefinitionError
	)
	return errors.As(err, &ge) || errors.As(err, &de)
}
