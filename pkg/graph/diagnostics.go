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

import "fmt"

// Severity classifies a diagnostic finding.
type Severity int

const (
	// SeverityWarning marks findings that never block a compile call.
	SeverityWarning Severity = iota
	// SeverityError marks findings that fail strict-mode compilation.
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Code identifies a diagnostic category. Codes are stable and part of the
// contract with editor tooling.
type Code string

const (
	// CodeDuplicateID flags two steps sharing an id. Always an error:
	// the graph is ambiguous and no tool can render or execute it.
	CodeDuplicateID Code = "duplicate-id"
	// CodeUnknownKind flags a step kind outside the discriminator set.
	CodeUnknownKind Code = "unknown-kind"
	// CodeInvalidStep flags pointer fields that do not belong to the
	// step's kind, or required kind fields that are missing.
	CodeInvalidStep Code = "invalid-step"
	// CodeMissingStart flags a document without a start pointer.
	CodeMissingStart Code = "missing-start"
	// CodeUnknownStart flags a start pointer naming no step.
	CodeUnknownStart Code = "unknown-start"
	// CodeDanglingEdge flags a successor pointer naming no step.
	CodeDanglingEdge Code = "dangling-edge"
	// CodeUnreachableNode flags a node no path from the entry reaches.
	CodeUnreachableNode Code = "unreachable-node"
	// CodeDuplicateCase flags two cases of one switch sharing a
	// condition. Always an error: the routing is meaningless regardless
	// of how complete the document is.
	CodeDuplicateCase Code = "duplicate-case"
	// CodeInvalidCondition flags a case condition that does not parse
	// as a CEL expression, or uses the reserved default label.
	CodeInvalidCondition Code = "invalid-condition"
)

// Diagnostic is one validation finding, carrying enough context to render
// a precise user-facing message. Location is a dotted pointer into the
// composed document, e.g. "steps[2].cases[1]".
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
}

// String renders the diagnostic in "severity code location: message" form.
func (d Diagnostic) String() string {
	if d.Location == "" {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", d.Severity, d.Code, d.Location, d.Message)
}

// Diagnostics is an ordered list of findings. Ordering follows authoring
// order of the steps that produced them, so identical inputs always yield
// identical lists.
type Diagnostics []Diagnostic

// HasErrors reports whether any finding has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity findings, in order.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the warning-severity findings, in order.
func (ds Diagnostics) Warnings() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
