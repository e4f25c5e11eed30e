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
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/manifest"
)

// StepKind discriminates the authored step variants. The values are part
// of the wire contract shared with external authoring tools.
type StepKind string

const (
	// StepKindAgent is an LLM agent invocation with a single successor.
	StepKindAgent StepKind = "agent"
	// StepKindLogic is a deterministic logic step with a single successor.
	StepKindLogic StepKind = "logic"
	// StepKindSwitch routes to one of several successors by condition.
	StepKindSwitch StepKind = "switch"
	// StepKindCouncil is a multi-voter deliberation with a single successor.
	StepKindCouncil StepKind = "council"
)

// Valid reports whether k is one of the known step kinds.
func (k StepKind) Valid() bool {
	switch k {
	case StepKindAgent, StepKindLogic, StepKindSwitch, StepKindCouncil:
		return true
	}
	return false
}

// CaseRoute is one conditional route of a switch step. When is a CEL
// condition expression; Then is the id of the successor step. Cases are an
// ordered list rather than a condition->target map so that duplicate
// conditions remain detectable and edge ordering stays deterministic.
type CaseRoute struct {
	When string `json:"when"`
	Then string `json:"then"`
}

// Step is one workflow unit as written by a human. Exactly the pointer
// fields matching its Kind may be set; everything the runtime needs beyond
// routing lives in the opaque With payload.
type Step struct {
	ID      string                 `json:"id"`
	Kind    StepKind               `json:"kind"`
	Next    string                 `json:"next,omitempty"`
	Cases   []CaseRoute            `json:"cases,omitempty"`
	Default string                 `json:"default,omitempty"`
	Voters  []string               `json:"voters,omitempty"`
	With    map[string]interface{} `json:"with,omitempty"`
}

// Workflow is the authoring-level shape of a composed document: an entry
// pointer plus an ordered list of steps. Authoring order is preserved and
// drives deterministic node and diagnostic ordering.
type Workflow struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Start       string  `json:"start,omitempty"`
	Steps       []*Step `json:"steps"`
}

// ParseWorkflow decodes a composed document into its authored workflow
// form. Unknown fields are rejected so typos surface at compile time
// rather than silently vanishing at runtime.
func ParseWorkflow(doc manifest.Document) (*Workflow, error) {
	data, err := yaml.Marshal(map[string]interface{}(doc))
	if err != nil {
		return nil, &InvalidDefinitionError{Err: fmt.Errorf("failed to serialize composed document: %w", err)}
	}

	var wf Workflow
	if err := yaml.UnmarshalStrict(data, &wf); err != nil {
		return nil, &InvalidDefinitionError{Err: err}
	}
	if len(wf.Steps) == 0 {
		return nil, &InvalidDefinitionError{Err: fmt.Errorf("document defines no steps")}
	}
	return &wf, nil
}
