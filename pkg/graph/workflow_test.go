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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkflow(t *testing.T) {
	doc := map[string]interface{}{
		"name":  "review-loop",
		"start": "draft",
		"steps": []interface{}{
			map[string]interface{}{
				"id":   "draft",
				"kind": "agent",
				"next": "vote",
				"with": map[string]interface{}{"model": "large"},
			},
			map[string]interface{}{
				"id":     "vote",
				"kind":   "council",
				"voters": []interface{}{"alpha", "beta"},
			},
		},
	}

	wf, err := ParseWorkflow(doc)
	require.NoError(t, err)

	assert.Equal(t, "review-loop", wf.Name)
	assert.Equal(t, "draft", wf.Start)
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, StepKindAgent, wf.Steps[0].Kind)
	assert.Equal(t, "large", wf.Steps[0].With["model"])
	assert.Equal(t, []string{"alpha", "beta"}, wf.Steps[1].Voters)
}

func TestParseWorkflowRejectsUnknownFields(t *testing.T) {
	doc := map[string]interface{}{
		"start": "a",
		"steps": []interface{}{
			map[string]interface{}{"id": "a", "kind": "agent", "nxet": "b"},
		},
	}

	_, err := ParseWorkflow(doc)
	require.Error(t, err)
	assert.True(t, IsCompilationError(err))

	var de *InvalidDefinitionError
	require.ErrorAs(t, err, &de)
}

func TestParseWorkflowRejectsEmptySteps(t *testing.T) {
	_, err := ParseWorkflow(map[string]interface{}{"start": "a"})
	require.Error(t, err)

	var de *InvalidDefinitionError
	require.ErrorAs(t, err, &de)
}

func TestStepKindValid(t *testing.T) {
	for _, k := range []StepKind{StepKindAgent, StepKindLogic, StepKindSwitch, StepKindCouncil} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, StepKind("teleport").Valid())
	assert.False(t, StepKind("").Valid())
}
