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

package governance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
)

func acyclicSnapshot() *graph.Snapshot {
	return &graph.Snapshot{
		EntryPoint: "plan",
		HasCycles:  false,
		Nodes: []graph.SnapshotNode{
			{ID: "plan", Kind: graph.StepKindAgent},
			{ID: "done", Kind: graph.StepKindLogic},
		},
		Edges: []graph.Edge{
			{Source: "plan", Target: "done"},
		},
		Dependencies: map[string][]string{
			"done": {"plan"},
		},
	}
}

func TestCELEvaluatorAllows(t *testing.T) {
	e, err := NewCELEvaluator([]Rule{
		{Name: "no-cycles", Expression: "!hasCycles"},
		{Name: "small-graph", Expression: "nodes.size() <= 50"},
		{Name: "has-entry", Expression: `entryPoint != ""`},
	})
	require.NoError(t, err)

	verdict, err := e.Evaluate(context.Background(), acyclicSnapshot())
	require.NoError(t, err)
	assert.True(t, verdict.Allowed)
	assert.Empty(t, verdict.Violations)
}

func TestCELEvaluatorCollectsViolations(t *testing.T) {
	e, err := NewCELEvaluator([]Rule{
		{Name: "no-cycles", Expression: "!hasCycles"},
		{Name: "tiny-graph", Expression: "nodes.size() <= 1"},
	})
	require.NoError(t, err)

	snap := acyclicSnapshot()
	snap.HasCycles = true

	verdict, err := e.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	require.Len(t, verdict.Violations, 2)
}

func TestCELEvaluatorInspectsEdges(t *testing.T) {
	e, err := NewCELEvaluator([]Rule{
		{Name: "no-self-loops", Expression: "edges.all(e, e.source != e.target)"},
	})
	require.NoError(t, err)

	verdict, err := e.Evaluate(context.Background(), acyclicSnapshot())
	require.NoError(t, err)
	assert.True(t, verdict.Allowed)

	snap := acyclicSnapshot()
	snap.Edges = append(snap.Edges, graph.Edge{Source: "plan", Target: "plan"})
	verdict, err = e.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
}

func TestNewCELEvaluatorRejectsBadRules(t *testing.T) {
	_, err := NewCELEvaluator([]Rule{
		{Name: "broken", Expression: "nodes.size() <="},
	})
	require.Error(t, err)

	_, err = NewCELEvaluator([]Rule{
		{Name: "not-bool", Expression: "nodes.size()"},
	})
	require.Error(t, err)
}
