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
	"k8s.io/apimachinery/pkg/util/sets"
)

// SnapshotNode is the flattened node form carried in a Snapshot.
type SnapshotNode struct {
	ID   string                 `json:"id"`
	Kind StepKind               `json:"kind"`
	With map[string]interface{} `json:"with,omitempty"`
}

// Snapshot is the serialized form of a compiled graph handed to external
// collaborators, chiefly the governance/policy evaluator: nodes, edges and
// a flattened per-node dependency list.
type Snapshot struct {
	EntryPoint   string              `json:"entryPoint"`
	HasCycles    bool                `json:"hasCycles"`
	Nodes        []SnapshotNode      `json:"nodes"`
	Edges        []Edge              `json:"edges"`
	Dependencies map[string][]string `json:"dependencies,omitempty"`
}

// Snapshot flattens the graph into its serialized hand-off form. Node
// order follows authoring order; each dependency list holds the sorted,
// de-duplicated ids of the node's direct predecessors.
func (g *Graph) Snapshot() *Snapshot {
	snap := &Snapshot{
		EntryPoint:   g.EntryPoint,
		HasCycles:    g.HasCycles,
		Nodes:        make([]SnapshotNode, 0, len(g.Nodes)),
		Edges:        g.Edges,
		Dependencies: make(map[string][]string),
	}

	deps := make(map[string]sets.String)
	for _, e := range g.Edges {
		if g.nodesByID[e.Target] == nil {
			continue
		}
		if deps[e.Target] == nil {
			deps[e.Target] = sets.NewString()
		}
		deps[e.Target].Insert(e.Source)
	}

	for _, node := range g.Nodes {
		snap.Nodes = append(snap.Nodes, SnapshotNode{
			ID:   node.ID,
			Kind: node.Kind,
			With: node.With,
		})
		if sources, ok := deps[node.ID]; ok {
			snap.Dependencies[node.ID] = sources.List()
		}
	}
	return snap
}
