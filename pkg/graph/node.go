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

// DefaultConditionLabel is the edge label materialized from a switch
// step's default route. It is reserved: no case condition may use it.
const DefaultConditionLabel = "default"

// Edge is one directed connection in the compiled graph. Condition is
// empty for unconditional next edges; for switch-derived edges it carries
// the case condition, or DefaultConditionLabel for the default route.
type Edge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Condition string `json:"condition,omitempty"`
}

// Node is the lowered form of a Step. Nodes are immutable once the graph
// is returned; any change requires recompiling the authoring document.
type Node struct {
	ID   string                 `json:"id"`
	Kind StepKind               `json:"kind"`
	With map[string]interface{} `json:"with,omitempty"`

	// Index is the step's position in authoring order. It anchors
	// deterministic node and diagnostic ordering.
	Index int `json:"-"`

	// Outgoing holds the edges materialized from this step's pointer
	// fields, in declaration order.
	Outgoing []Edge `json:"outgoing,omitempty"`
}

// Graph is the compiled workflow artifact: the durable output of a compile
// call, handed off immutably to governance and runtime collaborators.
type Graph struct {
	// EntryPoint is the id of the start node.
	EntryPoint string

	// Nodes in authoring order.
	Nodes []*Node

	// Edges in lowering order: per node, in case declaration order.
	Edges []Edge

	// HasCycles records whether any cycle is reachable from the entry
	// point. Cycles are structurally permitted; downstream step-budget
	// policy uses this flag to decide whether an execution bound is
	// mandatory.
	HasCycles bool

	nodesByID map[string]*Node
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodesByID[id]
}

// Terminal reports whether the node has no outgoing edges.
func (n *Node) Terminal() bool {
	return len(n.Outgoing) == 0
}
