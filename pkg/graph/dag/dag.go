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

// Package dag provides a generic directed graph used by the compiler for
// reachability and cycle analysis. Unlike an acyclic-only structure,
// cycles are allowed and merely reported: compiled workflows may loop, and
// whether they do drives downstream execution-limit policy.
package dag

import (
	"cmp"
	"fmt"
	"sort"
)

// Vertex is a node in the directed graph.
type Vertex[T cmp.Ordered] struct {
	// ID is the unique identifier of the vertex.
	ID T
	// Order is the insertion position, used to keep walks deterministic.
	Order int
	// Out is the set of vertices this vertex has edges to.
	Out map[T]struct{}
}

// DirectedGraph is a mutable directed graph keyed by comparable ids.
type DirectedGraph[T cmp.Ordered] struct {
	Vertices map[T]*Vertex[T]
}

// New creates an empty directed graph.
func New[T cmp.Ordered]() *DirectedGraph[T] {
	return &DirectedGraph[T]{
		Vertices: make(map[T]*Vertex[T]),
	}
}

// AddVertex adds a vertex with the given insertion order.
func (g *DirectedGraph[T]) AddVertex(id T, order int) error {
	if _, exists := g.Vertices[id]; exists {
		return fmt.Errorf("vertex %v already exists", id)
	}
	g.Vertices[id] = &Vertex[T]{
		ID:    id,
		Order: order,
		Out:   make(map[T]struct{}),
	}
	return nil
}

// AddEdge records a directed edge. Both endpoints must exist; unknown
// endpoints are ignored rather than created, since the compiler reports
// dangling targets through its own diagnostics.
func (g *DirectedGraph[T]) AddEdge(from, to T) {
	src, ok := g.Vertices[from]
	if !ok {
		return
	}
	if _, ok := g.Vertices[to]; !ok {
		return
	}
	src.Out[to] = struct{}{}
}

// ReachableFrom returns the set of vertices reachable from start,
// including start itself when it exists.
func (g *DirectedGraph[T]) ReachableFrom(start T) map[T]struct{} {
	reached := make(map[T]struct{})
	if _, ok := g.Vertices[start]; !ok {
		return reached
	}

	stack := []T{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reached[id]; seen {
			continue
		}
		reached[id] = struct{}{}
		for _, next := range g.sortedOut(id) {
			if _, seen := reached[next]; !seen {
				stack = append(stack, next)
			}
		}
	}
	return reached
}

// HasCycleFrom reports whether any cycle is reachable from start, using a
// three-color depth-first walk and looking for back edges.
func (g *DirectedGraph[T]) HasCycleFrom(start T) bool {
	if _, ok := g.Vertices[start]; !ok {
		return false
	}

	const (
		white = 0 // unvisited
		gray  = 1 // on the current walk
		black = 2 // fully explored
	)
	colors := make(map[T]int)

	var visit func(id T) bool
	visit = func(id T) bool {
		colors[id] = gray
		for _, next := range g.sortedOut(id) {
			switch colors[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		colors[id] = black
		return false
	}
	return visit(start)
}

// Len returns the number of vertices.
func (g *DirectedGraph[T]) Len() int {
	return len(g.Vertices)
}

// sortedOut returns id's successors ordered by insertion order, keeping
// every walk deterministic regardless of map iteration order.
func (g *DirectedGraph[T]) sortedOut(id T) []T {
	v := g.Vertices[id]
	out := make([]T, 0, len(v.Out))
	for next := range v.Out {
		out = append(out, next)
	}
	sort.Slice(out, func(i, j int) bool {
		return g.Vertices[out[i]].Order < g.Vertices[out[j]].Order
	})
	return out
}
