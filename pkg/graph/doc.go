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

// Package graph lowers a composed workflow document into an explicit
// node/edge graph and validates it.
//
// The authoring format is a linked list of steps with successor pointers
// (next, cases/default, voters+next); the compiled form is an immutable
// Graph of nodes and labeled edges. The two shapes are joined by one pure
// lowering function and never mixed in a single mutable type.
//
// Compilation runs in one of two modes. Loose mode is for in-progress
// documents: structural-integrity problems (dangling targets, unknown
// start, unreachable nodes) are collected as warnings and a graph is
// always returned. Strict mode is the gate before execution or governance
// hand-off: the same findings become errors and fail the call.
package graph
