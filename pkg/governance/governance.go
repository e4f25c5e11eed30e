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

// Package governance defines the boundary with the external policy
// evaluator. The evaluator is an opaque black box: it consumes a serialized
// graph snapshot and returns a verdict. It is only ever handed the result
// of a successful strict compile.
package governance

import (
	"context"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
)

// Verdict is the outcome of a policy evaluation.
type Verdict struct {
	// Allowed reports whether the graph passed every policy rule.
	Allowed bool `json:"allowed"`
	// Violations lists human-readable messages for each failed rule.
	Violations []string `json:"violations,omitempty"`
}

// Evaluator judges a compiled graph snapshot against policy rules.
type Evaluator interface {
	Evaluate(ctx context.Context, snapshot *graph.Snapshot) (*Verdict, error)
}
