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
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
)

// Rule is one policy check expressed as a CEL predicate over a graph
// snapshot. The expression must evaluate to a boolean; false is a
// violation.
type Rule struct {
	// Name identifies the rule in verdicts, e.g. "no-cycles".
	Name string `json:"name"`
	// Expression is a CEL predicate, e.g. "!hasCycles" or
	// "nodes.size() <= 50".
	Expression string `json:"expression"`
}

type compiledRule struct {
	name    string
	program cel.Program
}

// CELEvaluator evaluates rule predicates against snapshots. Expressions
// see the snapshot through the variables entryPoint, hasCycles, nodes,
// edges and dependencies.
type CELEvaluator struct {
	rules []compiledRule
}

var _ Evaluator = (*CELEvaluator)(nil)

// NewCELEvaluator compiles the given rules. Rules that do not compile to
// a boolean predicate are rejected up front, not at evaluation time.
func NewCELEvaluator(rules []Rule) (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("entryPoint", cel.StringType),
		cel.Variable("hasCycles", cel.BoolType),
		cel.Variable("nodes", cel.ListType(cel.DynType)),
		cel.Variable("edges", cel.ListType(cel.DynType)),
		cel.Variable("dependencies", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy environment: %w", err)
	}

	e := &CELEvaluator{}
	for _, rule := range rules {
		ast, issues := env.Compile(rule.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %q does not compile: %w", rule.Name, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %q must evaluate to a boolean, got %s", rule.Name, ast.OutputType())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %q failed to plan: %w", rule.Name, err)
		}
		e.rules = append(e.rules, compiledRule{name: rule.Name, program: program})
	}
	return e, nil
}

// Evaluate runs every rule against the snapshot. Rules are independent;
// all violations are collected rather than stopping at the first.
func (e *CELEvaluator) Evaluate(ctx context.Context, snapshot *graph.Snapshot) (*Verdict, error) {
	activation := snapshotActivation(snapshot)

	verdict := &Verdict{Allowed: true}
	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, _, err := rule.program.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("rule %q failed to evaluate: %w", rule.name, err)
		}
		allowed, ok := out.Value().(bool)
		if !ok {
			return nil, fmt.Errorf("rule %q returned %T, want bool", rule.name, out.Value())
		}
		if !allowed {
			verdict.Allowed = false
			verdict.Violations = append(verdict.Violations, fmt.Sprintf("rule %q failed", rule.name))
		}
	}
	return verdict, nil
}

// snapshotActivation flattens a snapshot into the CEL variable bindings.
func snapshotActivation(snapshot *graph.Snapshot) map[string]interface{} {
	nodes := make([]interface{}, 0, len(snapshot.Nodes))
	for _, n := range snapshot.Nodes {
		nodes = append(nodes, map[string]interface{}{
			"id":   n.ID,
			"kind": string(n.Kind),
		})
	}

	edges := make([]interface{}, 0, len(snapshot.Edges))
	for _, e := range snapshot.Edges {
		edges = append(edges, map[string]interface{}{
			"source":    e.Source,
			"target":    e.Target,
			"condition": e.Condition,
		})
	}

	deps := make(map[string]interface{}, len(snapshot.Dependencies))
	for id, sources := range snapshot.Dependencies {
		deps[id] = sources
	}

	return map[string]interface{}{
		"entryPoint":   snapshot.EntryPoint,
		"hasCycles":    snapshot.HasCycles,
		"nodes":        nodes,
		"edges":        edges,
		"dependencies": deps,
	}
}
