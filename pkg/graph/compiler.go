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
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph/dag"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/manifest"
)

// Mode selects the validation profile for a compile call.
type Mode int

const (
	// ModeLoose tolerates incomplete drafts: structural-integrity
	// findings are warnings and a graph is always returned.
	ModeLoose Mode = iota
	// ModeStrict fails the call on any error-severity finding. Only
	// strict-compiled graphs may be handed to a runtime.
	ModeStrict
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeLoose:
		return "loose"
	case ModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "loose":
		return ModeLoose, nil
	case "strict":
		return ModeStrict, nil
	default:
		return ModeLoose, fmt.Errorf("unknown validation mode %q (expected loose or strict)", s)
	}
}

// structuralSeverity is the severity of structural-integrity findings
// (dangling targets, start problems, unreachable nodes): these block in
// strict mode only.
func (m Mode) structuralSeverity() Severity {
	if m == ModeStrict {
		return SeverityError
	}
	return SeverityWarning
}

// reservedStepIDs are ids that collide with authoring-format keywords.
var reservedStepIDs = sets.NewString("start", "steps", DefaultConditionLabel)

// Compiler lowers authored workflows into compiled graphs. A Compiler is
// stateless across calls and safe for concurrent use.
type Compiler struct {
	mode Mode
	log  logr.Logger
	cond *conditionChecker
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithCompilerLogger sets the logger used for compile tracing.
func WithCompilerLogger(log logr.Logger) CompilerOption {
	return func(c *Compiler) {
		c.log = log
	}
}

// NewCompiler creates a Compiler for the given validation mode.
func NewCompiler(mode Mode, opts ...CompilerOption) (*Compiler, error) {
	cond, err := newConditionChecker()
	if err != nil {
		return nil, err
	}
	c := &Compiler{
		mode: mode,
		log:  logr.Discard(),
		cond: cond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Mode returns the compiler's validation mode.
func (c *Compiler) Mode() Mode {
	return c.mode
}

// pendingEdge tracks a materialized edge together with the document
// location of the pointer it came from, for precise diagnostics.
type pendingEdge struct {
	edge Edge
	loc  string
}

// Compile decodes the composed document and lowers it. See CompileWorkflow.
func (c *Compiler) Compile(ctx context.Context, doc manifest.Document) (*Graph, Diagnostics, error) {
	wf, err := ParseWorkflow(doc)
	if err != nil {
		return nil, nil, err
	}
	return c.CompileWorkflow(ctx, wf)
}

// CompileWorkflow lowers an authored workflow into a Graph and validates
// it under the compiler's mode.
//
// In loose mode the graph is always returned together with the full
// diagnostic list, error-severity findings included. In strict mode any
// error-severity finding fails the call with InvalidGraphError and no
// graph is returned.
func (c *Compiler) CompileWorkflow(ctx context.Context, wf *Workflow) (*Graph, Diagnostics, error) {
	var diags Diagnostics
	var pending []pendingEdge

	g := &Graph{
		EntryPoint: wf.Start,
		nodesByID:  make(map[string]*Node, len(wf.Steps)),
	}

	seen := sets.NewString()
	for i, step := range wf.Steps {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		loc := fmt.Sprintf("steps[%d]", i)

		if step.ID == "" {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeInvalidStep,
				Message:  "step has no id",
				Location: loc + ".id",
			})
			continue
		}
		if seen.Has(step.ID) {
			// First definition wins; later duplicates produce no node.
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeDuplicateID,
				Message:  fmt.Sprintf("duplicate step id %q", step.ID),
				Location: loc + ".id",
			})
			continue
		}
		seen.Insert(step.ID)

		if reservedStepIDs.Has(step.ID) {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeInvalidStep,
				Message:  fmt.Sprintf("step id %q is a reserved word", step.ID),
				Location: loc + ".id",
			})
			continue
		}

		node, stepDiags, stepEdges := c.lowerStep(step, i, loc)
		diags = append(diags, stepDiags...)
		pending = append(pending, stepEdges...)

		g.Nodes = append(g.Nodes, node)
		g.nodesByID[node.ID] = node
	}

	for _, pe := range pending {
		g.Edges = append(g.Edges, pe.edge)
		if src := g.nodesByID[pe.edge.Source]; src != nil {
			src.Outgoing = append(src.Outgoing, pe.edge)
		}
		if g.nodesByID[pe.edge.Target] == nil {
			diags = append(diags, Diagnostic{
				Severity: c.mode.structuralSeverity(),
				Code:     CodeDanglingEdge,
				Message:  fmt.Sprintf("step %q points to undefined step %q", pe.edge.Source, pe.edge.Target),
				Location: pe.loc,
			})
		}
	}

	startValid := false
	switch {
	case wf.Start == "":
		diags = append(diags, Diagnostic{
			Severity: c.mode.structuralSeverity(),
			Code:     CodeMissingStart,
			Message:  "document does not set a start step",
			Location: "start",
		})
	case g.nodesByID[wf.Start] == nil:
		diags = append(diags, Diagnostic{
			Severity: c.mode.structuralSeverity(),
			Code:     CodeUnknownStart,
			Message:  fmt.Sprintf("start points to undefined step %q", wf.Start),
			Location: "start",
		})
	default:
		startValid = true
	}

	directed := dag.New[string]()
	for _, node := range g.Nodes {
		// Ids are already unique here, AddVertex cannot fail.
		_ = directed.AddVertex(node.ID, node.Index)
	}
	for _, e := range g.Edges {
		if g.nodesByID[e.Source] != nil && g.nodesByID[e.Target] != nil {
			directed.AddEdge(e.Source, e.Target)
		}
	}

	// Reachability and cyclicity are both anchored at the entry point;
	// without a valid one there is nothing to walk from.
	if startValid {
		reachable := directed.ReachableFrom(wf.Start)
		for _, node := range g.Nodes {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if _, ok := reachable[node.ID]; !ok {
				diags = append(diags, Diagnostic{
					Severity: c.mode.structuralSeverity(),
					Code:     CodeUnreachableNode,
					Message:  fmt.Sprintf("step %q is not reachable from start step %q", node.ID, wf.Start),
					Location: fmt.Sprintf("steps[%d]", node.Index),
				})
			}
		}
		g.HasCycles = directed.HasCycleFrom(wf.Start)
	}

	if c.mode == ModeStrict && diags.HasErrors() {
		return nil, diags, &InvalidGraphError{Diagnostics: diags}
	}

	c.log.V(1).Info("compiled workflow",
		"mode", c.mode.String(),
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"cyclic", g.HasCycles,
		"diagnostics", len(diags),
	)
	return g, diags, nil
}

// lowerStep converts one authored step into a node plus its materialized
// edges, checking kind-specific field usage along the way.
func (c *Compiler) lowerStep(step *Step, index int, loc string) (*Node, Diagnostics, []pendingEdge) {
	var diags Diagnostics
	var edges []pendingEdge

	node := &Node{
		ID:    step.ID,
		Kind:  step.Kind,
		With:  step.With,
		Index: index,
	}

	invalid := func(format string, args ...interface{}) {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeInvalidStep,
			Message:  fmt.Sprintf("step %q: ", step.ID) + fmt.Sprintf(format, args...),
			Location: loc,
		})
	}

	switch step.Kind {
	case StepKindAgent, StepKindLogic, StepKindCouncil:
		if len(step.Cases) > 0 || step.Default != "" {
			invalid("cases/default are only valid on switch steps")
		}
		if step.Kind == StepKindCouncil {
			if len(step.Voters) == 0 {
				invalid("council step must declare voters")
			}
		} else if len(step.Voters) > 0 {
			invalid("voters are only valid on council steps")
		}
		// Absent next means a terminal node: zero outgoing edges.
		if step.Next != "" {
			edges = append(edges, pendingEdge{
				edge: Edge{Source: step.ID, Target: step.Next},
				loc:  loc + ".next",
			})
		}

	case StepKindSwitch:
		if step.Next != "" {
			invalid("next is not valid on switch steps, use cases/default")
		}
		if len(step.Voters) > 0 {
			invalid("voters are only valid on council steps")
		}
		caseSeen := sets.NewString()
		for j, route := range step.Cases {
			caseLoc := fmt.Sprintf("%s.cases[%d]", loc, j)
			if route.When == "" {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeInvalidCondition,
					Message:  fmt.Sprintf("step %q: case has no condition", step.ID),
					Location: caseLoc,
				})
				continue
			}
			if route.When == DefaultConditionLabel {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeInvalidCondition,
					Message:  fmt.Sprintf("step %q: condition label %q is reserved for the default route", step.ID, DefaultConditionLabel),
					Location: caseLoc,
				})
				continue
			}
			if caseSeen.Has(route.When) {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeDuplicateCase,
					Message:  fmt.Sprintf("step %q: duplicate case condition %q", step.ID, route.When),
					Location: caseLoc,
				})
				continue
			}
			caseSeen.Insert(route.When)

			if route.Then == "" {
				invalid("case %q has no target", route.When)
				continue
			}
			if err := c.cond.check(route.When); err != nil {
				// Conditions are opaque to execution here, but they must
				// at least parse; escalation follows the mode since a
				// draft may hold half-typed expressions.
				diags = append(diags, Diagnostic{
					Severity: c.mode.structuralSeverity(),
					Code:     CodeInvalidCondition,
					Message:  fmt.Sprintf("step %q: condition %q is not a valid expression: %v", step.ID, route.When, err),
					Location: caseLoc,
				})
			}
			edges = append(edges, pendingEdge{
				edge: Edge{Source: step.ID, Target: route.Then, Condition: route.When},
				loc:  caseLoc,
			})
		}
		// An empty cases list with a default degenerates to an
		// unconditional edge; that is a valid authoring shape.
		if step.Default != "" {
			edges = append(edges, pendingEdge{
				edge: Edge{Source: step.ID, Target: step.Default, Condition: DefaultConditionLabel},
				loc:  loc + ".default",
			})
		}

	default:
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeUnknownKind,
			Message:  fmt.Sprintf("step %q has unknown kind %q", step.ID, step.Kind),
			Location: loc + ".kind",
		})
	}

	return node, diags, edges
}
