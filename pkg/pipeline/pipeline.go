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

// Package pipeline wires the three compilation stages end to end:
// reference resolution, document composition, and topology compilation.
// Data flows strictly downstream; no stage calls back upstream, and no
// state outlives one top-level call.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph/walker"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/manifest"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/metrics"
)

// Options configures one compose-and-compile run.
type Options struct {
	// Root is the sandbox directory; references never resolve past it.
	Root string
	// Entry is the entry document path, relative to Root.
	Entry string
	// Mode selects loose or strict validation.
	Mode graph.Mode
	// MaxDepth overrides the composition recursion cap when > 0.
	MaxDepth int
	// Logger receives pipeline tracing; unset discards.
	Logger logr.Logger
}

// Result is the successful output of a pipeline run.
type Result struct {
	Graph       *graph.Graph
	Diagnostics graph.Diagnostics
}

// ComposeAndCompile composes the entry document inside the sandbox and
// compiles it under the requested mode. Failures surface as exactly one of
// the three error families: sandbox escapes, composition failures, or
// compilation failures (strict mode only).
func ComposeAndCompile(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	result, err := composeAndCompile(ctx, opts)

	mode := opts.Mode.String()
	metrics.RecordCompileLatency(mode, time.Since(start).Seconds())
	metrics.RecordCompileResult(mode, resultLabel(err))
	return result, err
}

func composeAndCompile(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	var composerOpts []manifest.ComposerOption
	composerOpts = append(composerOpts, manifest.WithLogger(log))
	if opts.MaxDepth > 0 {
		composerOpts = append(composerOpts, manifest.WithMaxDepth(opts.MaxDepth))
	}

	composer, err := manifest.NewComposer(opts.Root, composerOpts...)
	if err != nil {
		return nil, err
	}

	doc, err := composer.Compose(ctx, opts.Entry)
	if err != nil {
		return nil, err
	}

	compiler, err := graph.NewCompiler(opts.Mode, graph.WithCompilerLogger(log))
	if err != nil {
		return nil, err
	}

	g, diags, err := compiler.Compile(ctx, doc)
	if err != nil {
		return nil, err
	}

	return &Result{Graph: g, Diagnostics: diags}, nil
}

// FileResult is the per-entry outcome of a RunAll batch.
type FileResult struct {
	Entry  string
	Result *Result
	Err    error
}

// RunAll compiles many entry documents under one sandbox root with bounded
// parallelism. Entries are independent; results are returned in input
// order so callers can report deterministically.
func RunAll(ctx context.Context, root string, entries []string, mode graph.Mode, parallelism int) []FileResult {
	results := make([]FileResult, len(entries))

	walker.Run(ctx, len(entries), func(ctx context.Context, i int) error {
		res, err := ComposeAndCompile(ctx, Options{
			Root:  root,
			Entry: entries[i],
			Mode:  mode,
		})
		results[i] = FileResult{Entry: entries[i], Result: res, Err: err}
		return err
	}, walker.Options{Parallelism: parallelism})

	return results
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case manifest.IsSecurityError(err):
		return metrics.ResultSecurityError
	case manifest.IsCompositionError(err):
		return metrics.ResultCompositionError
	case graph.IsCompilationError(err):
		return metrics.ResultCompilationError
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	default:
		return metrics.ResultInternalError
	}
}
