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

// Package walker runs independent compile jobs with bounded parallelism.
// Manifests never share mutable state between top-level calls, so a build
// server can fan out over many entry files with no coordination beyond a
// worker bound.
package walker

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// JobFunc processes one job, identified by its index into the job list.
type JobFunc func(ctx context.Context, index int) error

// Options configures the walker's execution behavior.
type Options struct {
	// Parallelism sets the maximum number of concurrent workers.
	// If <= 0, defaults to runtime.NumCPU().
	Parallelism int

	// StopOnError cancels remaining jobs after the first failure.
	// If false, every job runs regardless of earlier failures.
	StopOnError bool
}

// Run executes fn for each of n jobs and returns per-index errors.
// Jobs are independent; ordering of completion is not defined, but the
// returned map is keyed by job index so callers can report
// deterministically.
func Run(ctx context.Context, n int, fn JobFunc, opts Options) map[int]error {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}

	var mu sync.Mutex
	failures := make(map[int]error)

	g, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(opts.Parallelism))

	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			failures[i] = err
			mu.Unlock()
			continue
		}

		index := i
		g.Go(func() error {
			defer sem.Release(1)

			if err := fn(ctx, index); err != nil {
				mu.Lock()
				failures[index] = err
				mu.Unlock()
				if opts.StopOnError {
					return err
				}
			}
			return nil
		})
	}

	// Per-job errors are already collected; the group error only
	// reflects StopOnError cancellation.
	_ = g.Wait()

	return failures
}
