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

package manifest

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/go-logr/logr"
	"golang.org/x/exp/maps"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/metrics"
)

// DefaultMaxDepth caps the reference recursion depth. Legitimate manifests
// never get close; the cap turns pathological inputs into a clean
// DepthError instead of a stack overflow.
const DefaultMaxDepth = 64

// Composer recursively expands every $ref placeholder in an entry document
// into a single reference-free document tree. Each Compose call owns its
// own visiting stack and resolution cache, so concurrent calls on disjoint
// inputs need no coordination.
type Composer struct {
	resolver *Resolver
	maxDepth int
	log      logr.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithMaxDepth overrides the recursion depth cap.
func WithMaxDepth(n int) ComposerOption {
	return func(c *Composer) {
		c.maxDepth = n
	}
}

// WithLogger sets the logger used for composition tracing.
func WithLogger(log logr.Logger) ComposerOption {
	return func(c *Composer) {
		c.log = log
	}
}

// NewComposer creates a Composer sandboxed to the given root directory.
func NewComposer(root string, opts ...ComposerOption) (*Composer, error) {
	resolver, err := NewResolver(root)
	if err != nil {
		return nil, err
	}
	c := &Composer{
		resolver: resolver,
		maxDepth: DefaultMaxDepth,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolver returns the sandbox resolver backing this composer.
func (c *Composer) Resolver() *Resolver {
	return c.resolver
}

// composeState is the per-call resolution state. It never outlives one
// Compose invocation, which keeps security and cycle state isolated
// between top-level calls.
type composeState struct {
	// visiting maps an absolute path to its position on the stack.
	visiting map[string]int
	// stack is the current resolution chain, used for cycle reporting.
	stack []string
	// resolved caches fully composed sub-documents so diamond
	// dependencies load each file once.
	resolved map[string]interface{}
}

// Compose resolves entryFile inside the sandbox and expands every reference
// in it, depth first. On success the returned document contains no $ref
// placeholders. Any resolution failure anywhere in the tree aborts the
// whole call; there is no partial result.
func (c *Composer) Compose(ctx context.Context, entryFile string) (Document, error) {
	path, err := c.resolver.Resolve("", entryFile)
	if err != nil {
		return nil, err
	}

	st := &composeState{
		visiting: make(map[string]int),
		resolved: make(map[string]interface{}),
	}

	value, err := c.composeFile(ctx, path, st)
	if err != nil {
		return nil, err
	}

	doc, ok := value.(map[string]interface{})
	if !ok {
		return nil, &MalformedError{Path: path, Err: fmt.Errorf("entry document must be a mapping, got %T", value)}
	}
	c.log.V(1).Info("composed document", "entry", path, "files", len(st.resolved))
	metrics.ComposedFiles.Observe(float64(len(st.resolved)))
	return Document(doc), nil
}

// composeFile loads one file and expands it, tracking the resolution stack
// for cycle detection and memoizing the result for diamond sharing.
func (c *Composer) composeFile(ctx context.Context, path string, st *composeState) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if pos, visiting := st.visiting[path]; visiting {
		cycle := append(slices.Clone(st.stack[pos:]), path)
		return nil, &CycleError{Cycle: cycle}
	}
	if cached, done := st.resolved[path]; done {
		// Shared by value, not by pointer: the two parents of a diamond
		// must not observe each other through a common subtree.
		return deepCopyValue(cached), nil
	}
	if len(st.stack) >= c.maxDepth {
		return nil, &DepthError{Limit: c.maxDepth, Path: path}
	}

	st.visiting[path] = len(st.stack)
	st.stack = append(st.stack, path)
	defer func() {
		delete(st.visiting, path)
		st.stack = st.stack[:len(st.stack)-1]
	}()

	doc, err := c.resolver.Load(path)
	if err != nil {
		return nil, err
	}

	expanded, err := c.expandValue(ctx, map[string]interface{}(doc), path, st)
	if err != nil {
		return nil, err
	}

	st.resolved[path] = expanded
	return deepCopyValue(expanded), nil
}

// expandValue walks a parsed value, replacing reference placeholders with
// the content they point to.
func (c *Composer) expandValue(ctx context.Context, value interface{}, currentFile string, st *composeState) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		if ref, ok, err := referenceTarget(v, currentFile); err != nil {
			return nil, err
		} else if ok {
			target, err := c.resolver.Resolve(currentFile, ref)
			if err != nil {
				return nil, err
			}
			return c.composeFile(ctx, target, st)
		}

		out := make(map[string]interface{}, len(v))
		keys := maps.Keys(v)
		sort.Strings(keys)
		for _, key := range keys {
			expanded, err := c.expandValue(ctx, v[key], currentFile, st)
			if err != nil {
				return nil, err
			}
			out[key] = expanded
		}
		return out, nil

	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			expanded, err := c.expandValue(ctx, item, currentFile, st)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil

	default:
		return v, nil
	}
}

// referenceTarget reports whether m is a reference placeholder and returns
// its target. A map carrying $ref alongside other keys, or with a
// non-string target, is malformed rather than silently treated as data.
func referenceTarget(m map[string]interface{}, currentFile string) (string, bool, error) {
	raw, hasRef := m[RefKey]
	if !hasRef {
		return "", false, nil
	}
	if len(m) != 1 {
		return "", false, &MalformedError{Path: currentFile, Err: fmt.Errorf("%s must be the only key of its mapping, found %d keys", RefKey, len(m))}
	}
	ref, ok := raw.(string)
	if !ok || ref == "" {
		return "", false, &MalformedError{Path: currentFile, Err: fmt.Errorf("%s target must be a non-empty string, got %T", RefKey, raw)}
	}
	return ref, true, nil
}

// deepCopyValue clones a composed value so cached subtrees stay immutable.
func deepCopyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = deepCopyValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
