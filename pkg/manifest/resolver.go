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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"
)

// Document is the generic tree value model every manifest parses into:
// scalars, ordered sequences and string-keyed maps, as produced by the
// YAML/JSON unmarshaller.
type Document map[string]interface{}

// RefKey is the wire-contract key marking a reference placeholder,
// e.g. {"$ref": "steps/review.yaml"}.
const RefKey = "$ref"

// Resolver turns relative $ref strings into absolute, sandbox-verified file
// paths and loads the documents behind them. All resolution is confined to
// the root directory given at construction; any path that lexically or
// physically (via symlinks) lands outside it is rejected.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver confined to the given sandbox root.
// The root must exist; it is canonicalized once so that every containment
// check runs against the same resolved form.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to absolutize sandbox root %q: %w", root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize sandbox root %q: %w", root, err)
	}
	return &Resolver{root: canonical}, nil
}

// Root returns the canonical sandbox root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve computes the absolute path for ref, interpreted relative to the
// directory of currentFile. An empty currentFile anchors the reference at the
// sandbox root (used for the entry document).
//
// Containment is checked on the canonical form, not the raw string: the
// joined path is cleaned first, and if the target exists its symlinks are
// evaluated and the result re-checked. A symlink planted inside the sandbox
// that points outside it therefore fails here; a dangling path keeps its
// lexical verdict and fails later in Load.
func (r *Resolver) Resolve(currentFile, ref string) (string, error) {
	base := r.root
	if currentFile != "" {
		base = filepath.Dir(currentFile)
	}
	candidate := ref
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, ref)
	}
	candidate = filepath.Clean(candidate)

	if !r.contains(candidate) {
		return "", &PathEscapeError{Attempted: candidate, Root: r.root}
	}

	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		if !r.contains(resolved) {
			return "", &PathEscapeError{Attempted: resolved, Root: r.root}
		}
		candidate = resolved
	}

	return candidate, nil
}

// Load reads and parses the file at path into the generic tree model.
// The path must have been verified by Resolve first.
func (r *Resolver) Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UnreadableError{Path: path, Err: err}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}
	return doc, nil
}

func (r *Resolver) contains(path string) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
