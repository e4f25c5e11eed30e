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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolverResolveInsideRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "steps/review.yaml", "kind: agent\n")

	r, err := NewResolver(root)
	require.NoError(t, err)

	path, err := r.Resolve("", "steps/review.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Root(), "steps", "review.yaml"), path)
}

func TestResolverResolveRelativeToCurrentFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "steps/entry.yaml", "{}\n")
	writeFile(t, root, "shared/base.yaml", "{}\n")

	r, err := NewResolver(root)
	require.NoError(t, err)

	current := filepath.Join(r.Root(), "steps", "entry.yaml")
	path, err := r.Resolve(current, "../shared/base.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Root(), "shared", "base.yaml"), path)
}

func TestResolverRejectsParentEscape(t *testing.T) {
	root := t.TempDir()
	r, err := NewResolver(root)
	require.NoError(t, err)

	for _, ref := range []string{
		"../outside.yaml",
		"../../etc/passwd",
		"steps/../../outside.yaml",
	} {
		_, err := r.Resolve("", ref)
		require.Error(t, err, "ref %q", ref)
		assert.True(t, IsSecurityError(err), "ref %q should be a sandbox violation", ref)
	}
}

func TestResolverRejectsAbsoluteEscape(t *testing.T) {
	root := t.TempDir()
	outside := writeFile(t, t.TempDir(), "secret.yaml", "token: hunter2\n")

	r, err := NewResolver(root)
	require.NoError(t, err)

	_, err = r.Resolve("", outside)
	require.Error(t, err)
	assert.True(t, IsSecurityError(err))
}

func TestResolverRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "secret.yaml", "token: hunter2\n")

	link := filepath.Join(root, "inside.yaml")
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.yaml"), link))

	r, err := NewResolver(root)
	require.NoError(t, err)

	// Lexically the link is inside the root; physically it is not.
	_, err = r.Resolve("", "inside.yaml")
	require.Error(t, err)
	assert.True(t, IsSecurityError(err))
}

func TestResolverAllowsSymlinkInsideRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real/base.yaml", "kind: agent\n")

	r, err := NewResolver(root)
	require.NoError(t, err)

	link := filepath.Join(r.Root(), "alias.yaml")
	require.NoError(t, os.Symlink(filepath.Join(r.Root(), "real", "base.yaml"), link))

	path, err := r.Resolve("", "alias.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Root(), "real", "base.yaml"), path)
}

func TestResolverLoad(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "doc.yaml", "start: plan\nsteps:\n  - id: plan\n")

	r, err := NewResolver(root)
	require.NoError(t, err)

	doc, err := r.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "plan", doc["start"])
}

func TestResolverLoadMissingFile(t *testing.T) {
	root := t.TempDir()
	r, err := NewResolver(root)
	require.NoError(t, err)

	_, err = r.Load(filepath.Join(root, "absent.yaml"))
	require.Error(t, err)
	assert.True(t, IsCompositionError(err))

	var ue *UnreadableError
	require.ErrorAs(t, err, &ue)
}

func TestResolverLoadMalformedYAML(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "bad.yaml", "steps: [unclosed\n")

	r, err := NewResolver(root)
	require.NoError(t, err)

	_, err = r.Load(path)
	require.Error(t, err)

	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, path, me.Path)
}

func TestNewResolverMissingRoot(t *testing.T) {
	_, err := NewResolver(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
