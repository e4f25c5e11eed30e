package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestCollectManifestsSingleFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "workflow.yaml")
	chdir(t, root)

	files, err := CollectManifests(root, "workflow.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"workflow.yaml"}, files)
}

func TestCollectManifestsRejectsWrongExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "notes.txt")
	chdir(t, root)

	_, err := CollectManifests(root, "notes.txt")
	require.Error(t, err)
}

func TestCollectManifestsDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b.yaml")
	touch(t, root, "a.yml")
	touch(t, root, "readme.md")
	touch(t, root, "nested/c.yaml")

	files, err := CollectManifests(root, root)
	require.NoError(t, err)
	// Non-recursive, YAML only, sorted.
	assert.Equal(t, []string{"a.yml", "b.yaml"}, files)
}

func TestCollectManifestsRelativeDirectory(t *testing.T) {
	parent := t.TempDir()
	touch(t, parent, "manifests/flow.yaml")
	chdir(t, parent)

	// Mirror the validate command: the sandbox root is derived from the
	// same working-directory-relative argument the user typed.
	root, err := filepath.Abs("manifests")
	require.NoError(t, err)

	files, err := CollectManifests(root, "manifests")
	require.NoError(t, err)
	assert.Equal(t, []string{"flow.yaml"}, files)

	files, err = CollectManifests(root, "./manifests")
	require.NoError(t, err)
	assert.Equal(t, []string{"flow.yaml"}, files)
}

func TestCollectManifestsRelativeFileInSubdirectory(t *testing.T) {
	parent := t.TempDir()
	touch(t, parent, "manifests/flow.yaml")
	chdir(t, parent)

	root, err := filepath.Abs("manifests")
	require.NoError(t, err)

	files, err := CollectManifests(root, "manifests/flow.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"flow.yaml"}, files)
}

func TestCollectManifestsMissingPath(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)

	_, err := CollectManifests(root, "absent.yaml")
	require.Error(t, err)
}
