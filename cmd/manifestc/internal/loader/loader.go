package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// CollectManifests returns sandbox-relative manifest paths for the given
// root and path. The path is resolved against the working directory, like
// any CLI argument, and must land inside root. If it names a file, a
// single-element slice is returned. If it names a directory, all .yaml and
// .yml files in the directory (non-recursive) are returned, sorted for
// deterministic reporting.
func CollectManifests(root, path string) ([]string, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		ext := filepath.Ext(full)
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("file %q must have a .yaml or .yml extension", path)
		}
		rel, err := filepath.Rel(root, full)
		if err != nil {
			return nil, err
		}
		return []string{rel}, nil
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			rel, err := filepath.Rel(root, filepath.Join(full, entry.Name()))
			if err != nil {
				return nil, err
			}
			files = append(files, rel)
		}
	}

	sort.Strings(files)
	return files, nil
}
