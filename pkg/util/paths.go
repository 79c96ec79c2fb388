package util

import "path/filepath"

// RelPath returns path relative to root with forward slashes, falling
// back to the input when it cannot be made relative.
func RelPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
