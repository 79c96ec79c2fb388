package inject

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Directories never worth descending into, regardless of patterns.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".next":        true,
	"dist":         true,
	"build":        true,
}

// DiscoverFiles walks root and returns the source files matching the
// include patterns, minus excludes and gitignored paths. Patterns are
// doublestar globs relative to root. The result is sorted so every run
// processes files in the same order.
func DiscoverFiles(root string, include, exclude []string, logger *slog.Logger) ([]string, error) {
	filter := NewFilter(root, include, exclude, logger)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if filter.ignore != nil && rel != "." && filter.ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !filter.matchesRel(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	logger.Debug("discovered source files", "root", root, "count", len(files))
	return files, nil
}

func loadGitignore(root string, logger *slog.Logger) *gitignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ignore, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		logger.Warn("failed to parse .gitignore, proceeding without it", "path", path, "error", err)
		return nil
	}
	return ignore
}

// Filter answers whether a path belongs to a run, by the same include,
// exclude, and gitignore rules discovery uses. Watch loops build one per
// session to screen events.
type Filter struct {
	root    string
	include []string
	exclude []string
	ignore  *gitignore.GitIgnore
}

// NewFilter compiles the filter for a root. The .gitignore is read once,
// at construction.
func NewFilter(root string, include, exclude []string, logger *slog.Logger) *Filter {
	return &Filter{
		root:    root,
		include: include,
		exclude: exclude,
		ignore:  loadGitignore(root, logger),
	}
}

// Matches reports whether path would be part of a full run over the
// filter's root.
func (f *Filter) Matches(path string) bool {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return false
	}
	return f.matchesRel(filepath.ToSlash(rel))
}

func (f *Filter) matchesRel(rel string) bool {
	if f.ignore != nil && f.ignore.MatchesPath(rel) {
		return false
	}
	return matchesAny(f.include, rel) && !matchesAny(f.exclude, rel)
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
