// Package resolver turns a root path into the ordered list of source
// files eligible for analysis.
package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/propscope/pkg/parser"
)

// Options configures Resolve.
type Options struct {
	// Extensions is the allowed extension set (with leading dot).
	// Empty means parser.SupportedExtensions().
	Extensions []string
	// Exclude holds doublestar glob patterns matched against the path
	// relative to the root. A matching directory is skipped entirely.
	Exclude []string
	// MaxDepth limits directory recursion below the root. 0 means
	// unlimited; 1 means only direct children.
	MaxDepth int
	// RespectBoundaries enables project-marker detection: files outside
	// the project root nearest to the search root are dropped. Without
	// markers this degrades to "must be a descendant of the root".
	RespectBoundaries bool
}

// DefaultOptions excludes the usual dependency, build, and VCS trees.
func DefaultOptions() Options {
	return Options{
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			"out/**",
		},
	}
}

// Resolve returns the sorted absolute paths of analyzable files under
// rootPath. A root that is itself an allowed file yields a single-element
// list. A root that does not exist yields an empty list: "nothing to
// analyze" is a valid outcome, not an error.
func Resolve(rootPath string, opts Options) ([]string, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = parser.SupportedExtensions()
	}

	if info.Mode().IsRegular() {
		if !hasAllowedExtension(absRoot, exts) {
			return nil, nil
		}
		return []string{absRoot}, nil
	}
	if !info.IsDir() {
		return nil, nil
	}

	boundary := absRoot
	if opts.RespectBoundaries {
		boundary = findProjectBoundary(absRoot)
		if resolved, evalErr := filepath.EvalSymlinks(boundary); evalErr == nil {
			boundary = resolved
		}
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		relPath, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range opts.Exclude {
			matched, _ := doublestar.PathMatch(pattern, relPath)
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if opts.MaxDepth > 0 && relPath != "." && pathDepth(relPath) >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasAllowedExtension(path, exts) {
			return nil
		}
		if opts.RespectBoundaries {
			real := path
			if resolved, evalErr := filepath.EvalSymlinks(path); evalErr == nil {
				real = resolved
			}
			if !isDescendant(boundary, real) {
				return nil
			}
		}

		// Re-stat before trusting the entry: a directory masquerading
		// under a file-like name must be skipped silently.
		st, statErr := os.Stat(path)
		if statErr != nil || !st.Mode().IsRegular() {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func hasAllowedExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range exts {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func pathDepth(relPath string) int {
	return strings.Count(relPath, "/") + 1
}

func isDescendant(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
