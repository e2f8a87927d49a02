package resolver

import (
	"os"
	"path/filepath"
)

// projectMarkers are the files whose presence marks a project root,
// checked in priority order.
var projectMarkers = []string{
	"package.json",
	"tsconfig.json",
	"pnpm-workspace.yaml",
	".git",
}

// findProjectBoundary walks upward from startDir looking for a project
// marker and returns the marker directory nearest to startDir. When no
// marker exists on the way to the filesystem root, startDir itself is
// the boundary.
func findProjectBoundary(startDir string) string {
	dir := startDir
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}
