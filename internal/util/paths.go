package util

import (
	"os"
	"path/filepath"
)

// CacheDir returns the effective devflow cache root for a repository:
// $DWF_CACHE_ROOT if set, else repoRoot/.cache/devflow, per spec.md §3/§9.
func CacheDir(repoRoot string) string {
	if override := os.Getenv("DWF_CACHE_ROOT"); override != "" {
		return override
	}
	return filepath.Join(repoRoot, ".cache", "devflow")
}
