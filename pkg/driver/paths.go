package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables consulted by the driver.
const (
	EnvPath = "TIDE_PATH"
	EnvHome = "TIDE_HOME"
)

// Home resolves the dependency cache: TIDE_HOME when set, ~/.tide otherwise.
func Home() (string, error) {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve %s %q: %w", EnvHome, home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".tide"), nil
}

// SearchPaths lists the module roots for a run, in priority order: the
// manifest's paths, each locked dependency, then TIDE_PATH entries. Missing
// directories and duplicates are skipped. manifest and lock may be nil.
func SearchPaths(manifest *Manifest, lock *Lockfile, home string) []string {
	seen := make(map[string]struct{})
	var paths []string

	add := func(path string) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		paths = append(paths, abs)
	}

	for _, root := range manifest.SearchRoots() {
		add(root)
	}
	if lock != nil {
		for _, pkg := range lock.Packages {
			add(pkg.Dir(home))
		}
	}
	for _, part := range strings.Split(os.Getenv(EnvPath), string(os.PathListSeparator)) {
		add(strings.TrimSpace(part))
	}
	return paths
}

// SanitizePathSegment maps a version or revision onto a safe directory name.
func SanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
