// Package file implements a local filesystem-backed bundle lister.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Dir lists bundles in a local directory that match a glob pattern.
type Dir struct {
	dir     string
	pattern string
}

// NewDir returns a lister for files in dir whose base name matches pattern
// (filepath.Match syntax, e.g. "*.zip").
func NewDir(dir, pattern string) *Dir { return &Dir{dir: dir, pattern: pattern} }

// List returns the matching regular files sorted by name.
//
// Behavior:
//   - If the context is already canceled, List returns the context error
//     without touching the filesystem.
//   - A directory that does not exist yields no bundles and no error, the
//     same as an empty directory.
//   - A malformed pattern is reported as filepath.ErrBadPattern.
//   - Subdirectories whose names match the pattern are ignored.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if _, err := filepath.Match(d.pattern, "probe"); err != nil {
		return nil, fmt.Errorf("list %s: pattern %q: %w", d.dir, d.pattern, err)
	}

	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(d.pattern, e.Name()); ok {
			out = append(out, filepath.Join(d.dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
