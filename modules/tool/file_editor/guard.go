package fileeditor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/flemzord/toolclaw/internal/security"
)

var (
	errUnsafePath       = errors.New("path not allowed")
	errExtensionBlocked = errors.New("file type not allowed")
)

// guard decides which paths the editor may touch. Relative paths are
// resolved against the first root.
type guard struct {
	roots      []string
	forbidden  []string
	extensions []string
}

func newGuard(roots, forbidden, extensions []string) *guard {
	g := &guard{extensions: extensions}
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		g.roots = append(g.roots, canonical(r))
	}
	// A forbidden prefix that contains a safe root would block the root
	// itself, so it is dropped.
	for _, f := range forbidden {
		f = filepath.Clean(f)
		if !slices.ContainsFunc(g.roots, func(root string) bool { return within(f, root) }) {
			g.forbidden = append(g.forbidden, f)
		}
	}
	return g
}

// canonical returns the absolute, symlink-resolved form of path. A path
// that does not exist yet is resolved through its closest existing parent.
func canonical(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	parent, base := filepath.Split(abs)
	parent = filepath.Clean(parent)
	if parent == abs {
		return abs
	}
	return filepath.Join(canonical(parent), base)
}

// within reports whether path equals dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// resolve turns a user path into a canonical absolute path inside a root.
func (g *guard) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: empty path", errUnsafePath)
	}
	if !filepath.IsAbs(path) && len(g.roots) > 0 {
		path = filepath.Join(g.roots[0], path)
	}
	resolved := canonical(path)

	if err := security.ValidatePath(resolved); err != nil {
		return "", fmt.Errorf("%w: %s", errUnsafePath, path)
	}
	for _, f := range g.forbidden {
		if within(f, resolved) {
			return "", fmt.Errorf("%w: %s", errUnsafePath, path)
		}
	}
	for _, root := range g.roots {
		if within(root, resolved) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("%w: %s is outside the allowed directories", errUnsafePath, path)
}

// checkExtension enforces the extension allow-list. An empty list allows
// everything.
func (g *guard) checkExtension(path string) error {
	if len(g.extensions) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if slices.Contains(g.extensions, ext) {
		return nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Errorf("%w: %s", errExtensionBlocked, ext)
}

// nextBackupPath returns path.backup, or path.backup.N for the first N
// not yet taken.
func nextBackupPath(path string) (string, error) {
	candidate := path + ".backup"
	for n := 1; ; n++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s.backup.%d", path, n)
	}
}
