package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // draft restore (read file)
	PathCheckWrite                      // draft backup and outline export (write file)
)

// File extensions accepted by the file operations.
const (
	ExtBackup  = ".jsonl"
	ExtOutline = ".json"
)

// pathPolicy is the set of directories file operations may touch.
type pathPolicy struct {
	dirs   []string // absolute, symlinks in the entries themselves resolved
	unsafe bool     // any directory; symlink and extension checks still apply
}

func newPathPolicy(cfg *config.Config) (pathPolicy, error) {
	if cfg != nil && cfg.AllowUnsafePaths {
		return pathPolicy{unsafe: true}, nil
	}

	exportsDir, err := DefaultExportsDir()
	if err != nil {
		return pathPolicy{}, err
	}
	candidates := []string{exportsDir}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			// Relative entries are ignored.
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}

	pol := pathPolicy{dirs: make([]string, 0, len(candidates))}
	for _, d := range candidates {
		dir, err := resolveAllowedDir(d)
		if err != nil {
			return pathPolicy{}, err
		}
		pol.dirs = append(pol.dirs, dir)
	}
	return pol, nil
}

func resolveAllowedDir(d string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(d))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
	}
	if !isSymlink(abs) {
		return abs, nil
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
	}
	return resolved, nil
}

// admits reports whether file's parent is exactly one of the allowed dirs.
// Subdirectories are refused so no intermediate component can be swapped
// for a symlink between validation and open.
func (p pathPolicy) admits(absPath string) bool {
	return p.unsafe || slices.Contains(p.dirs, filepath.Dir(absPath))
}

// ValidatePath checks a user-supplied file path before it is opened. The
// path must be free of ".." components, carry ext, sit directly in
// ~/.slate/exports or an allowed_paths entry (unless allow_unsafe_paths is
// set), and neither it nor its parent may be a symlink. In read mode the file
// must exist.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config, ext string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ext {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have %s extension", ext))
	}
	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	pol, err := newPathPolicy(cfg)
	if err != nil {
		return err
	}
	if !pol.admits(absPath) {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", pol.dirs))
	}
	if !pol.unsafe && isSymlink(filepath.Dir(absPath)) {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if isSymlink(absPath) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// DefaultExportsDir returns the default exports directory (~/.slate/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".slate", "exports"), nil
}

// containsTraversal reports whether path has a ".." component under either
// separator; user input may use forward slashes on any platform.
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

var filenameReplacer = strings.NewReplacer("/", "-", "\\", "-", "..", "-")

// SanitizeForFilename makes s safe to embed in a generated file name.
func SanitizeForFilename(s string) string {
	s = filenameReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	var b strings.Builder
	for i, r := range s {
		if r == '-' && i > 0 && s[i-1] == '-' {
			continue
		}
		b.WriteRune(r)
	}

	if out := strings.Trim(b.String(), "-"); out != "" {
		return out
	}
	return "unnamed"
}
