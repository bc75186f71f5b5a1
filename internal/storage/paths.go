package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Location is a resolved, root-confined path
type Location struct {
	// Rel is slash-separated and relative to the root; "." names the root itself.
	Rel string
	// Abs is the host path.
	Abs string
}

// IsRoot reports whether the location is the home root itself
func (l Location) IsRoot() bool {
	return l.Rel == "."
}

// Resolver confines caller paths to a single root directory
type Resolver struct {
	root string
}

// NewResolver creates a resolver for root. Root must exist; it is made
// absolute and has its symlinks evaluated so later containment checks
// compare like with like.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root %q: %w", root, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("invalid root %q: %w", root, err)
	}
	info, err := os.Stat(real)
	if err != nil {
		return nil, fmt.Errorf("invalid root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid root %q: not a directory", root)
	}
	return &Resolver{root: real}, nil
}

// Root returns the canonical root path
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a caller path onto the root. The path is always treated as
// relative, even with a leading slash. Results that leave the root, lexically
// or through a symlink on an existing ancestor, fail with KindPathViolation.
func (r *Resolver) Resolve(p string) (Location, error) {
	if strings.ContainsRune(p, 0) {
		return Location{}, newError(KindPathViolation, "resolve", p, errors.New("path contains NUL byte"))
	}

	joined := filepath.Join(r.root, filepath.FromSlash(p))
	rel, ok := r.within(joined)
	if !ok {
		return Location{}, newError(KindPathViolation, "resolve", p, errors.New("path escapes home"))
	}

	real, err := realpath(joined)
	if err != nil {
		return Location{}, newError(KindIOFailure, "resolve", p, err)
	}
	if _, ok := r.within(real); !ok {
		return Location{}, newError(KindPathViolation, "resolve", p, errors.New("symlink escapes home"))
	}

	return Location{Rel: filepath.ToSlash(rel), Abs: joined}, nil
}

// Rel converts a host path under the root back into a slash-separated
// root-relative path.
func (r *Resolver) Rel(abs string) (string, error) {
	rel, ok := r.within(abs)
	if !ok {
		return "", fmt.Errorf("%s is outside %s", abs, r.root)
	}
	return filepath.ToSlash(rel), nil
}

func (r *Resolver) within(abs string) (string, bool) {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

// realpath evaluates symlinks on the deepest existing ancestor of p and
// re-appends the components that do not exist yet.
func realpath(p string) (string, error) {
	existing := p
	var missing []string
	for {
		real, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{real}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return p, nil
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}
}
