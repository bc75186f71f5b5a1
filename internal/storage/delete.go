package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

var errDeleteHome = errors.New("the home directory cannot be deleted")

// Delete removes the file or empty directory at p. A symlink is removed
// itself, never its target. Non-empty directories are refused with
// KindDirectoryNotEmpty; use DeleteAll for recursive removal.
func (s *Service) Delete(ctx context.Context, p string) (err error) {
	const op = "delete"
	defer s.track(op, time.Now(), &err)

	loc, err := s.resolve(op, p)
	if err != nil {
		return err
	}
	if loc.IsRoot() {
		return newError(KindPathViolation, op, loc.Rel, errDeleteHome)
	}
	if err := ctx.Err(); err != nil {
		return newError(KindIOFailure, op, loc.Rel, err)
	}

	// Deletion goes through the host path: billy's bound filesystem resolves
	// the final path element, which would remove a link's target.
	info, err := os.Lstat(loc.Abs)
	if err != nil {
		return classify(op, loc.Rel, err)
	}
	if info.IsDir() {
		empty, err := isEmptyDir(loc.Abs)
		if err != nil {
			return classify(op, loc.Rel, err)
		}
		if !empty {
			return newError(KindDirectoryNotEmpty, op, loc.Rel, nil)
		}
	}

	if err := os.Remove(loc.Abs); err != nil {
		return classify(op, loc.Rel, err)
	}

	s.logger.Debug("Entry deleted", zap.String("path", loc.Rel), zap.Bool("dir", info.IsDir()))
	return nil
}

// DeleteAll removes the entry at p and, for a directory, everything below it.
func (s *Service) DeleteAll(ctx context.Context, p string) (err error) {
	const op = "deleteAll"
	defer s.track(op, time.Now(), &err)

	loc, err := s.resolve(op, p)
	if err != nil {
		return err
	}
	if loc.IsRoot() {
		return newError(KindPathViolation, op, loc.Rel, errDeleteHome)
	}
	if err := ctx.Err(); err != nil {
		return newError(KindIOFailure, op, loc.Rel, err)
	}

	if _, err := os.Lstat(loc.Abs); err != nil {
		return classify(op, loc.Rel, err)
	}
	if err := os.RemoveAll(loc.Abs); err != nil {
		return newError(KindIOFailure, op, loc.Rel, err)
	}

	s.logger.Info("Tree deleted", zap.String("path", loc.Rel))
	return nil
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
