package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

var errDepthExceeded = errors.New("directory tree exceeds maximum depth")

// CreateDirectory creates the directory at p along with any missing parents.
// An existing directory is not an error.
func (s *Service) CreateDirectory(ctx context.Context, p string) (err error) {
	const op = "createDirectory"
	defer s.track(op, time.Now(), &err)

	loc, err := s.resolve(op, p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return newError(KindIOFailure, op, loc.Rel, err)
	}

	if err := s.mkdirAll(op, loc.Rel); err != nil {
		return err
	}

	s.logger.Debug("Directory created", zap.String("path", loc.Rel))
	return nil
}

func (s *Service) mkdirAll(op, rel string) error {
	if rel == "." {
		return nil
	}

	info, err := s.fs.Stat(rel)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil
		}
		return newError(KindNotADirectory, op, rel, errors.New("a file already exists at this path"))
	case !errors.Is(err, fs.ErrNotExist):
		return classify(op, rel, err)
	}

	if err := s.fs.MkdirAll(rel, s.dirPerm); err != nil {
		// MkdirAll reports EEXIST or ENOTDIR when an ancestor is a file
		e := classify(op, rel, err)
		if errors.Is(err, fs.ErrExist) {
			e.Kind = KindNotADirectory
		}
		return e
	}
	return nil
}

// ListDirectory walks the directory at p and reports every regular file and
// subdirectory beneath it. Symlinks are neither followed nor reported. The
// first read error aborts the listing.
//
// A listing that runs concurrently with writes to the same subtree may or may
// not include entries created or removed during the walk.
func (s *Service) ListDirectory(ctx context.Context, p string) (_ *FileList, err error) {
	const op = "listDirectory"
	defer s.track(op, time.Now(), &err)

	loc, err := s.resolve(op, p)
	if err != nil {
		return nil, err
	}

	info, err := s.fs.Stat(loc.Rel)
	if err != nil {
		return nil, classify(op, loc.Rel, err)
	}
	if !info.IsDir() {
		return nil, newError(KindNotADirectory, op, loc.Rel, nil)
	}

	// The requested directory may itself be a link to a directory inside
	// home; fastwalk does not descend through a symlinked root.
	walkRoot, err := filepath.EvalSymlinks(loc.Abs)
	if err != nil {
		return nil, classify(op, loc.Rel, err)
	}

	list := &FileList{
		Path:        loc.Rel,
		Files:       []FileInfo{},
		Directories: []DirectoryInfo{},
	}
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			return err
		}
		if p == walkRoot {
			return nil
		}

		sub, err := filepath.Rel(walkRoot, p)
		if err != nil {
			return err
		}
		if s.maxDepth > 0 && strings.Count(sub, string(filepath.Separator))+1 > s.maxDepth {
			return fmt.Errorf("%s: %w", filepath.ToSlash(sub), errDepthExceeded)
		}
		rel := path.Join(loc.Rel, filepath.ToSlash(sub))

		switch {
		case d.IsDir():
			mu.Lock()
			list.Directories = append(list.Directories, DirectoryInfo{Path: rel})
			mu.Unlock()
		case d.Type().IsRegular():
			if isPartial(d.Name()) {
				return nil
			}
			fi, err := d.Info()
			if errors.Is(err, fs.ErrNotExist) {
				// removed after being read from its directory
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			list.Files = append(list.Files, FileInfo{Path: rel, Size: fi.Size(), Modified: fi.ModTime()})
			mu.Unlock()
		}
		return nil
	})
	if walkErr != nil {
		return nil, newError(KindIOFailure, op, loc.Rel, walkErr)
	}

	sort.Slice(list.Files, func(i, j int) bool { return list.Files[i].Path < list.Files[j].Path })
	sort.Slice(list.Directories, func(i, j int) bool { return list.Directories[i].Path < list.Directories[j].Path })

	s.logger.Debug("Directory listed",
		zap.String("path", loc.Rel),
		zap.Int("files", len(list.Files)),
		zap.Int("directories", len(list.Directories)),
	)
	return list, nil
}
