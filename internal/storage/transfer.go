package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const partialMarker = ".part-"

var errReservedName = errors.New("name is reserved for in-flight uploads")

// isPartial reports whether name has the exact shape partialName produces:
// ".<base>.part-<uuid>".
func isPartial(name string) bool {
	i := strings.LastIndex(name, partialMarker)
	if i < 2 || name[0] != '.' {
		return false
	}
	suffix := name[i+len(partialMarker):]
	if len(suffix) != 36 {
		return false
	}
	_, err := uuid.Parse(suffix)
	return err == nil
}

func partialName(rel string) string {
	return path.Join(path.Dir(rel), "."+path.Base(rel)+partialMarker+uuid.NewString())
}

// SaveFile streams r into the file at p, replacing any existing file.
// Missing parent directories are created. The content is written to a
// temporary sibling and renamed into place, so readers never see a partial
// file. r is read to EOF but not closed.
func (s *Service) SaveFile(ctx context.Context, p string, r io.Reader) (_ FileInfo, err error) {
	const op = "saveFile"
	defer s.track(op, time.Now(), &err)

	loc, err := s.resolve(op, p)
	if err != nil {
		return FileInfo{}, err
	}
	if loc.IsRoot() {
		return FileInfo{}, newError(KindIOFailure, op, loc.Rel, syscall.EISDIR)
	}
	if isPartial(path.Base(loc.Rel)) {
		return FileInfo{}, newError(KindPathViolation, op, loc.Rel, errReservedName)
	}

	if info, err := s.fs.Stat(loc.Rel); err == nil && info.IsDir() {
		return FileInfo{}, newError(KindIOFailure, op, loc.Rel, syscall.EISDIR)
	}
	if err := s.mkdirAll(op, path.Dir(loc.Rel)); err != nil {
		return FileInfo{}, asIOFailure(err)
	}

	tmp := partialName(loc.Rel)
	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.filePerm)
	if err != nil {
		return FileInfo{}, newError(KindIOFailure, op, loc.Rel, err)
	}

	n, copyErr := s.copy(ctx, f, r)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil {
		copyErr = s.fs.Rename(tmp, loc.Rel)
	}
	if copyErr != nil {
		s.discard(tmp)
		return FileInfo{}, newError(KindIOFailure, op, loc.Rel, copyErr)
	}

	modified := time.Now()
	if info, err := s.fs.Stat(loc.Rel); err == nil {
		modified = info.ModTime()
	}

	s.observer.ObserveBytes(op, n)
	s.logger.Debug("File saved", zap.String("path", loc.Rel), zap.Int64("bytes", n))
	return FileInfo{Path: loc.Rel, Size: n, Modified: modified}, nil
}

// copy moves src into dst one chunk at a time, checking ctx between chunks
func (s *Service) copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, s.chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func (s *Service) discard(tmp string) {
	if err := s.fs.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove partial upload", zap.String("path", tmp), zap.Error(err))
	}
}

func asIOFailure(err error) error {
	var se *Error
	if errors.As(err, &se) && se.Kind != KindIOFailure {
		return newError(KindIOFailure, se.Op, se.Path, err)
	}
	return err
}

// LoadFileAsResource opens the file at p for reading. Nothing is read up
// front; the caller owns the returned Resource and must close it.
func (s *Service) LoadFileAsResource(ctx context.Context, p string) (_ *Resource, err error) {
	const op = "loadFileAsResource"
	defer s.track(op, time.Now(), &err)

	loc, err := s.resolve(op, p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindIOFailure, op, loc.Rel, err)
	}

	info, err := s.fs.Stat(loc.Rel)
	if err != nil {
		return nil, classify(op, loc.Rel, err)
	}
	if info.IsDir() {
		return nil, newError(KindIsADirectory, op, loc.Rel, nil)
	}
	if !info.Mode().IsRegular() {
		return nil, newError(KindNotFound, op, loc.Rel, errors.New("not a regular file"))
	}

	f, err := s.fs.Open(loc.Rel)
	if err != nil {
		return nil, classify(op, loc.Rel, err)
	}

	res := &Resource{
		file:     f,
		path:     loc.Rel,
		size:     info.Size(),
		modified: info.ModTime(),
	}
	res.onClose = func(n int64) { s.observer.ObserveBytes(op, n) }
	return res, nil
}

// byteCounter tallies bytes read through a Resource
type byteCounter struct {
	mu sync.Mutex
	n  int64
}

func (c *byteCounter) add(n int) {
	c.mu.Lock()
	c.n += int64(n)
	c.mu.Unlock()
}

func (c *byteCounter) total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
