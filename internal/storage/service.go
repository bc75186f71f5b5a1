package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
)

// HomeProvider supplies the root directory the service is confined to.
// It is read once, in New.
type HomeProvider interface {
	Home() string
}

// HomeDir is a fixed HomeProvider
type HomeDir string

// Home returns the directory itself
func (h HomeDir) Home() string { return string(h) }

// Observer receives per-operation measurements.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(op string, err error, duration time.Duration)
	ObserveBytes(op string, n int64)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error, time.Duration) {}
func (nopObserver) ObserveBytes(string, int64)                    {}

// Defaults for Options
const (
	DefaultMaxDepth  = 64
	DefaultChunkSize = 32 * 1024
	DefaultDirPerm   = os.FileMode(0o755)
	DefaultFilePerm  = os.FileMode(0o644)
)

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the metrics observer
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithMaxDepth bounds listing depth. Zero disables the guard.
func WithMaxDepth(depth int) Option {
	return func(s *Service) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithChunkSize sets the copy buffer size used by SaveFile
func WithChunkSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithPermissions sets the modes for created directories and files
func WithPermissions(dir, file os.FileMode) Option {
	return func(s *Service) {
		if dir != 0 {
			s.dirPerm = dir
		}
		if file != 0 {
			s.filePerm = file
		}
	}
}

// Service stores files under a single home directory.
// It holds no mutable state after construction and is safe for concurrent use.
type Service struct {
	resolver  *Resolver
	fs        billy.Filesystem
	logger    *zap.Logger
	observer  Observer
	maxDepth  int
	chunkSize int
	dirPerm   os.FileMode
	filePerm  os.FileMode
}

// New creates a Service rooted at home.Home(). The home directory is
// created when missing.
func New(home HomeProvider, opts ...Option) (*Service, error) {
	if home == nil || home.Home() == "" {
		return nil, errors.New("home directory not configured")
	}

	s := &Service{
		logger:    zap.NewNop(),
		observer:  nopObserver{},
		maxDepth:  DefaultMaxDepth,
		chunkSize: DefaultChunkSize,
		dirPerm:   DefaultDirPerm,
		filePerm:  DefaultFilePerm,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(home.Home(), s.dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	resolver, err := NewResolver(home.Home())
	if err != nil {
		return nil, err
	}
	s.resolver = resolver
	s.fs = osfs.New(resolver.Root(), osfs.WithBoundOS())

	s.logger.Info("Storage initialized",
		zap.String("home", resolver.Root()),
		zap.Int("max_depth", s.maxDepth),
		zap.Int("chunk_size", s.chunkSize),
	)
	return s, nil
}

// Root returns the canonical home directory
func (s *Service) Root() string {
	return s.resolver.Root()
}

// Ping checks that the home directory is still reachable
func (s *Service) Ping() error {
	info, err := os.Stat(s.resolver.Root())
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.resolver.Root())
	}
	return nil
}

func (s *Service) resolve(op, p string) (Location, error) {
	loc, err := s.resolver.Resolve(p)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			relabeled := *se
			relabeled.Op = op
			return Location{}, &relabeled
		}
		return Location{}, err
	}
	return loc, nil
}

// track reports the outcome of an operation; call it deferred with a
// pointer to the named error result.
func (s *Service) track(op string, start time.Time, errp *error) {
	s.observer.ObserveOperation(op, *errp, time.Since(start))
}

// classify maps a filesystem error onto a Kind
func classify(op, rel string, err error) *Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(KindNotFound, op, rel, err)
	case errors.Is(err, syscall.ENOTDIR):
		return newError(KindNotADirectory, op, rel, err)
	case errors.Is(err, syscall.EISDIR):
		return newError(KindIsADirectory, op, rel, err)
	case errors.Is(err, syscall.ENOTEMPTY):
		return newError(KindDirectoryNotEmpty, op, rel, err)
	default:
		return newError(KindIOFailure, op, rel, err)
	}
}
