package storage

import (
	"io"
	"path"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
)

// FileInfo describes one regular file under the home root
type FileInfo struct {
	Path     string    `json:"filePath"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// DirectoryInfo describes one directory under the home root
type DirectoryInfo struct {
	Path string `json:"filePath"`
}

// FileList is the result of listing one directory.
// Files and Directories are sorted by Path.
type FileList struct {
	Path        string          `json:"path"`
	Files       []FileInfo      `json:"fileInfo"`
	Directories []DirectoryInfo `json:"directoryInfo"`
}

// FilePaths returns the paths of all files in the listing
func (l *FileList) FilePaths() []string {
	out := make([]string, len(l.Files))
	for i, f := range l.Files {
		out[i] = f.Path
	}
	return out
}

// Resource is an open, read-only handle over one stored file.
// Ownership passes to the caller, who must Close it.
type Resource struct {
	file     billy.File
	path     string
	size     int64
	modified time.Time

	read      byteCounter
	onClose   func(n int64)
	closeOnce sync.Once
	closeErr  error
}

// sniffLen matches mimetype's default read limit
const sniffLen = 3072

var _ io.ReadSeekCloser = (*Resource)(nil)

func (r *Resource) Read(p []byte) (int, error) {
	n, err := r.file.Read(p)
	r.read.add(n)
	return n, err
}

func (r *Resource) Seek(offset int64, whence int) (int64, error) {
	return r.file.Seek(offset, whence)
}

func (r *Resource) ReadAt(p []byte, off int64) (int, error) {
	n, err := r.file.ReadAt(p, off)
	r.read.add(n)
	return n, err
}

// Close releases the file. It is safe to call more than once.
func (r *Resource) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.file.Close()
		if r.onClose != nil {
			r.onClose(r.read.total())
		}
	})
	return r.closeErr
}

// Path returns the root-relative path of the file
func (r *Resource) Path() string { return r.path }

// Name returns the base name of the file
func (r *Resource) Name() string { return path.Base(r.path) }

// Size returns the file size at open time
func (r *Resource) Size() int64 { return r.size }

// Modified returns the modification time at open time
func (r *Resource) Modified() time.Time { return r.modified }

// ContentType sniffs the MIME type from the first bytes of the file.
// It reads through ReadAt and leaves the read offset untouched.
func (r *Resource) ContentType() string {
	mtype, err := mimetype.DetectReader(io.NewSectionReader(r.file, 0, sniffLen))
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
