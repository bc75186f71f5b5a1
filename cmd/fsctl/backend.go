package main

import (
	"context"
	"io"

	"github.com/GriffinCanCode/fileserver/internal/client"
	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// backend is the file surface shared by the HTTP client and local storage
type backend interface {
	CreateDirectory(ctx context.Context, p string) error
	List(ctx context.Context, p string) (*storage.FileList, error)
	Upload(ctx context.Context, p string, r io.Reader) (storage.FileInfo, error)
	Download(ctx context.Context, p string, w io.Writer) (int64, error)
	Delete(ctx context.Context, p string, recursive bool) error
}

var (
	_ backend = (*client.Client)(nil)
	_ backend = localBackend{}
)

// localBackend drives a storage.Service in-process
type localBackend struct {
	svc *storage.Service
}

func (l localBackend) CreateDirectory(ctx context.Context, p string) error {
	return l.svc.CreateDirectory(ctx, p)
}

func (l localBackend) List(ctx context.Context, p string) (*storage.FileList, error) {
	return l.svc.ListDirectory(ctx, p)
}

func (l localBackend) Upload(ctx context.Context, p string, r io.Reader) (storage.FileInfo, error) {
	return l.svc.SaveFile(ctx, p, r)
}

func (l localBackend) Download(ctx context.Context, p string, w io.Writer) (int64, error) {
	res, err := l.svc.LoadFileAsResource(ctx, p)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	return io.Copy(w, res)
}

func (l localBackend) Delete(ctx context.Context, p string, recursive bool) error {
	if recursive {
		return l.svc.DeleteAll(ctx, p)
	}
	return l.svc.Delete(ctx, p)
}
