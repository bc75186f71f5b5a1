package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closeTracker records whether Close was called on the input stream
type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func loadAll(t *testing.T, svc *Service, rel string) []byte {
	t.Helper()
	res, err := svc.LoadFileAsResource(context.Background(), rel)
	require.NoError(t, err)
	defer res.Close()

	data, err := io.ReadAll(res)
	require.NoError(t, err)
	return data
}

func randomBytes(n int) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(42)).Read(buf)
	return buf
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "empty", content: []byte{}},
		{name: "small", content: []byte("Hello, World!")},
		{name: "exactly one chunk", content: randomBytes(DefaultChunkSize)},
		{name: "multi megabyte", content: randomBytes(5*1024*1024 + 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)

			info, err := svc.SaveFile(context.Background(), "data/file.bin", bytes.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, "data/file.bin", info.Path)
			assert.Equal(t, int64(len(tt.content)), info.Size)

			got := loadAll(t, svc, "data/file.bin")
			assert.True(t, bytes.Equal(tt.content, got), "content mismatch: want %d bytes, got %d", len(tt.content), len(got))
		})
	}
}

func TestSaveFile(t *testing.T) {
	ctx := context.Background()

	t.Run("small chunk size", func(t *testing.T) {
		svc := newTestService(t, WithChunkSize(7))
		content := strings.Repeat("0123456789", 100)

		_, err := svc.SaveFile(ctx, "chunked.txt", strings.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, content, string(loadAll(t, svc, "chunked.txt")))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.SaveFile(ctx, "f.txt", strings.NewReader("a much longer first version"))
		require.NoError(t, err)
		_, err = svc.SaveFile(ctx, "f.txt", strings.NewReader("short"))
		require.NoError(t, err)

		assert.Equal(t, "short", string(loadAll(t, svc, "f.txt")))
	})

	t.Run("does not close input", func(t *testing.T) {
		svc := newTestService(t)
		in := &closeTracker{Reader: strings.NewReader("data")}

		_, err := svc.SaveFile(ctx, "f.txt", in)
		require.NoError(t, err)
		assert.False(t, in.closed)
	})

	t.Run("traversal leaves target untouched", func(t *testing.T) {
		base := t.TempDir()
		home := filepath.Join(base, "home")
		victim := filepath.Join(base, "passwd")
		require.NoError(t, os.WriteFile(victim, []byte("original"), 0o644))

		svc, err := New(HomeDir(home))
		require.NoError(t, err)

		for _, p := range []string{"../passwd", "../../etc/passwd", "a/../../passwd"} {
			_, err := svc.SaveFile(ctx, p, strings.NewReader("pwned"))
			assert.ErrorIs(t, err, ErrPathViolation, p)
		}

		data, err := os.ReadFile(victim)
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
	})

	t.Run("failed copy leaves nothing behind", func(t *testing.T) {
		svc := newTestService(t)
		in := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("connection reset")))

		_, err := svc.SaveFile(ctx, "dir/broken.txt", in)
		require.ErrorIs(t, err, ErrIOFailure)

		entries, err := os.ReadDir(filepath.Join(svc.Root(), "dir"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("failed overwrite keeps previous content", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.SaveFile(ctx, "keep.txt", strings.NewReader("previous"))
		require.NoError(t, err)

		_, err = svc.SaveFile(ctx, "keep.txt", iotest.ErrReader(errors.New("boom")))
		require.ErrorIs(t, err, ErrIOFailure)

		assert.Equal(t, "previous", string(loadAll(t, svc, "keep.txt")))
	})

	t.Run("canceled context", func(t *testing.T) {
		svc := newTestService(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.SaveFile(ctx, "f.txt", strings.NewReader("data"))
		require.ErrorIs(t, err, ErrIOFailure)
		assert.ErrorIs(t, err, context.Canceled)

		_, statErr := os.Stat(filepath.Join(svc.Root(), "f.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("directory in the way", func(t *testing.T) {
		svc := newTestService(t)
		require.NoError(t, svc.CreateDirectory(ctx, "dir"))

		_, err := svc.SaveFile(ctx, "dir", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrIOFailure)
	})

	t.Run("home root", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.SaveFile(ctx, "", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrIOFailure)
	})

	t.Run("file as parent", func(t *testing.T) {
		svc := newTestService(t)
		writeFile(t, svc, "f.txt", "x")

		_, err := svc.SaveFile(ctx, "f.txt/child.txt", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrIOFailure)
	})
}

func TestLoadFileAsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("metadata", func(t *testing.T) {
		svc := newTestService(t)
		writeFile(t, svc, "docs/readme.txt", "Hello, World!")

		res, err := svc.LoadFileAsResource(ctx, "docs/readme.txt")
		require.NoError(t, err)
		defer res.Close()

		assert.Equal(t, "docs/readme.txt", res.Path())
		assert.Equal(t, "readme.txt", res.Name())
		assert.Equal(t, int64(13), res.Size())
		assert.False(t, res.Modified().IsZero())
		assert.Equal(t, "text/plain; charset=utf-8", res.ContentType())
	})

	t.Run("content type sniffing keeps offset", func(t *testing.T) {
		svc := newTestService(t)
		writeFile(t, svc, "f.txt", "abcdef")

		res, err := svc.LoadFileAsResource(ctx, "f.txt")
		require.NoError(t, err)
		defer res.Close()

		head := make([]byte, 2)
		_, err = io.ReadFull(res, head)
		require.NoError(t, err)
		_ = res.ContentType()

		rest, err := io.ReadAll(res)
		require.NoError(t, err)
		assert.Equal(t, "ab", string(head))
		assert.Equal(t, "cdef", string(rest))
	})

	t.Run("close is idempotent", func(t *testing.T) {
		svc := newTestService(t)
		writeFile(t, svc, "f.txt", "x")

		res, err := svc.LoadFileAsResource(ctx, "f.txt")
		require.NoError(t, err)
		require.NoError(t, res.Close())
		assert.NoError(t, res.Close())
	})

	t.Run("missing", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.LoadFileAsResource(ctx, "nonexistent.txt")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		svc := newTestService(t)
		require.NoError(t, svc.CreateDirectory(ctx, "dir"))

		_, err := svc.LoadFileAsResource(ctx, "dir")
		assert.ErrorIs(t, err, ErrIsADirectory)

		_, err = svc.LoadFileAsResource(ctx, "")
		assert.ErrorIs(t, err, ErrIsADirectory)
	})

	t.Run("traversal", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.LoadFileAsResource(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrPathViolation)
	})
}

func TestIsPartial(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{partialName("a.txt"), true},
		{path.Base(partialName("dir/.hidden")), true},
		{".draft.part-2", false},
		{".x.part-123", false},
		{"a.txt.part-0b3e4c1e-8f1a-4d2b-9c3d-2e1f0a9b8c7d", false},
		{".part-0b3e4c1e-8f1a-4d2b-9c3d-2e1f0a9b8c7d", false},
		{"plain.txt", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPartial(tt.name), tt.name)
	}
}
