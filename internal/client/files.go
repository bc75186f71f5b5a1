package client

import (
	"context"
	"fmt"
	"io"

	"github.com/GriffinCanCode/fileserver/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// CreateDirectory creates p and any missing parents on the server
func (c *Client) CreateDirectory(ctx context.Context, p string) error {
	return c.breaker.Execute(func() error {
		req, err := c.request(ctx, c.api)
		if err != nil {
			return err
		}
		resp, err := req.Post(filesURL("createdir", p))
		if err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		return responseError("createDirectory", resp)
	})
}

// List returns the immediate children of directory p
func (c *Client) List(ctx context.Context, p string) (*storage.FileList, error) {
	return resilience.Do(c.breaker, func() (*storage.FileList, error) {
		req, err := c.request(ctx, c.api)
		if err != nil {
			return nil, err
		}
		var list storage.FileList
		resp, err := req.SetResult(&list).Get(filesURL("list", p))
		if err != nil {
			return nil, fmt.Errorf("list directory: %w", err)
		}
		if err := responseError("listDirectory", resp); err != nil {
			return nil, err
		}
		return &list, nil
	})
}

// Upload stores the contents of r at p. The body is streamed once and
// is not retried.
func (c *Client) Upload(ctx context.Context, p string, r io.Reader) (storage.FileInfo, error) {
	return resilience.Do(c.breaker, func() (storage.FileInfo, error) {
		var info storage.FileInfo
		req, err := c.request(ctx, c.once)
		if err != nil {
			return info, err
		}
		resp, err := req.
			SetHeader("Content-Type", "application/octet-stream").
			SetBody(r).
			SetResult(&info).
			Post(filesURL("upload", p))
		if err != nil {
			return info, fmt.Errorf("upload: %w", err)
		}
		if err := responseError("saveFile", resp); err != nil {
			return info, err
		}
		return info, nil
	})
}

// Download copies the file at p into w and returns the bytes written
func (c *Client) Download(ctx context.Context, p string, w io.Writer) (int64, error) {
	return resilience.Do(c.breaker, func() (int64, error) {
		req, err := c.request(ctx, c.api)
		if err != nil {
			return 0, err
		}
		resp, err := req.SetDoNotParseResponse(true).Get(filesURL("download", p))
		if err != nil {
			return 0, fmt.Errorf("download: %w", err)
		}
		body := resp.RawBody()
		defer closeBody(body)

		if err := rawResponseError("loadFileAsResource", resp); err != nil {
			return 0, err
		}
		n, err := io.Copy(w, body)
		if err != nil {
			return n, fmt.Errorf("download: %w", err)
		}
		return n, nil
	})
}

// Delete removes the file or empty directory at p. With recursive set a
// directory is removed together with its contents. It is never retried.
func (c *Client) Delete(ctx context.Context, p string, recursive bool) error {
	return c.breaker.Execute(func() error {
		req, err := c.request(ctx, c.once)
		if err != nil {
			return err
		}
		if recursive {
			req.SetQueryParam("recursive", "true")
		}
		resp, err := req.Delete(filesURL("delete", p))
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		return responseError("delete", resp)
	})
}

// Health reports whether the server and its storage are reachable
func (c *Client) Health(ctx context.Context) error {
	req, err := c.request(ctx, c.api)
	if err != nil {
		return err
	}
	resp, err := req.Get("/health")
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return responseError("health", resp)
}

func closeBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
