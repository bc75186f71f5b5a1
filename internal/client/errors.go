package client

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// errorBody mirrors the server's error response
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Path  string `json:"path"`
}

// StatusError is a non-2xx response that carries no storage error kind
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// responseError converts a failed response into an error. Responses that
// name a storage kind become *storage.Error so callers can use errors.Is
// against the storage sentinels.
func responseError(op string, resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	body, _ := resp.Error().(*errorBody)
	return decodeError(op, resp.StatusCode(), body)
}

// rawResponseError is responseError for unparsed (streamed) responses
func rawResponseError(op string, resp *resty.Response) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	raw := resp.RawBody()
	if raw == nil {
		return decodeError(op, resp.StatusCode(), nil)
	}
	data, _ := io.ReadAll(io.LimitReader(raw, 64*1024))

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return decodeError(op, resp.StatusCode(), nil)
	}
	return decodeError(op, resp.StatusCode(), &body)
}

func decodeError(op string, code int, body *errorBody) error {
	status := &StatusError{Code: code}
	if body == nil {
		return status
	}
	status.Message = body.Error

	kind := storage.ParseKind(body.Kind)
	if kind == storage.KindUnknown {
		return status
	}
	return &storage.Error{Kind: kind, Op: op, Path: body.Path, Err: status}
}
