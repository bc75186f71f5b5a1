package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Path  string `json:"path,omitempty"`
}

// StatusForKind maps a storage error kind to an HTTP status
func StatusForKind(kind storage.Kind) int {
	switch kind {
	case storage.KindPathViolation:
		return http.StatusForbidden
	case storage.KindNotFound:
		return http.StatusNotFound
	case storage.KindNotADirectory, storage.KindIsADirectory:
		return http.StatusBadRequest
	case storage.KindDirectoryNotEmpty:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessages never include host paths or OS error text
var publicMessages = map[storage.Kind]string{
	storage.KindPathViolation:     "path is outside the home directory",
	storage.KindNotFound:          "no such file or directory",
	storage.KindNotADirectory:     "not a directory",
	storage.KindIsADirectory:      "is a directory",
	storage.KindDirectoryNotEmpty: "directory not empty",
	storage.KindIOFailure:         "storage failure",
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	kind := storage.KindOf(err)
	status := StatusForKind(kind)
	h.logFailure(c, status, err)
	_ = c.Error(err)

	resp := ErrorResponse{Error: "internal error"}
	if msg, ok := publicMessages[kind]; ok {
		resp.Error = msg
		resp.Kind = kind.String()
	}
	var se *storage.Error
	if errors.As(err, &se) {
		resp.Path = se.Path
	}

	c.JSON(status, resp)
}
