package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateDirectory handles POST /services/files/createdir/*path
func (h *Handlers) CreateDirectory(c *gin.Context) {
	p := pathParam(c)

	if err := h.store.CreateDirectory(c.Request.Context(), p); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"created": true,
		"path":    p,
	})
}

// Upload handles POST /services/files/upload/*path. The body is either a
// multipart form with a "file" part or the raw file content. When the path
// ends in "/" the multipart file name is appended to it.
func (h *Handlers) Upload(c *gin.Context) {
	p := pathParam(c)

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	body := io.Reader(c.Request.Body)
	if isMultipart(c.Request) {
		part, name, err := filePart(c.Request)
		if err != nil {
			h.writeUploadError(c, err)
			return
		}
		defer part.Close()

		if p == "" || strings.HasSuffix(p, "/") {
			if name == "" {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file name required"})
				return
			}
			p = path.Join(p, name)
		}
		body = part
	}

	if p == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "target path required"})
		return
	}

	info, err := h.store.SaveFile(c.Request.Context(), p, body)
	if err != nil {
		h.writeUploadError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// Download handles GET /services/files/download/*path. Range and
// conditional requests are served by http.ServeContent.
func (h *Handlers) Download(c *gin.Context) {
	res, err := h.store.LoadFileAsResource(c.Request.Context(), pathParam(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer res.Close()

	c.Header("Content-Disposition", contentDisposition(res.Name()))
	c.Header("Content-Type", res.ContentType())
	http.ServeContent(c.Writer, c.Request, res.Name(), res.Modified(), res)
}

// List handles GET /services/files/list/*path
func (h *Handlers) List(c *gin.Context) {
	list, err := h.store.ListDirectory(c.Request.Context(), pathParam(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Delete handles DELETE /services/files/delete/*path[?recursive=true]
func (h *Handlers) Delete(c *gin.Context) {
	p := pathParam(c)

	recursive, err := parseBool(c.Query("recursive"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid recursive flag"})
		return
	}

	if recursive {
		err = h.store.DeleteAll(c.Request.Context(), p)
	} else {
		err = h.store.Delete(c.Request.Context(), p)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": true,
		"path":    p,
	})
}

func (h *Handlers) writeUploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
		})
	case errors.Is(err, errNoFilePart), errors.Is(err, errMalformedForm):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.writeError(c, err)
	}
}

var (
	errNoFilePart    = errors.New("multipart form has no \"file\" part")
	errMalformedForm = errors.New("malformed multipart form")
)

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// filePart streams the "file" part without buffering the form to disk
func filePart(r *http.Request) (io.ReadCloser, string, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, "", errMalformedForm
	}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil, "", errNoFilePart
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("%w: %v", errMalformedForm, err)
		}
		if part.FormName() == "file" {
			name := part.FileName()
			if name != "" {
				name = path.Base(name)
			}
			return part, name, nil
		}
		part.Close()
	}
}

func contentDisposition(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return fmt.Sprintf(`attachment; filename="%s"`, escaped)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func (h *Handlers) logFailure(c *gin.Context, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}
	h.logger.Error("Storage operation failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
}
