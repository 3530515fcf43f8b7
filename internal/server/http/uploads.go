package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/1anshu-stack/backend/internal/common"
)

// maxMemory is how much of a multipart body is kept in memory before
// net/http spills to disk itself.
const maxMemory = 1 << 20

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MultipartLimit)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.Validation("Upload is too large")
		}
		return common.Validation("Invalid multipart form")
	}
	return nil
}

// spoolFile copies the first file of field into the upload dir and returns
// its path, or "" when the field has no file.
func (h *Handler) spoolFile(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return "", nil
	}
	fh := r.MultipartForm.File[field][0]

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", field, err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.CreateTemp(h.opts.UploadDir, field+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("spool %s: %w", field, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("spool %s: %w", field, err)
	}

	return dst.Name(), nil
}
