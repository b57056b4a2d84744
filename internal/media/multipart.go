package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const maxMemory = 8 << 20

// Upload is a parsed multipart request whose files were spooled to temporary paths.
type Upload struct {
	request *http.Request
	files   map[string]string
}

// ParseUpload reads a multipart body of at most maxBytes and writes the first file
// of each named field into dir. Callers must Cleanup when done.
func ParseUpload(w http.ResponseWriter, r *http.Request, dir string, maxBytes int64, fields ...string) (*Upload, error) {
	if maxBytes > 0 && r.ContentLength > maxBytes {
		return nil, ErrUploadTooLarge
	}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrUploadTooLarge
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedUpload, err)
	}

	upload := &Upload{request: r, files: make(map[string]string, len(fields))}
	for _, field := range fields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}
		path, err := spool(dir, headers[0].Filename, func() (io.ReadCloser, error) { return headers[0].Open() })
		if err != nil {
			upload.Cleanup()
			return nil, err
		}
		upload.files[field] = path
	}
	return upload, nil
}

func spool(dir, filename string, open func() (io.ReadCloser, error)) (string, error) {
	src, err := open()
	if err != nil {
		return "", fmt.Errorf("open form file: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	dst, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}

// File returns the temporary path of the named file field, or "" if absent.
func (u *Upload) File(field string) string {
	if u == nil {
		return ""
	}
	return u.files[field]
}

// Value returns the trimmed text value of a form field.
func (u *Upload) Value(field string) string {
	if u == nil || u.request.MultipartForm == nil {
		return ""
	}
	values := u.request.MultipartForm.Value[field]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// Cleanup removes any temporary files the handler did not hand to the media host.
func (u *Upload) Cleanup() {
	if u == nil {
		return
	}
	for _, path := range u.files {
		_ = os.Remove(path)
	}
	if u.request.MultipartForm != nil {
		_ = u.request.MultipartForm.RemoveAll()
	}
}
