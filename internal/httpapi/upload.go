package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/bugskoyan/spotify/internal/forms"
)

// maxMemory is how much of a multipart body is buffered before spilling to
// temporary files.
const maxMemory = 8 << 20

type upload struct {
	file   multipart.File
	header *multipart.FileHeader
	form   *multipart.Form
}

// File converts the upload into form input; nil when no file was sent.
func (u *upload) File() *forms.File {
	if u.file == nil {
		return nil
	}
	return &forms.File{Name: u.header.Filename, Size: u.header.Size, Content: u.file}
}

func (u *upload) Close() {
	if u.file != nil {
		_ = u.file.Close()
	}
	if u.form != nil {
		_ = u.form.RemoveAll()
	}
}

// parseUpload reads a bounded multipart body and opens the named file field.
// A missing file is not an error; the form layer reports it.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, field string) (*upload, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart body: %w", err)
		}
	}

	u := &upload{form: r.MultipartForm}
	file, header, err := r.FormFile(field)
	switch {
	case err == nil:
		u.file, u.header = file, header
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		u.Close()
		return nil, http.StatusBadRequest, fmt.Errorf("read %s: %w", field, err)
	}
	return u, http.StatusOK, nil
}
