package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/binkread/internal/pipeline"
	"github.com/dgallion1/binkread/internal/summarize"
)

// uploadError is a client-facing failure with its HTTP status.
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string { return e.message }

// readUpload pulls one file out of a multipart request and checks it
// against the upload limits.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, error) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, s.tooLarge()
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return "", nil, &uploadError{http.StatusBadRequest, "No file selected"}
		}
		return "", nil, &uploadError{http.StatusBadRequest, "Invalid upload: " + err.Error()}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, &uploadError{http.StatusBadRequest, "No file selected"}
	}
	defer file.Close()

	if header.Filename == "" {
		return "", nil, &uploadError{http.StatusBadRequest, "No file selected"}
	}
	filename := sanitizeFilename(header.Filename)
	if err := s.summarizer.CheckFilename(filename); err != nil {
		return "", nil, &uploadError{http.StatusBadRequest, "Invalid file type. Allowed types: " + strings.Join(s.cfg.AllowedExtensions, ", ")}
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", nil, &uploadError{http.StatusInternalServerError, "Failed to read file"}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return "", nil, s.tooLarge()
	}
	if len(data) == 0 {
		return "", nil, &uploadError{http.StatusBadRequest, "Empty file uploaded"}
	}
	return filename, data, nil
}

func (s *Server) tooLarge() *uploadError {
	return &uploadError{
		status:  http.StatusRequestEntityTooLarge,
		message: fmt.Sprintf("File too large. Maximum size is %s.", formatBytes(s.cfg.MaxUploadBytes)),
	}
}

// classify maps a document error to a status and a user-facing message.
func classify(err error) (int, string) {
	var ue *uploadError
	switch {
	case errors.As(err, &ue):
		return ue.status, ue.message
	case errors.Is(err, pipeline.ErrUnsupportedType):
		return http.StatusBadRequest, "Invalid file type"
	case errors.Is(err, summarize.ErrEmptyInput):
		return http.StatusUnprocessableEntity, "No text found in document"
	case errors.Is(err, summarize.ErrEmptySummary):
		return http.StatusUnprocessableEntity, "Unable to generate summary"
	case errors.Is(err, pipeline.ErrQueueFull):
		return http.StatusServiceUnavailable, "Server busy, try again later"
	default:
		return http.StatusInternalServerError, "An error occurred while processing the file"
	}
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = name[strings.LastIndexAny(name, `/\`)+1:]
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
