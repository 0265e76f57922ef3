package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/source"
)

type convertResponse struct {
	Strategy convert.Strategy `json:"strategy"`
	Title    string           `json:"title,omitempty"`
	Slug     string           `json:"slug,omitempty"`
	Result   any              `json:"result"`
}

// handleConvert converts an HTML request body, or a multipart "file" upload
// in any loadable format, with the strategy named by ?strategy=.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	strategy, err := convert.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Limit total request size; multipart gets 1MB extra for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes+1024*1024)

	var doc *source.Document
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		doc, err = s.loadUpload(r)
	} else {
		doc, err = s.readBody(r)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		var tooLarge *bodyTooLargeError
		switch {
		case errors.As(err, &maxErr), errors.As(err, &tooLarge):
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxBodyBytes), http.StatusRequestEntityTooLarge)
		default:
			jsonError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	result, err := s.conv.Convert(strategy, doc.Body)
	if err != nil {
		s.log.Error("conversion failed", "strategy", strategy, "error", err)
		jsonError(w, "conversion failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Strategy: strategy,
		Title:    doc.Title,
		Slug:     doc.Slug,
		Result:   result,
	})
}

type bodyTooLargeError struct{}

func (*bodyTooLargeError) Error() string { return "body too large" }

func (s *Server) readBody(r *http.Request) (*source.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxBodyBytes {
		return nil, &bodyTooLargeError{}
	}
	return &source.Document{Body: string(data)}, nil
}

func (s *Server) loadUpload(r *http.Request) (*source.Document, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	if header.Size > s.cfg.MaxBodyBytes {
		return nil, &bodyTooLargeError{}
	}
	loader, err := s.loaders.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := loader.Load(file, filename)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
