// Package source holds the content being migrated and loads it from local files.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Document is one piece of source content: a WordPress post or page, or a
// local file. Body is raw markup. A Document is not modified after it is
// fetched.
type Document struct {
	ID            string
	Title         string
	Slug          string
	URI           string
	Body          string
	Excerpt       string
	Published     time.Time
	Modified      time.Time
	FeaturedImage *Image
	Categories    []Category
}

// Image describes a featured image on the source site.
type Image struct {
	URL    string
	Alt    string
	Width  int
	Height int
}

type Category struct {
	Name string
	Slug string
}

// Loader converts a local file into a Document with an HTML body.
type Loader interface {
	Load(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions that can be loaded.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// LoaderOptions tune the file loaders.
type LoaderOptions struct {
	// PDFFallbackPdftotext shells out to pdftotext when the pure-Go PDF
	// reader finds no text.
	PDFFallbackPdftotext bool
}

// ForFile returns the loader for a filename with default options.
func ForFile(filename string) (Loader, error) {
	return LoaderOptions{}.ForFile(filename)
}

// ForFile returns the loader for a filename.
func (o LoaderOptions) ForFile(filename string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".csv":
		return &CSVLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".pdf":
		return &PDFLoader{FallbackPdftotext: o.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRun      = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 96 {
		s = strings.TrimRight(s[:96], "-")
	}
	return s
}

// newFileDocument starts a Document named after the file.
func newFileDocument(filename string) *Document {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return &Document{Title: title, Slug: Slugify(title)}
}
