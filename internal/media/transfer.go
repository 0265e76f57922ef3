// Package media copies images from the source site into the content store.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/wpmigrate/internal/payload"
	"github.com/dgallion1/wpmigrate/internal/source"
)

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 25 << 20

// Uploader is the store side of a transfer.
type Uploader interface {
	UploadMedia(ctx context.Context, collection string, up payload.Upload) (*payload.Doc, error)
}

// Transfer downloads source images and uploads them to a media collection.
type Transfer struct {
	store      Uploader
	collection string
	httpClient *http.Client
	maxBytes   int64
}

func NewTransfer(store Uploader, collection string, timeout time.Duration) *Transfer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Transfer{
		store:      store,
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   DefaultMaxBytes,
	}
}

// Copy downloads img and uploads it. An empty alt text falls back to
// fallbackAlt.
func (t *Transfer) Copy(ctx context.Context, img source.Image, fallbackAlt string) (*payload.Doc, error) {
	up, err := t.download(ctx, img.URL)
	if err != nil {
		return nil, err
	}
	up.Alt = img.Alt
	if up.Alt == "" {
		up.Alt = fallbackAlt
	}
	doc, err := t.store.UploadMedia(ctx, t.collection, *up)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", up.Filename, err)
	}
	return doc, nil
}

func (t *Transfer) download(ctx context.Context, rawURL string) (*payload.Upload, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(data)) > t.maxBytes {
		return nil, fmt.Errorf("download %s: larger than %d bytes", rawURL, t.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download %s: empty body", rawURL)
	}

	filename := FilenameFromURL(rawURL)
	contentType := DetectContentType(resp.Header.Get("Content-Type"), filename, data)
	if path.Ext(filename) == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			filename += exts[0]
		}
	}
	return &payload.Upload{Filename: filename, ContentType: contentType, Data: data}, nil
}

// FilenameFromURL returns the last path segment of rawURL, or a generated
// name when the URL has none.
func FilenameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if unescaped, err := url.PathUnescape(base); err == nil {
			base = unescaped
		}
		if base != "" && base != "." && base != "/" {
			return base
		}
	}
	return "image-" + uuid.NewString()
}

// DetectContentType prefers the response header, then the file extension,
// then content sniffing.
func DetectContentType(header, filename string, data []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			if parsed, _, err := mime.ParseMediaType(mt); err == nil {
				return parsed
			}
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}
