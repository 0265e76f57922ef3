// Package payload is a minimal client for the Payload CMS REST API.
package payload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client communicates with the Payload REST API.
type Client struct {
	baseURL        string
	authCollection string
	apiKey         string
	httpClient     *http.Client
}

// NewClient builds a client that authenticates with an API key issued on
// authCollection (usually "users").
func NewClient(baseURL, authCollection, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		authCollection: authCollection,
		apiKey:         apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ID is a document id. SQL adapters return numbers and MongoDB returns
// strings; the original form is kept so it round-trips unchanged.
type ID struct {
	raw     string
	numeric bool
}

// StringID and NumberID build ids in the two adapter styles.
func StringID(s string) ID   { return ID{raw: s} }
func NumberID(n int64) ID    { return ID{raw: strconv.FormatInt(n, 10), numeric: true} }
func (id ID) String() string { return id.raw }
func (id ID) IsZero() bool   { return id.raw == "" }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.raw), nil
	}
	return json.Marshal(id.raw)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		id.numeric = false
		return json.Unmarshal(b, &id.raw)
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	id.raw, id.numeric = n.String(), true
	return nil
}

// Doc is the part of a stored document the migration reads back.
type Doc struct {
	ID       ID     `json:"id"`
	Slug     string `json:"slug,omitempty"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Upload is a binary asset for an upload-enabled collection.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Alt         string
}

// FindBySlug returns the first document in collection with the given slug,
// or nil when none exists.
func (c *Client) FindBySlug(ctx context.Context, collection, slug string) (*Doc, error) {
	q := url.Values{}
	q.Set("where[slug][equals]", slug)
	q.Set("limit", "1")
	q.Set("depth", "0")
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/"+collection+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("find %s by slug: %w", collection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "find "+collection+" by slug "+slug)
	}

	var result struct {
		Docs []Doc `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode find response: %w", err)
	}
	if len(result.Docs) == 0 {
		return nil, nil
	}
	return &result.Docs[0], nil
}

// Create stores a new document and returns it.
func (c *Client) Create(ctx context.Context, collection string, data any) (*Doc, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s document: %w", collection, err)
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/"+collection, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.doDoc(httpReq, "create "+collection)
}

// Update patches an existing document and returns it.
func (c *Client) Update(ctx context.Context, collection string, id ID, data any) (*Doc, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s document: %w", collection, err)
	}
	httpReq, err := c.newRequest(ctx, http.MethodPatch, "/api/"+collection+"/"+url.PathEscape(id.String()), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.doDoc(httpReq, "update "+collection+" "+id.String())
}

// UploadMedia creates a document in an upload collection. The file goes in
// the "file" part and the other fields as JSON in "_payload".
func (c *Client) UploadMedia(ctx context.Context, collection string, up Upload) (*Doc, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, up.Filename))
	header.Set("Content-Type", up.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	fields, err := json.Marshal(map[string]string{"alt": up.Alt})
	if err != nil {
		return nil, fmt.Errorf("marshal media fields: %w", err)
	}
	if err := mw.WriteField("_payload", string(fields)); err != nil {
		return nil, fmt.Errorf("write payload field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/"+collection, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	return c.doDoc(httpReq, "upload "+up.Filename)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", c.authCollection+" API-Key "+c.apiKey)
	}
	return httpReq, nil
}

// doDoc sends a write request and decodes the {"doc": ...} envelope.
func (c *Client) doDoc(httpReq *http.Request, op string) (*Doc, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(resp, op)
	}

	var result struct {
		Doc Doc `json:"doc"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	if result.Doc.ID.IsZero() {
		return nil, fmt.Errorf("%s: response has no document id", op)
	}
	return &result.Doc, nil
}

func statusError(resp *http.Response, op string) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
