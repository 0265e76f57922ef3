// Package wordpress fetches posts and pages from a WPGraphQL endpoint.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/wpmigrate/internal/source"
)

// ErrNotFound is returned when the query succeeds but no node matches.
var ErrNotFound = errors.New("wordpress: content not found")

// Client queries a WPGraphQL endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

const nodeFields = `
    databaseId
    title
    slug
    uri
    content
    dateGmt
    modifiedGmt
    featuredImage {
      node {
        sourceUrl
        altText
        mediaDetails { width height }
      }
    }`

const postQuery = `query PostBySlug($id: ID!) {
  post(id: $id, idType: SLUG) {` + nodeFields + `
    excerpt
    categories { nodes { name slug } }
  }
}`

const pageQuery = `query PageByURI($id: ID!) {
  page(id: $id, idType: URI) {` + nodeFields + `
  }
}`

// PostBySlug fetches a post by slug.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*source.Document, error) {
	var data struct {
		Post *node `json:"post"`
	}
	if err := c.query(ctx, postQuery, slug, &data); err != nil {
		return nil, fmt.Errorf("fetch post %s: %w", slug, err)
	}
	if data.Post == nil {
		return nil, fmt.Errorf("post %s: %w", slug, ErrNotFound)
	}
	return data.Post.document(), nil
}

// PageByURI fetches a page by URI; a bare slug works for top-level pages.
func (c *Client) PageByURI(ctx context.Context, uri string) (*source.Document, error) {
	var data struct {
		Page *node `json:"page"`
	}
	if err := c.query(ctx, pageQuery, uri, &data); err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", uri, err)
	}
	if data.Page == nil {
		return nil, fmt.Errorf("page %s: %w", uri, ErrNotFound)
	}
	return data.Page.document(), nil
}

type graphQLError struct {
	Message string `json:"message"`
}

func (c *Client) query(ctx context.Context, query, id string, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": map[string]string{"id": id},
	})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("graphql: status %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("graphql: empty data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

type node struct {
	DatabaseID    int    `json:"databaseId"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	URI           string `json:"uri"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	DateGMT       string `json:"dateGmt"`
	ModifiedGMT   string `json:"modifiedGmt"`
	FeaturedImage *struct {
		Node *struct {
			SourceURL    string `json:"sourceUrl"`
			AltText      string `json:"altText"`
			MediaDetails *struct {
				Width  int `json:"width"`
				Height int `json:"height"`
			} `json:"mediaDetails"`
		} `json:"node"`
	} `json:"featuredImage"`
	Categories *struct {
		Nodes []struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"nodes"`
	} `json:"categories"`
}

func (n *node) document() *source.Document {
	d := &source.Document{
		ID:        strconv.Itoa(n.DatabaseID),
		Title:     n.Title,
		Slug:      n.Slug,
		URI:       n.URI,
		Body:      n.Content,
		Excerpt:   n.Excerpt,
		Published: parseGMT(n.DateGMT),
		Modified:  parseGMT(n.ModifiedGMT),
	}
	if fi := n.FeaturedImage; fi != nil && fi.Node != nil && fi.Node.SourceURL != "" {
		img := &source.Image{URL: fi.Node.SourceURL, Alt: fi.Node.AltText}
		if md := fi.Node.MediaDetails; md != nil {
			img.Width, img.Height = md.Width, md.Height
		}
		d.FeaturedImage = img
	}
	if n.Categories != nil {
		for _, c := range n.Categories.Nodes {
			d.Categories = append(d.Categories, source.Category{Name: c.Name, Slug: c.Slug})
		}
	}
	return d
}

// parseGMT reads WPGraphQL's zone-less GMT timestamps. Unparseable values
// yield the zero time.
func parseGMT(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
