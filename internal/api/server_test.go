package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/wpmigrate/internal/config"
	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/migrate"
	"github.com/dgallion1/wpmigrate/internal/payload"
	"github.com/dgallion1/wpmigrate/internal/source"
	"github.com/dgallion1/wpmigrate/internal/wordpress"
)

func testConfig() config.Config {
	return config.Config{MaxBodyBytes: 1 << 20}
}

func newTestServer(cfg config.Config, runner *migrate.Runner) *httptest.Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(convert.New(nil, convert.PageRules{}, log), runner, log, cfg)
	return httptest.NewServer(srv)
}

type rootJSON struct {
	Result struct {
		Root struct {
			Children []struct {
				Type string `json:"type"`
				Tag  string `json:"tag"`
			} `json:"children"`
		} `json:"root"`
	} `json:"result"`
	Strategy string `json:"strategy"`
	Slug     string `json:"slug"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(testConfig(), nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConvert_ArticleHTML(t *testing.T) {
	ts := newTestServer(testConfig(), nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/convert?strategy=article", "text/html",
		strings.NewReader(`<h2>Title</h2><p>Body</p><ul><li>a</li></ul>`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out rootJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "article", out.Strategy)
	require.Len(t, out.Result.Root.Children, 3)
	require.Equal(t, "heading", out.Result.Root.Children[0].Type)
	require.Equal(t, "h2", out.Result.Root.Children[0].Tag)
	require.Equal(t, "list", out.Result.Root.Children[2].Type)
}

func TestConvert_PageReturnsBlocks(t *testing.T) {
	ts := newTestServer(testConfig(), nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/convert?strategy=page", "text/html",
		strings.NewReader(`<p>Intro</p><h3><strong>Auteur: Jane Doe</strong></h3>`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Result []map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Result, 2)
	require.Equal(t, "content", out.Result[0]["blockType"])
	require.Equal(t, "authorReviewer", out.Result[1]["blockType"])
	require.Equal(t, "Jane Doe", out.Result[1]["author"])
}

func TestConvert_MultipartCSV(t *testing.T) {
	ts := newTestServer(testConfig(), nil)
	defer ts.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "../Dose Table.csv")
	require.NoError(t, err)
	fmt.Fprint(fw, "name,dose\nibuprofen,400mg\n")
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/convert", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out rootJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "document", out.Strategy)
	require.Equal(t, "dose-table", out.Slug)
	require.Equal(t, "table", out.Result.Root.Children[0].Type)
}

func TestConvert_Errors(t *testing.T) {
	ts := newTestServer(config.Config{MaxBodyBytes: 16}, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/convert?strategy=blog", "text/html", strings.NewReader("<p>x</p>"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/convert", "text/html", strings.NewReader(strings.Repeat("a", 64)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestConvert_RequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.ServerAPIKey = "secret"
	ts := newTestServer(cfg, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/convert", "text/html", strings.NewReader("<p>x</p>"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/convert", strings.NewReader("<p>x</p>"))
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

type stubSource struct{}

func (stubSource) PostBySlug(_ context.Context, slug string) (*source.Document, error) {
	if slug != "hello" {
		return nil, fmt.Errorf("post %q: %w", slug, wordpress.ErrNotFound)
	}
	return &source.Document{Title: "Hello", Slug: "hello", Body: "<p>Hi</p>"}, nil
}

func (s stubSource) PageByURI(ctx context.Context, uri string) (*source.Document, error) {
	return s.PostBySlug(ctx, uri)
}

type stubStore struct{ creates int }

func (s *stubStore) FindBySlug(context.Context, string, string) (*payload.Doc, error) {
	return nil, nil
}

func (s *stubStore) Create(context.Context, string, any) (*payload.Doc, error) {
	s.creates++
	return &payload.Doc{ID: payload.NumberID(1)}, nil
}

func (s *stubStore) Update(_ context.Context, _ string, id payload.ID, _ any) (*payload.Doc, error) {
	return &payload.Doc{ID: id}, nil
}

func TestMigrate(t *testing.T) {
	store := &stubStore{}
	runner := migrate.NewRunner(stubSource{}, store, nil, convert.New(nil, convert.PageRules{}, nil),
		migrate.Collections{Posts: "posts", Pages: "pages"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := newTestServer(testConfig(), runner)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/migrate/post?slug=hello&dry_run=true", "", nil)
	require.NoError(t, err)
	var res migrate.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, migrate.StatusDryRun, res.Status)
	require.Zero(t, store.creates)

	resp, err = http.Post(ts.URL+"/api/migrate/post?slug=hello", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, 1, store.creates)

	resp, err = http.Post(ts.URL+"/api/migrate/post?slug=nope", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/migrate/attachment?slug=x", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
