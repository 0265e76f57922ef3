package migrate

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/payload"
	"github.com/dgallion1/wpmigrate/internal/source"
)

var errNotFound = errors.New("not found")

type fakeSource struct {
	docs map[string]*source.Document
}

func (f *fakeSource) PostBySlug(_ context.Context, slug string) (*source.Document, error) {
	if d, ok := f.docs[slug]; ok {
		return d, nil
	}
	return nil, errNotFound
}

func (f *fakeSource) PageByURI(ctx context.Context, uri string) (*source.Document, error) {
	return f.PostBySlug(ctx, uri)
}

type call struct {
	collection string
	id         payload.ID
	data       any
}

type fakeStore struct {
	existing map[string]*payload.Doc // collection/slug
	finds    int
	creates  []call
	updates  []call
}

func (f *fakeStore) FindBySlug(_ context.Context, collection, slug string) (*payload.Doc, error) {
	f.finds++
	return f.existing[collection+"/"+slug], nil
}

func (f *fakeStore) Create(_ context.Context, collection string, data any) (*payload.Doc, error) {
	f.creates = append(f.creates, call{collection: collection, data: data})
	return &payload.Doc{ID: payload.NumberID(100)}, nil
}

func (f *fakeStore) Update(_ context.Context, collection string, id payload.ID, data any) (*payload.Doc, error) {
	f.updates = append(f.updates, call{collection: collection, id: id, data: data})
	return &payload.Doc{ID: id}, nil
}

func (f *fakeStore) writes() int { return len(f.creates) + len(f.updates) }

type fakeMedia struct {
	copies int
	err    error
}

func (f *fakeMedia) Copy(_ context.Context, img source.Image, fallbackAlt string) (*payload.Doc, error) {
	f.copies++
	if f.err != nil {
		return nil, f.err
	}
	return &payload.Doc{ID: payload.NumberID(7), Filename: "knee.jpg"}, nil
}

func testPost() *source.Document {
	return &source.Document{
		ID:        "42",
		Title:     "Knee pain",
		Slug:      "knee-pain",
		Body:      `<div class="wp-block-group"><h2>Causes</h2><p>Running &amp; jumping.</p><ul><li>Rest</li><li>Ice</li></ul></div>`,
		Excerpt:   `<p>Why knees hurt &#8211; and what helps.</p>`,
		Published: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		FeaturedImage: &source.Image{
			URL: "https://wp.test/uploads/knee.jpg",
			Alt: "A knee",
		},
		Categories: []source.Category{{Name: "Nieuws", Slug: "nieuws"}, {Name: "Gone", Slug: "gone"}},
	}
}

func newTestRunner(store *fakeStore, media *fakeMedia) *Runner {
	src := &fakeSource{docs: map[string]*source.Document{
		"knee-pain": testPost(),
		"over-ons": {
			Title: "Over ons",
			Slug:  "over-ons",
			Body:  `<div class="vc_row"><div class="vc_column"><p>Intro</p></div></div><h3><strong>Auteur: Jane Doe</strong></h3>`,
		},
	}}
	if store.existing == nil {
		store.existing = map[string]*payload.Doc{}
	}
	store.existing["categories/nieuws"] = &payload.Doc{ID: payload.NumberID(3), Slug: "nieuws"}
	conv := convert.New(nil, convert.PageRules{}, nil)
	return NewRunner(src, store, media, conv, Collections{Posts: "posts", Pages: "pages", Categories: "categories"}, nil)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	store := &fakeStore{}
	media := &fakeMedia{}
	res, err := newTestRunner(store, media).Run(context.Background(), Options{Kind: KindPost, Slug: "knee-pain", DryRun: true})
	require.NoError(t, err)

	require.Equal(t, StatusDryRun, res.Status)
	require.Zero(t, store.finds)
	require.Zero(t, store.writes())
	require.Zero(t, media.copies)

	require.NotNil(t, res.Preview)
	require.Equal(t, "Knee pain", res.Preview.Title)
	require.Equal(t, "posts", res.Preview.Collection)
	require.Equal(t, "Why knees hurt – and what helps.", res.Preview.Excerpt)
	require.Equal(t, []string{"Nieuws", "Gone"}, res.Preview.Categories)
	require.Contains(t, res.Preview.Markdown, "## Causes")
	require.Contains(t, res.Preview.Markdown, "- Rest")
	require.Equal(t, []string{"richText (3 nodes)"}, res.Blocks)

	var buf bytes.Buffer
	_, err = res.Preview.WriteTo(&buf)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Slug:       knee-pain")
	require.Contains(t, buf.String(), "1. richText (3 nodes)")
}

func TestRun_CreatesPost(t *testing.T) {
	store := &fakeStore{}
	media := &fakeMedia{}
	res, err := newTestRunner(store, media).Run(context.Background(), Options{Kind: KindPost, Slug: "knee-pain"})
	require.NoError(t, err)

	require.Equal(t, StatusCompleted, res.Status)
	require.Equal(t, "100", res.ID.String())
	require.Equal(t, 1, media.copies)
	require.Len(t, store.creates, 1)
	require.Empty(t, store.updates)

	data, ok := store.creates[0].data.(postData)
	require.True(t, ok, "expected postData, got %T", store.creates[0].data)
	require.Equal(t, "posts", store.creates[0].collection)
	require.Equal(t, "knee-pain", data.Slug)
	require.Equal(t, "2024-03-01T09:30:00Z", data.PublishedAt)
	require.NotNil(t, data.FeaturedImage)
	require.Equal(t, "7", data.FeaturedImage.String())
	require.Equal(t, []payload.ID{payload.NumberID(3)}, data.Categories)
	require.NotNil(t, data.Content)
	require.GreaterOrEqual(t, len(data.Content.Root.Children), 1)
}

func TestRun_ExistingSlugIsSkipped(t *testing.T) {
	store := &fakeStore{existing: map[string]*payload.Doc{
		"posts/knee-pain": {ID: payload.StringID("abc"), Slug: "knee-pain"},
	}}
	media := &fakeMedia{}
	res, err := newTestRunner(store, media).Run(context.Background(), Options{Kind: KindPost, Slug: "knee-pain"})
	require.NoError(t, err)

	require.Equal(t, StatusSkipped, res.Status)
	require.Equal(t, "abc", res.ID.String())
	require.Zero(t, store.writes())
	require.Zero(t, media.copies)
}

func TestRun_UpdateExisting(t *testing.T) {
	store := &fakeStore{existing: map[string]*payload.Doc{
		"posts/knee-pain": {ID: payload.StringID("abc"), Slug: "knee-pain"},
	}}
	res, err := newTestRunner(store, &fakeMedia{}).Run(context.Background(), Options{Kind: KindPost, Slug: "knee-pain", Update: true})
	require.NoError(t, err)

	require.Equal(t, StatusCompleted, res.Status)
	require.Empty(t, store.creates)
	require.Len(t, store.updates, 1)
	require.Equal(t, "abc", store.updates[0].id.String())
	require.Equal(t, "abc", res.ID.String())
}

func TestRun_MediaFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{}
	media := &fakeMedia{err: errors.New("download: status 404")}
	res, err := newTestRunner(store, media).Run(context.Background(), Options{Kind: KindPost, Slug: "knee-pain"})
	require.NoError(t, err)

	require.Equal(t, StatusCompleted, res.Status)
	require.True(t, res.MediaID.IsZero())
	require.Len(t, res.Warnings, 1)
	require.Len(t, store.creates, 1)
	require.Nil(t, store.creates[0].data.(postData).FeaturedImage)
}

func TestRun_CreatesPageLayout(t *testing.T) {
	store := &fakeStore{}
	res, err := newTestRunner(store, &fakeMedia{}).Run(context.Background(), Options{Kind: KindPage, Slug: "over-ons"})
	require.NoError(t, err)

	require.Equal(t, []string{"content (1 nodes)", `authorReviewer (author="Jane Doe")`}, res.Blocks)
	require.Len(t, store.creates, 1)
	require.Equal(t, "pages", store.creates[0].collection)
	data, ok := store.creates[0].data.(pageData)
	require.True(t, ok)
	require.Len(t, data.Layout, 2)
	require.Equal(t, "content", data.Layout[0].BlockType())
}

func TestRun_FetchErrorIsFatal(t *testing.T) {
	store := &fakeStore{}
	_, err := newTestRunner(store, &fakeMedia{}).Run(context.Background(), Options{Kind: KindPost, Slug: "missing"})
	require.ErrorIs(t, err, errNotFound)
	require.Zero(t, store.writes())
}

func TestRun_InvalidOptions(t *testing.T) {
	r := newTestRunner(&fakeStore{}, &fakeMedia{})
	_, err := r.Run(context.Background(), Options{Kind: KindPost})
	require.Error(t, err)
	_, err = r.Run(context.Background(), Options{Kind: "attachment", Slug: "x"})
	require.Error(t, err)
}
