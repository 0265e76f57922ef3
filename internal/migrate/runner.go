// Package migrate runs one WordPress to Payload migration: fetch, convert,
// then check for an existing document, copy media and persist.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dgallion1/wpmigrate/internal/blocks"
	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/entity"
	"github.com/dgallion1/wpmigrate/internal/payload"
	"github.com/dgallion1/wpmigrate/internal/richtext"
	"github.com/dgallion1/wpmigrate/internal/source"
)

// Source fetches documents from the old site.
type Source interface {
	PostBySlug(ctx context.Context, slug string) (*source.Document, error)
	PageByURI(ctx context.Context, uri string) (*source.Document, error)
}

// Store is the content store the run writes to.
type Store interface {
	FindBySlug(ctx context.Context, collection, slug string) (*payload.Doc, error)
	Create(ctx context.Context, collection string, data any) (*payload.Doc, error)
	Update(ctx context.Context, collection string, id payload.ID, data any) (*payload.Doc, error)
}

// MediaCopier moves one image into the store's media collection.
type MediaCopier interface {
	Copy(ctx context.Context, img source.Image, fallbackAlt string) (*payload.Doc, error)
}

// Collections names the target collections.
type Collections struct {
	Posts      string
	Pages      string
	Categories string
}

// Runner executes migration runs. A Runner holds no per-run state.
type Runner struct {
	source      Source
	store       Store
	media       MediaCopier
	conv        *convert.Converter
	collections Collections
	excerpt     *bluemonday.Policy
	markdown    *converter.Converter
	log         *slog.Logger
}

func NewRunner(src Source, store Store, media MediaCopier, conv *convert.Converter, cols Collections, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		source:      src,
		store:       store,
		media:       media,
		conv:        conv,
		collections: cols,
		excerpt:     bluemonday.StrictPolicy(),
		markdown:    newMarkdownConverter(),
		log:         log,
	}
}

// converted is the output of the conversion phase.
type converted struct {
	collection string
	content    *richtext.Document
	layout     []blocks.Block
	summary    []string
}

// Run migrates one document. Source and conversion errors are returned;
// media and category problems are recorded as warnings on the result.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{Kind: opts.Kind, Slug: opts.Slug}
	log := r.log.With("run_id", uuid.NewString(), "kind", opts.Kind, "slug", opts.Slug)

	// Phase 1: Fetch
	r.setStatus(log, res, StatusFetching)
	doc, err := r.fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	if doc.Slug != "" {
		res.Slug = doc.Slug
	}
	log.Info("fetched source document", "title", doc.Title, "id", doc.ID)

	// Phase 2: Convert
	r.setStatus(log, res, StatusConverting)
	conv, err := r.convert(opts.Kind, doc)
	if err != nil {
		return nil, err
	}
	res.Blocks = conv.summary
	log.Info("converted document", "blocks", len(conv.summary))

	if opts.DryRun {
		preview, err := r.preview(doc, res.Slug, conv)
		if err != nil {
			return nil, err
		}
		res.Preview = preview
		r.setStatus(log, res, StatusDryRun)
		return res, nil
	}

	// Phase 3: Existence check. It runs before any upload so a skipped run
	// writes nothing.
	r.setStatus(log, res, StatusStoring)
	existing, err := r.store.FindBySlug(ctx, conv.collection, res.Slug)
	if err != nil {
		return nil, fmt.Errorf("check existing %s: %w", res.Slug, err)
	}
	if existing != nil && !opts.Update {
		log.Info("document already exists, skipping", "existing_id", existing.ID.String())
		res.ID = existing.ID
		r.setStatus(log, res, StatusSkipped)
		return res, nil
	}

	// Phase 4: Media and relations
	r.setStatus(log, res, StatusUploading)
	if doc.FeaturedImage != nil && doc.FeaturedImage.URL != "" && r.media != nil {
		m, err := r.media.Copy(ctx, *doc.FeaturedImage, doc.Title)
		if err != nil {
			log.Warn("featured image transfer failed, continuing without image", "url", doc.FeaturedImage.URL, "error", err)
			res.warn(fmt.Sprintf("featured image: %s", err))
		} else {
			res.MediaID = m.ID
			log.Info("uploaded featured image", "media_id", m.ID.String())
		}
	}
	var categories []payload.ID
	if opts.Kind == KindPost {
		categories = r.linkCategories(ctx, log, res, doc.Categories)
	}

	// Phase 5: Persist
	r.setStatus(log, res, StatusStoring)
	data := r.buildData(doc, res, conv, categories)
	var stored *payload.Doc
	if existing != nil {
		stored, err = r.store.Update(ctx, conv.collection, existing.ID, data)
	} else {
		stored, err = r.store.Create(ctx, conv.collection, data)
	}
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", res.Slug, err)
	}
	res.ID = stored.ID
	r.setStatus(log, res, StatusCompleted)
	log.Info("migration complete", "id", stored.ID.String(), "updated", existing != nil)
	return res, nil
}

func (r *Runner) setStatus(log *slog.Logger, res *Result, status Status) {
	res.Status = status
	log.Debug("status", "status", status)
}

func (r *Runner) fetch(ctx context.Context, opts Options) (*source.Document, error) {
	var (
		doc *source.Document
		err error
	)
	switch opts.Kind {
	case KindPage:
		doc, err = r.source.PageByURI(ctx, opts.Slug)
	default:
		doc, err = r.source.PostBySlug(ctx, opts.Slug)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s %q: %w", opts.Kind, opts.Slug, err)
	}
	return doc, nil
}

func (r *Runner) convert(kind Kind, doc *source.Document) (*converted, error) {
	if kind == KindPage {
		page, err := r.conv.Page(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("convert page: %w", err)
		}
		out := &converted{collection: r.collections.Pages, layout: page.Blocks}
		for _, b := range page.Blocks {
			if err := b.Validate(); err != nil {
				return nil, fmt.Errorf("validate %s block: %w", b.BlockType(), err)
			}
			out.summary = append(out.summary, blocks.Summary(b))
		}
		return out, nil
	}

	content, err := r.conv.Article(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("convert post: %w", err)
	}
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("validate content: %w", err)
	}
	return &converted{
		collection: r.collections.Posts,
		content:    &content,
		summary:    []string{fmt.Sprintf("richText (%d nodes)", len(content.Root.Children))},
	}, nil
}

// linkCategories resolves categories that already exist in the store. Missing
// categories are never created.
func (r *Runner) linkCategories(ctx context.Context, log *slog.Logger, res *Result, cats []source.Category) []payload.ID {
	if r.collections.Categories == "" {
		return nil
	}
	var ids []payload.ID
	for _, c := range cats {
		found, err := r.store.FindBySlug(ctx, r.collections.Categories, c.Slug)
		if err != nil {
			log.Warn("category lookup failed", "category", c.Slug, "error", err)
			res.warn(fmt.Sprintf("category %s: %s", c.Slug, err))
			continue
		}
		if found == nil {
			log.Warn("category not found in store", "category", c.Slug)
			continue
		}
		ids = append(ids, found.ID)
	}
	return ids
}

type postData struct {
	Title         string             `json:"title"`
	Slug          string             `json:"slug"`
	Content       *richtext.Document `json:"content"`
	Excerpt       string             `json:"excerpt,omitempty"`
	PublishedAt   string             `json:"publishedAt,omitempty"`
	FeaturedImage *payload.ID        `json:"featuredImage,omitempty"`
	Categories    []payload.ID       `json:"categories,omitempty"`
}

type pageData struct {
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Layout        []blocks.Block `json:"layout"`
	PublishedAt   string         `json:"publishedAt,omitempty"`
	FeaturedImage *payload.ID    `json:"featuredImage,omitempty"`
}

func (r *Runner) buildData(doc *source.Document, res *Result, conv *converted, categories []payload.ID) any {
	var image *payload.ID
	if !res.MediaID.IsZero() {
		id := res.MediaID
		image = &id
	}
	var published string
	if !doc.Published.IsZero() {
		published = doc.Published.UTC().Format(time.RFC3339)
	}
	if conv.layout != nil {
		return pageData{
			Title:         doc.Title,
			Slug:          res.Slug,
			Layout:        conv.layout,
			PublishedAt:   published,
			FeaturedImage: image,
		}
	}
	return postData{
		Title:         doc.Title,
		Slug:          res.Slug,
		Content:       conv.content,
		Excerpt:       r.plainExcerpt(doc.Excerpt),
		PublishedAt:   published,
		FeaturedImage: image,
		Categories:    categories,
	}
}

// plainExcerpt strips markup from an excerpt and decodes its entities.
func (r *Runner) plainExcerpt(excerpt string) string {
	if excerpt == "" {
		return ""
	}
	text := entity.Decode(r.excerpt.Sanitize(excerpt))
	return strings.Join(strings.Fields(text), " ")
}

func (r *Runner) preview(doc *source.Document, slug string, conv *converted) (*Preview, error) {
	body, err := r.conv.SanitizedBody(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("sanitize body: %w", err)
	}
	md, err := r.markdown.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	p := &Preview{
		Title:      doc.Title,
		Slug:       slug,
		Collection: conv.collection,
		Published:  doc.Published,
		Excerpt:    r.plainExcerpt(doc.Excerpt),
		Blocks:     conv.summary,
		Markdown:   md,
	}
	if doc.FeaturedImage != nil {
		p.Image = doc.FeaturedImage.URL
	}
	for _, c := range doc.Categories {
		p.Categories = append(p.Categories, c.Name)
	}
	return p, nil
}
