package migrate

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/wpmigrate/internal/payload"
)

// Status represents the state of a migration run.
type Status string

const (
	StatusFetching   Status = "fetching"
	StatusConverting Status = "converting"
	StatusUploading  Status = "uploading"
	StatusStoring    Status = "storing"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusDryRun     Status = "dry_run"
)

// Kind selects the source type and the conversion strategy.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Options describe one run.
type Options struct {
	Kind Kind
	// Slug is the post slug or the page URI.
	Slug   string
	DryRun bool
	// Update overwrites an existing document instead of skipping it.
	Update bool
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Kind, validation.Required, validation.In(KindPost, KindPage)),
		validation.Field(&o.Slug, validation.Required),
	)
}

// Result reports what a run did.
type Result struct {
	Kind    Kind       `json:"kind"`
	Slug    string     `json:"slug"`
	Status  Status     `json:"status"`
	ID      payload.ID `json:"id,omitzero"`
	MediaID payload.ID `json:"media_id,omitzero"`
	// Blocks holds a one-line summary per converted block.
	Blocks   []string `json:"blocks"`
	Warnings []string `json:"warnings,omitempty"`
	Preview  *Preview `json:"preview,omitempty"`
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
