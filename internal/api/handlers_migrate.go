package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/wpmigrate/internal/migrate"
	"github.com/dgallion1/wpmigrate/internal/wordpress"
)

// handleMigrate runs one migration synchronously:
// POST /api/migrate/{post|page}?slug=...&dry_run=true&update=true
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := migrate.Options{
		Kind:   migrate.Kind(chi.URLParam(r, "kind")),
		Slug:   q.Get("slug"),
		DryRun: queryBool(q.Get("dry_run")),
		Update: queryBool(q.Get("update")),
	}
	if err := opts.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.runner.Run(r.Context(), opts)
	if err != nil {
		if errors.Is(err, wordpress.ErrNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("migration failed", "kind", opts.Kind, "slug", opts.Slug, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	code := http.StatusOK
	if res.Status == migrate.StatusCompleted && !opts.Update {
		code = http.StatusCreated
	}
	writeJSON(w, code, res)
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
