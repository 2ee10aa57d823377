package rest

import (
	"net/http"
)

// Middleware wraps a handler. It matches middleware.Middleware.
type Middleware = func(http.Handler) http.Handler

// Routes groups the handlers served by the HTTP API.
type Routes struct {
	Health     *HealthHandler
	Dictionary *DictionaryHandler
	Tools      *LanguageToolsHandler
	// API wraps every /api route, typically with auth.
	API Middleware
	// Generation additionally wraps routes that call the text-generation
	// service, typically with a rate limit.
	Generation Middleware
}

// NewRouter registers all routes on a new ServeMux.
func NewRouter(rt Routes) *http.ServeMux {
	api := orIdentity(rt.API)
	gen := func(h http.HandlerFunc) http.Handler {
		return api(orIdentity(rt.Generation)(h))
	}
	plain := func(h http.HandlerFunc) http.Handler { return api(h) }

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", rt.Health.Live)
	mux.HandleFunc("GET /ready", rt.Health.Ready)
	mux.HandleFunc("GET /health", rt.Health.Health)

	d := rt.Dictionary
	mux.Handle("POST /api/lookup", gen(d.Lookup))
	mux.Handle("GET /api/entries", plain(d.Search))
	mux.Handle("GET /api/entries/{id}", plain(d.Get))
	mux.Handle("DELETE /api/entries/{id}", plain(d.Delete))
	mux.Handle("POST /api/entries/{id}/regenerate", gen(d.Regenerate))
	mux.Handle("GET /api/languages", plain(d.Languages))
	mux.Handle("GET /api/export", plain(d.Export))
	mux.Handle("POST /api/import", plain(d.Import))
	mux.Handle("GET /api/selection", plain(d.CurrentSelection))
	mux.Handle("DELETE /api/selection", plain(d.ClearSelection))

	t := rt.Tools
	mux.Handle("POST /api/lemma", gen(t.Lemma))
	mux.Handle("POST /api/lemma/batch", gen(t.LemmaBatch))
	mux.Handle("POST /api/languages/normalize", gen(t.NormalizeLanguage))

	return mux
}

func orIdentity(mw Middleware) Middleware {
	if mw == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return mw
}
