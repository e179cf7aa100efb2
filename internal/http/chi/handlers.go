package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/gorilla/sessions"
	"github.com/marcelsud/book-manager/book"
	"github.com/rs/zerolog"
)

// Dependencies groups what the HTTP layer needs from main
type Dependencies struct {
	Logger   zerolog.Logger
	Books    book.UseCase
	Sessions sessions.Store
	// Uploads serves stored cover images, may be nil
	Uploads http.FileSystem
	// Metrics serves the Prometheus endpoint, may be nil
	Metrics http.Handler
}

func Handlers(ctx context.Context, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Uploads != nil {
		r.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/", http.FileServer(deps.Uploads)))
	}

	flashes := newFlasher(deps.Sessions)
	r.Method(http.MethodGet, "/", getBooks(deps.Books, flashes))
	r.Method(http.MethodGet, "/add", getAddForm(flashes))
	r.Method(http.MethodPost, "/add", postBook(deps.Books, flashes))
	r.Method(http.MethodGet, "/edit/{id:[0-9]+}", getEditForm(deps.Books, flashes))
	r.Method(http.MethodPost, "/edit/{id:[0-9]+}", postEditBook(deps.Books, flashes))
	r.Method(http.MethodPost, "/delete/{id:[0-9]+}", deleteBook(deps.Books, flashes))

	return r
}
