package web

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/app"
	webui "bizdesk/web"
)

// Options configures the HTTP adapter.
type Options struct {
	AllowedOrigins string
	JWTSecret      string
	SessionTTL     time.Duration
	SecureCookies  bool
	Location       *time.Location
}

// Handler holds the ApplicationService, the chi router, and the pending bulk action store.
type Handler struct {
	svc        app.ApplicationService
	opts       Options
	router     chi.Router
	pending    *pendingStore
	fileServer http.Handler
}

// NewHandler creates and wires the chi router with all routes. ctx bounds the
// background maintenance goroutines.
func NewHandler(ctx context.Context, svc app.ApplicationService, opts Options) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	h := &Handler{
		svc:        svc,
		opts:       opts,
		pending:    newPendingStore(),
		fileServer: http.FileServer(http.FS(staticFS)),
	}
	h.pending.startPurge(ctx)

	origins := splitAndTrim(opts.AllowedOrigins)
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(origins))
	r.Use(CrossOrigin(origins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Get("/api/schema/views", h.apiSchema)
	r.With(RequestBodyLimit(64<<10)).Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})

	r.Get("/login", h.loginPage)
	r.With(RequestBodyLimit(64<<10)).Post("/login", h.loginFormSubmit)
	r.Post("/logout", h.logoutPage)

	// ── Protected browser routes (redirect to /login if unauthenticated) ─────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuthBrowser)
		r.Use(RequestBodyLimit(1 << 20))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, navHomeHref, http.StatusSeeOther)
		})
		r.Get("/dashboard", h.dashboardPage)
		r.Get("/v/{view}", h.listPage)
		r.Get("/v/{view}/export.{format}", h.exportView)
		r.Get("/v/{view}/print", h.printView)
		r.Post("/v/{view}/bulk", h.bulkPrepare)
		r.Post("/v/{view}/bulk/confirm", h.bulkConfirm)
		r.Get("/v/{view}/{id}", h.recordPage)
	})

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20))

		r.Get("/api/auth/me", h.me)
		r.Get("/api/views", h.apiViews)
		r.Get("/api/views/{view}", h.apiViewRows)
		r.Get("/api/views/{view}/records/{id}", h.apiRecord)
		r.Post("/api/views/{view}/bulk", h.apiBulk)
	})

	h.router = r
	return r
}

// health reports liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	writeJSON(w, response{Status: "ok", Time: time.Now().In(h.opts.Location).Format(time.RFC3339)})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

func viewParam(r *http.Request) string {
	return chi.URLParam(r, "view")
}

func chiParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
