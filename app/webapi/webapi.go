// Package webapi provides a web API for the spam gate: manual message checks,
// the audit trail of detected spam and the tracker status.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"

	"github.com/ruspam/gatekeeper/app/storage"
	"github.com/ruspam/gatekeeper/lib/spamcheck"
)

//go:generate moq --out mocks/detector.go --pkg mocks --with-resets --skip-ensure . Detector
//go:generate moq --out mocks/spam_store.go --pkg mocks --with-resets --skip-ensure . SpamStore
//go:generate moq --out mocks/tracker.go --pkg mocks --with-resets --skip-ensure . Tracker

// Server is a web API server.
type Server struct {
	Config
}

// Config defines server parameters
type Config struct {
	Version    string    // version to show in /ping
	ListenAddr string    // listen address
	Detector   Detector  // spam detector
	SpamStore  SpamStore // detected spam audit storage, optional
	Tracker    Tracker   // newcomers tracker
	AuthPasswd string    // basic auth password for user "gatekeeper"
	Dbg        bool      // debug mode
}

// Detector is a spam detector interface.
type Detector interface {
	Check(ctx context.Context, req spamcheck.Request) (spam bool, cr []spamcheck.Response)
}

// SpamStore is a storage interface for detected spam entries.
type SpamStore interface {
	Read(ctx context.Context, limit int) ([]storage.DetectedSpamInfo, error)
	Count(ctx context.Context) (int, error)
}

// Tracker reports the number of users under watch.
type Tracker interface {
	TrackedCount() int
}

// NewServer creates a new web API server.
func NewServer(config Config) *Server {
	return &Server{Config: config}
}

// Run starts server and accepts requests checking for spam messages.
func (s *Server) Run(ctx context.Context) error {
	if s.AuthPasswd != "" {
		log.Printf("[INFO] basic auth enabled for webapi server")
	} else {
		log.Printf("[WARN] basic auth disabled, access to webapi is not protected")
	}

	srv := &http.Server{Addr: s.ListenAddr, Handler: s.routes(),
		ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("[WARN] failed to shutdown webapi server: %v", err)
		} else {
			log.Printf("[INFO] webapi server stopped")
		}
	}()

	log.Printf("[INFO] start webapi server on %s", s.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}

func (s *Server) routes() *routegroup.Bundle {
	router := routegroup.New(http.NewServeMux())
	router.Use(rest.Recoverer(lgr.Default()))
	router.Use(rest.AppInfo("gatekeeper", "ruspam", s.Version), rest.Ping)
	router.Use(tollbooth.HTTPMiddleware(tollbooth.NewLimiter(50, nil)))
	router.Use(rest.SizeLimit(1024 * 1024)) // 1M max request size
	if s.AuthPasswd != "" {
		router.Use(rest.BasicAuthWithPrompt("gatekeeper", s.AuthPasswd))
	}

	router.HandleFunc("POST /check", s.checkHandler)      // check a message for spam
	router.HandleFunc("GET /status", s.statusHandler)     // tracker and audit counters
	router.HandleFunc("GET /detected", s.detectedHandler) // latest detected spam entries

	return router
}

// checkHandler handles POST /check request.
// it gets message text and user id from request body and returns spam status and check results.
func (s *Server) checkHandler(w http.ResponseWriter, r *http.Request) {
	req := spamcheck.Request{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		rest.RenderJSON(w, rest.JSON{"error": "can't decode request", "details": err.Error()})
		log.Printf("[WARN] can't decode request: %v", err)
		return
	}

	spam, cr := s.Detector.Check(r.Context(), req)
	rest.RenderJSON(w, rest.JSON{"spam": spam, "checks": cr})
}

// statusHandler handles GET /status request, returns tracker and audit counters.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	res := rest.JSON{"tracked": s.Tracker.TrackedCount()}
	if s.SpamStore != nil {
		count, err := s.SpamStore.Count(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			rest.RenderJSON(w, rest.JSON{"error": "can't get detected spam count", "details": err.Error()})
			return
		}
		res["detected"] = count
	}
	rest.RenderJSON(w, res)
}

// detectedHandler handles GET /detected request, returns latest detected spam
// entries, newest first. The optional limit query parameter caps the count.
func (s *Server) detectedHandler(w http.ResponseWriter, r *http.Request) {
	if s.SpamStore == nil {
		w.WriteHeader(http.StatusNotFound)
		rest.RenderJSON(w, rest.JSON{"error": "spam storage not enabled"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		if limit, err = strconv.Atoi(v); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			rest.RenderJSON(w, rest.JSON{"error": "bad limit", "details": err.Error()})
			return
		}
	}

	entries, err := s.SpamStore.Read(r.Context(), limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		rest.RenderJSON(w, rest.JSON{"error": "can't get detected spam entries", "details": err.Error()})
		return
	}
	rest.RenderJSON(w, entries)
}
