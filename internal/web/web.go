package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"prodcal/internal/config"
	"prodcal/internal/export"
	"prodcal/internal/ics"
	appLog "prodcal/internal/log"
	"prodcal/internal/render"
	"prodcal/internal/schedule"
	"prodcal/internal/source"
)

const (
	eventsCacheTTL  = 30 * time.Second
	maxGenerateBody = 1 << 20
)

// Server exposes the calendar generator over HTTP.
type Server struct {
	cfg     *config.Config
	loader  *source.Loader
	printer export.Printer
	now     func() time.Time
	mux     *http.ServeMux

	// In-memory cache of generated years, so repeated page and export
	// requests don't reload and re-expand the rule list.
	eventsMu    sync.RWMutex
	eventsCache map[int]*eventsCache
}

// eventsCache holds a generated year and its timestamp.
type eventsCache struct {
	result    schedule.Result
	updatedAt time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs a new Server. printer may be nil, in which case PDF
// export answers 503.
func NewServer(cfg *config.Config, loader *source.Loader, printer export.Printer, opts ...Option) *Server {
	s := &Server{
		cfg:         cfg,
		loader:      loader,
		printer:     printer,
		now:         time.Now,
		mux:         http.NewServeMux(),
		eventsCache: make(map[int]*eventsCache),
	}
	for _, o := range opts {
		o(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		appLog.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

// Invalidate drops every cached year so the next request reloads the rules.
func (s *Server) Invalidate() {
	s.eventsMu.Lock()
	s.eventsCache = make(map[int]*eventsCache)
	s.eventsMu.Unlock()
}

// Events returns the generated calendar for year, from cache when fresh.
func (s *Server) Events(ctx context.Context, year int) (schedule.Result, error) {
	now := s.now()

	s.eventsMu.RLock()
	ec := s.eventsCache[year]
	s.eventsMu.RUnlock()
	if ec != nil && now.Sub(ec.updatedAt) < eventsCacheTTL {
		return ec.result, nil
	}

	rules, err := s.loader.Load(ctx, source.Spec{Path: s.cfg.RulesPath, URL: s.cfg.RulesURL})
	if err != nil {
		return schedule.Result{}, err
	}
	res := schedule.Generate(schedule.ParseLines(rules.Text), year)
	appLog.Debug("events regenerated", "year", year, "origin", string(rules.Origin), "events", len(res.Events))

	s.eventsMu.Lock()
	s.eventsCache[year] = &eventsCache{result: res, updatedAt: now}
	s.eventsMu.Unlock()
	return res, nil
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="prodcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /api/export.ics", s.handleExportICS)
	s.mux.HandleFunc("GET /api/export.pdf", s.handleExportPDF)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// yearParam reads ?year=, defaulting to the configured or current year.
func (s *Server) yearParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return s.cfg.ResolveYear(s.now()), nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("year %q is not a number", raw)
	}
	return y, config.ValidateYear(y)
}

// loadYear resolves the year and generated events for a request, writing the
// error response itself when it fails.
func (s *Server) loadYear(w http.ResponseWriter, r *http.Request) (int, schedule.Result, bool) {
	year, err := s.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, schedule.Result{}, false
	}
	res, err := s.Events(r.Context(), year)
	if err != nil {
		appLog.Error("load rules failed", err, "year", year)
		writeError(w, http.StatusBadGateway, "failed to load rules")
		return 0, schedule.Result{}, false
	}
	return year, res, true
}

// handleEvents returns the generated events for the configured rule source.
//
// GET /api/events?year=2026
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	year, res, ok := s.loadYear(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDocument(year, res))
}

type generateRequest struct {
	Year int    `json:"year"`
	Text string `json:"text"`
}

// handleGenerate expands rule text supplied in the request body.
//
// POST /api/generate {"year": 2026, "text": "Close - 31st of December"}
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Year == 0 {
		req.Year = s.cfg.ResolveYear(s.now())
	}
	if err := config.ValidateYear(req.Year); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := schedule.Generate(schedule.ParseLines(req.Text), req.Year)
	writeJSON(w, http.StatusOK, newDocument(req.Year, res))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	year, res, ok := s.loadYear(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.Events); err != nil {
		appLog.Error("csv export failed", err, "year", year)
		writeError(w, http.StatusInternalServerError, "failed to encode csv")
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", export.CSVFilename(year), buf.Bytes())
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	year, res, ok := s.loadYear(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := ics.Write(&buf, res.Events, s.icsOptions(year)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode calendar")
		return
	}
	writeAttachment(w, "text/calendar; charset=utf-8", export.ICSFilename(year), buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if s.printer == nil {
		writeError(w, http.StatusServiceUnavailable, "pdf export unavailable")
		return
	}
	year, res, ok := s.loadYear(w, r)
	if !ok {
		return
	}
	pdf, err := export.PDF(r.Context(), s.printer, year, res.Events, s.renderOptions())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	writeAttachment(w, "application/pdf", export.PDFFilename(year), pdf)
}

// handleCalendar renders the year grid. Headless capture waits for its
// data-ready marker.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, res, ok := s.loadYear(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.WriteCalendarPage(&buf, year, res.Events, s.renderOptions()); err != nil {
		appLog.Error("calendar render failed", err, "year", year)
		writeError(w, http.StatusInternalServerError, "failed to render calendar")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handlePreview serves the last captured PNG preview from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Capture.PreviewPath)
}

func (s *Server) renderOptions() render.Options {
	return render.Options{
		Title:     s.cfg.Title,
		WeekStart: render.ParseWeekStart(s.cfg.WeekStart),
		Today:     s.now().In(s.cfg.Location()),
		Highlight: s.cfg.HighlightRed,
	}
}

func (s *Server) icsOptions(year int) ics.Options {
	return ics.Options{
		Year:            year,
		Title:           s.cfg.Title,
		UIDDomain:       s.cfg.UIDDomain,
		ReminderTrigger: s.cfg.ReminderTrigger,
		Now:             s.now,
	}
}

func newDocument(year int, res schedule.Result) export.Document {
	return export.Document{
		Year:         year,
		Count:        len(res.Events),
		Events:       export.Events(res.Events),
		Unrecognized: res.Unrecognized,
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
