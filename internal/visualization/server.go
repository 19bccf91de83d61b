package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/nvandessel/selfsim/internal/analysis"
	"github.com/nvandessel/selfsim/internal/constants"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/logging"
	"github.com/nvandessel/selfsim/internal/metrics"
	"github.com/nvandessel/selfsim/internal/models"
	"github.com/nvandessel/selfsim/internal/ratelimit"
	"github.com/nvandessel/selfsim/internal/session"
	"github.com/nvandessel/selfsim/internal/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// Options configures a Server. Zero values fall back to defaults; a nil
// Presets store disables preset routes.
type Options struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
	Presets        store.PresetStore
	Metrics        *metrics.Recorder
	Runs           *logging.RunLogger
	Logger         *slog.Logger
}

// Server serves the interactive page and the JSON simulation API.
type Server struct {
	opts       Options
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a new view server.
func NewServer(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = constants.DefaultServerAddr
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var limiter *ratelimit.Limiter
	if opts.RateBurst > 0 {
		limiter = ratelimit.NewLimiter(opts.RateLimit, opts.RateBurst)
	}
	return &Server{
		opts:    opts,
		limiter: limiter,
		logger:  logger,
	}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the routed handler, wrapped with CORS when origins are configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern, name string, h http.HandlerFunc) {
		mux.Handle(pattern, ratelimit.Middleware(s.limiter, name, h))
	}
	route("GET /{$}", "index", s.handleIndex)
	route("GET /api/interpretations", "interpretations", s.handleInterpretations)
	route("GET /api/reference", "reference", s.handleReference)
	route("POST /api/simulate", "simulate", s.handleSimulate)
	route("POST /api/compare", "compare", s.handleCompare)
	route("GET /api/presets", "presets", s.handlePresets)
	mux.Handle("GET /metrics", s.opts.Metrics.Handler())

	if len(s.opts.AllowedOrigins) == 0 {
		return mux
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)
}

// ListenAndServe starts the HTTP server on the configured address and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleIndex renders the page. Query parameters select the interpretation
// (interp), load a preset (preset) and override individual parameters.
// The comparison report is built only when analyze is set.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, status, err := s.sessionFromQuery(r)
	var data pageData
	if err != nil {
		data = newPageData(session.New())
		data.Error = err.Error()
	} else {
		data = newPageData(sess)
		data.Preset = r.URL.Query().Get("preset")
		if sess.Selected() {
			s.record("page", sess)
		}
	}

	html, renderErr := renderPageData(data)
	if renderErr != nil {
		http.Error(w, "render error: "+renderErr.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}

func (s *Server) sessionFromQuery(r *http.Request) (session.Session, int, error) {
	q := r.URL.Query()
	id := interpretation.ID(q.Get("interp"))
	overrides := models.ParameterSet{}

	if name := q.Get("preset"); name != "" {
		if s.opts.Presets == nil {
			return session.Session{}, http.StatusNotFound, fmt.Errorf("%w: %s", store.ErrPresetNotFound, name)
		}
		p, err := s.opts.Presets.GetPreset(r.Context(), name)
		if err != nil {
			return session.Session{}, statusFor(err), err
		}
		if id != "" && id != p.Interpretation {
			return session.Session{}, http.StatusBadRequest,
				fmt.Errorf("preset %q belongs to %s, not %s", p.Name, p.Interpretation, id)
		}
		id = p.Interpretation
		for name, v := range p.Params {
			overrides[name] = v
		}
	}

	if id == "" {
		return session.New(), http.StatusOK, nil
	}

	in, err := interpretation.Lookup(id)
	if err != nil {
		return session.Session{}, http.StatusBadRequest, err
	}
	if err := queryOverrides(in, q, overrides); err != nil {
		return session.Session{}, http.StatusBadRequest, err
	}

	sess, err := session.Simulate(in.ID, overrides)
	if err != nil {
		return session.Session{}, statusFor(err), err
	}
	if q.Get("analyze") != "" {
		sess = sess.Analyze()
	}
	return sess, http.StatusOK, nil
}

// queryOverrides copies the interpretation's parameters present in q into ps.
func queryOverrides(in interpretation.Interpretation, q url.Values, ps models.ParameterSet) error {
	for _, p := range in.Params {
		raw := q.Get(p.Name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		ps[p.Name] = v
	}
	return nil
}

func (s *Server) handleInterpretations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, interpretation.All())
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ReferenceDataset().Records())
}

// SimulateRequest is the body of POST /api/simulate and /api/compare.
// Missing parameters take their defaults.
type SimulateRequest struct {
	Interpretation interpretation.ID   `json:"interpretation"`
	Params         models.ParameterSet `json:"params,omitempty"`
}

// SimulateResponse is returned by POST /api/simulate.
type SimulateResponse struct {
	Interpretation interpretation.ID      `json:"interpretation"`
	Params         models.ParameterSet    `json:"params"`
	Outcomes       []models.OutcomeRecord `json:"outcomes"`
}

// CompareResponse is returned by POST /api/compare.
type CompareResponse struct {
	SimulateResponse
	Reference []models.OutcomeRecord `json:"reference"`
	Report    analysis.Report        `json:"report"`
	Text      string                 `json:"text"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, err := s.evaluate(w, r, false)
	s.opts.Metrics.Observe(r.Context(), "simulate", err == nil, time.Since(start))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.record("http", sess)
	writeJSON(w, http.StatusOK, simulateResponse(sess))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, err := s.evaluate(w, r, true)
	s.opts.Metrics.Observe(r.Context(), "compare", err == nil, time.Since(start))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.record("http", sess)

	report, _ := sess.Report()
	writeJSON(w, http.StatusOK, CompareResponse{
		SimulateResponse: simulateResponse(sess),
		Reference:        models.ReferenceDataset().Records(),
		Report:           report,
		Text:             report.Text(),
	})
}

// PresetSummary is one entry of GET /api/presets.
type PresetSummary struct {
	Name           string              `json:"name"`
	Interpretation interpretation.ID   `json:"interpretation"`
	Params         models.ParameterSet `json:"params"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if s.opts.Presets == nil {
		writeJSON(w, http.StatusOK, []PresetSummary{})
		return
	}
	presets, err := s.opts.Presets.ListPresets(r.Context(), interpretation.ID(r.URL.Query().Get("interp")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]PresetSummary, 0, len(presets))
	for _, p := range presets {
		out = append(out, PresetSummary{
			Name:           p.Name,
			Interpretation: p.Interpretation,
			Params:         p.Params,
			UpdatedAt:      p.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// evaluate decodes a SimulateRequest and simulates it, analyzing the
// outcomes only when analyze is true.
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, analyze bool) (session.Session, error) {
	var req SimulateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return session.Session{}, &requestError{err: fmt.Errorf("decode request: %w", err)}
	}
	if analyze {
		return session.Evaluate(req.Interpretation, req.Params)
	}
	return session.Simulate(req.Interpretation, req.Params)
}

// record feeds metrics and the run log for an evaluated session.
func (s *Server) record(source string, sess session.Session) {
	out, ok := sess.Outcomes()
	if !ok {
		return
	}
	s.opts.Metrics.Simulated(sess.Interpretation())
	s.opts.Runs.LogSimulation(source, sess.Interpretation(), sess.Params(), out)
	if report, ok := sess.Report(); ok {
		s.opts.Metrics.Compared(report)
		s.opts.Runs.LogComparison(source, report)
	}
}

func simulateResponse(sess session.Session) SimulateResponse {
	out, _ := sess.Outcomes()
	return SimulateResponse{
		Interpretation: sess.Interpretation(),
		Params:         sess.Params(),
		Outcomes:       out.Records(),
	}
}

// requestError marks malformed request bodies.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr),
		errors.Is(err, interpretation.ErrUnknownInterpretation),
		errors.Is(err, interpretation.ErrUnknownParameter),
		errors.Is(err, interpretation.ErrOutOfRange),
		errors.Is(err, interpretation.ErrMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrPresetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
