// Package chi exposes the ranking, summary and proxy services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	logpkg "github.com/kailas-cloud/resumatch/internal/logger"
	"github.com/kailas-cloud/resumatch/internal/metrics"
	"github.com/kailas-cloud/resumatch/internal/transport/downstream"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
)

const (
	defaultMaxUploadBytes = 32 << 20

	msgMissingFields = "Missing job description or resumes"
	msgInvalidForm   = "Invalid multipart form"
	msgEmptyText     = "Empty input text received"
	msgProxyError    = "Proxy server error"
	msgBackendOK     = "Backend is working!"
	interviewBanner  = "Interview AI Backend is running. Use /analyze endpoint with POST requests."

	timestampLayout = "2006-01-02 15:04:05.000000"
)

type rankRoute struct {
	path   string
	ranker Ranker
}

// Server routes requests to whichever services are configured on it.
type Server struct {
	ranks       []rankRoute
	summary     Summarizer
	summaryPath string
	relay       Forwarder
	relayPath   string
	banner      string
	health      HealthReporter
	logger      *zap.Logger

	strictStatus   bool
	maxUploadBytes int64
	corsOrigin     string
	apiKeys        []string
	now            func() time.Time
}

// NewServer creates an HTTP server. health may be nil.
func NewServer(health HealthReporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		health:         health,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
		corsOrigin:     "*",
		now:            time.Now,
	}
}

// WithRanking serves a ranking pipeline at path.
func (s *Server) WithRanking(path string, r Ranker) *Server {
	s.ranks = append(s.ranks, rankRoute{path: path, ranker: r})
	return s
}

// WithSummary serves the summarizer at path, plus a plain-text banner at /.
func (s *Server) WithSummary(path string, sum Summarizer) *Server {
	s.summaryPath = path
	s.summary = sum
	s.banner = interviewBanner
	return s
}

// WithRelay serves the forwarding proxy at path.
func (s *Server) WithRelay(path string, f Forwarder) *Server {
	s.relayPath = path
	s.relay = f
	return s
}

// WithStrictStatus makes request-level failures use 4xx/5xx statuses instead of 200.
func (s *Server) WithStrictStatus(strict bool) *Server {
	s.strictStatus = strict
	return s
}

// WithMaxUploadBytes bounds multipart request bodies.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// WithCORSOrigin sets Access-Control-Allow-Origin.
func (s *Server) WithCORSOrigin(origin string) *Server {
	if origin != "" {
		s.corsOrigin = origin
	}
	return s
}

// WithAPIKeys enables bearer-token auth. Empty disables it.
func (s *Server) WithAPIKeys(keys []string) *Server {
	s.apiKeys = keys
	return s
}

// Router builds the chi router with the middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	r.Use(corsMiddleware(s.corsOrigin))
	r.Use(BearerAuthMiddleware(s.apiKeys))

	r.Get("/test", s.handleTest)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	for _, rt := range s.ranks {
		r.Post(rt.path, s.handleRank(rt.ranker))
	}
	if s.summary != nil {
		r.Post(s.summaryPath, s.handleSummarize)
		r.Get("/", s.handleBanner)
	}
	if s.relay != nil {
		r.Post(s.relayPath, s.handleProxy)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// handleRank handles POST /rank-resumes and /analyze-resumes.
func (s *Server) handleRank(ranker Ranker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logpkg.FromContext(r.Context())

		sub, err := s.readSubmission(w, r, true)
		if err != nil {
			log.Warn("invalid ranking request", zap.Error(err))
			msg := msgMissingFields
			if errors.Is(err, domain.ErrInvalidRequest) {
				msg = msgInvalidForm
			}
			s.writeRankError(w, err, msg)
			return
		}

		ctx, usage := domain.NewContextWithUsage(r.Context())
		ranking, err := ranker.Rank(ctx, sub.JobDescription, sub.Files)
		if err != nil {
			if errors.Is(err, domain.ErrMissingField) {
				log.Warn("invalid ranking request", zap.Error(err))
				s.writeRankError(w, err, msgMissingFields)
				return
			}
			log.Error("ranking failed", zap.Error(err))
			s.writeRankError(w, err, "Error processing job description: "+safeDomainMessage(err))
			return
		}

		items := make([]scoreItem, len(ranking.Records))
		for i := range ranking.Records {
			items[i] = scoreItem{
				Filename:         ranking.Records[i].Filename(),
				CosineSimilarity: ranking.Records[i].Score(),
			}
		}

		setEmbeddingHeaders(w, usage)
		writeJSON(w, http.StatusOK, rankResponse{Results: items})
	}
}

func (s *Server) writeRankError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusOK
	if s.strictStatus {
		status = statusFor(err)
	}
	writeJSON(w, status, rankResponse{Error: msg, Results: []scoreItem{}})
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Result string `json:"result"`
}

// handleSummarize handles POST /analyze.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	log := logpkg.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	summary, err := s.summary.Summarize(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, msgEmptyText)
			return
		}
		log.Error("summarization failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, safeDomainMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, summarizeResponse{Result: summary})
}

// handleProxy handles POST /proxy/rank-resumes.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	log := logpkg.FromContext(r.Context())

	sub, err := s.readSubmission(w, r, false)
	if err == nil {
		var resp downstream.Response
		resp, err = s.relay.Forward(r.Context(), sub)
		if err == nil {
			w.Header().Set("Content-Type", resp.ContentType)
			w.WriteHeader(resp.Status)
			_, _ = w.Write(resp.Body)
			return
		}
	}

	log.Error("proxy forwarding failed", zap.Error(err))
	status := http.StatusOK
	if s.strictStatus {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, proxyErrorResponse{
		Error:   err.Error(),
		Message: msgProxyError,
		Results: []scoreItem{},
	})
}

// handleTest handles GET /test.
func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "success",
		"message":   msgBackendOK,
		"timestamp": s.now().Format(timestampLayout),
	})
}

// handleBanner handles GET / on the interview service.
func (s *Server) handleBanner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s.banner)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: string(healthuc.Healthy), Checks: map[string]string{}})
		return
	}

	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// readSubmission parses the multipart ranking form. With requireFields set, a form
// lacking job_description or the resumes key is an ErrMissingField error; a resumes
// key carrying no files yields an empty document list.
func (s *Server) readSubmission(
	w http.ResponseWriter, r *http.Request, requireFields bool,
) (downstream.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) && requireFields {
			return downstream.Submission{}, domain.ErrMissingField
		}
		return downstream.Submission{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	form := r.MultipartForm

	jdValues, hasJD := form.Value[downstream.FieldJobDescription]
	fileHeaders, hasFiles := form.File[downstream.FieldResumes]
	// An empty file input arrives as a value, not a file.
	_, hasEmptyResumes := form.Value[downstream.FieldResumes]

	sub := downstream.Submission{
		HasJobDescription: hasJD,
		HasResumes:        hasFiles || hasEmptyResumes,
	}
	if requireFields && (!sub.HasJobDescription || !sub.HasResumes) {
		return downstream.Submission{}, domain.ErrMissingField
	}
	if len(jdValues) > 0 {
		sub.JobDescription = jdValues[0]
	}

	sub.Files = make([]document.Document, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		payload, err := readPart(fh)
		if err != nil {
			return downstream.Submission{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		sub.Files = append(sub.Files, document.New(fh.Filename, fh.Header.Get("Content-Type"), payload))
	}
	return sub, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
