package httpadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/antonvlasov/documind/internal/core/domain"
	"github.com/antonvlasov/documind/internal/core/ports"
	"github.com/antonvlasov/documind/internal/observability/metrics"
	"github.com/antonvlasov/documind/internal/report/excel"
)

const usernameHeader = "X-Username"

type Options struct {
	Service        string
	MaxUploadBytes int64
	AnalyzeLimiter *rate.Limiter
}

// Router is the thin facade the interactive shell talks to. All document
// and history semantics live in the use cases; handlers only translate
// HTTP in and out.
type Router struct {
	accounts ports.AccountService
	analyzer ports.DocumentAnalyzer
	history  ports.HistoryService
	models   ports.ModelProvider
	storage  ports.ObjectStorage
	metrics  *metrics.PipelineMetrics
	opts     Options
}

func NewRouter(
	accounts ports.AccountService,
	analyzer ports.DocumentAnalyzer,
	history ports.HistoryService,
	models ports.ModelProvider,
	storage ports.ObjectStorage,
	pipelineMetrics *metrics.PipelineMetrics,
	opts Options,
) *Router {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.Service == "" {
		opts.Service = "api"
	}
	return &Router{
		accounts: accounts,
		analyzer: analyzer,
		history:  history,
		models:   models,
		storage:  storage,
		metrics:  pipelineMetrics,
		opts:     opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/register", rt.register)
	mux.HandleFunc("/v1/login", rt.login)
	mux.Handle("/v1/analyze", rateLimitMiddleware(rt.opts.AnalyzeLimiter, http.HandlerFunc(rt.analyze)))
	mux.HandleFunc("/v1/history", rt.listHistory)
	mux.HandleFunc("/v1/history/export", rt.exportHistory)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	if _, _, err := rt.models.Models(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  domain.ErrModelsUnavailable.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := rt.accounts.Register(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := rt.accounts.Authenticate(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": strings.TrimSpace(req.Username)})
}

type analyzeResponse struct {
	domain.Analysis
	RecordID  int64     `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	username := rt.requireUser(w, r)
	if username == "" {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload"})
		return
	}

	img := domain.DocumentImage{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}

	// Retaining the source is best effort; analysis proceeds either way.
	key := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	if err := rt.storage.Save(r.Context(), key, bytes.NewReader(data)); err != nil {
		slog.Warn("retain_upload_failed", "key", key, "error", err)
	}

	if rt.metrics != nil {
		rt.metrics.StartRun()
	}
	start := time.Now()
	analysis, err := rt.analyzer.Analyze(r.Context(), img)
	if rt.metrics != nil {
		rt.metrics.FinishRun(rt.opts.Service, time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := rt.history.Record(r.Context(), username, fileHeader.Filename, analysis.Category, analysis.Summary)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis:  *analysis,
		RecordID:  rec.ID,
		Timestamp: rec.Timestamp,
	})
}

func (rt *Router) listHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	username := rt.requireUser(w, r)
	if username == "" {
		return
	}

	records, err := rt.history.History(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	username := rt.requireUser(w, r)
	if username == "" {
		return
	}

	records, err := rt.history.History(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	workbook, err := excel.BuildHistoryWorkbook(records)
	if err != nil {
		writeError(w, err)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="history.xlsx"`)
	if err := workbook.Write(w); err != nil {
		slog.Error("write_history_export", "error", err)
	}
}

func (rt *Router) requireUser(w http.ResponseWriter, r *http.Request) string {
	username := strings.TrimSpace(r.Header.Get(usernameHeader))
	if username == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	return username
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": failureReason(err)})
}
