package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/antonvlasov/documind/internal/core/domain"
	"github.com/antonvlasov/documind/internal/core/ports"
)

type accountsFake struct {
	registerErr error
	authErr     error
	registered  []string
}

func (f *accountsFake) Register(_ context.Context, username, _ string) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, username)
	return nil
}

func (f *accountsFake) Authenticate(context.Context, string, string) error {
	return f.authErr
}

type analyzerFake struct {
	result *domain.Analysis
	err    error
	calls  int
}

func (f *analyzerFake) Analyze(context.Context, domain.DocumentImage) (*domain.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type historyServiceFake struct {
	records  []domain.AnalysisRecord
	recorded []domain.AnalysisRecord
}

func (f *historyServiceFake) Record(_ context.Context, username, filename, category, summary string) (*domain.AnalysisRecord, error) {
	rec := domain.AnalysisRecord{
		ID:        int64(len(f.recorded) + 1),
		Username:  username,
		Timestamp: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		Filename:  filename,
		Category:  category,
		Summary:   summary,
	}
	f.recorded = append(f.recorded, rec)
	return &rec, nil
}

func (f *historyServiceFake) History(context.Context, string) ([]domain.AnalysisRecord, error) {
	return f.records, nil
}

type modelsOKFake struct{}

func (modelsOKFake) Models() (ports.FeatureVectorizer, ports.CategoryClassifier, error) {
	return nil, nil, nil
}

type modelsDownFake struct{}

func (modelsDownFake) Models() (ports.FeatureVectorizer, ports.CategoryClassifier, error) {
	return nil, nil, domain.WrapError(domain.ErrModelsUnavailable, "load artifacts", errors.New("missing file"))
}

type storageFake struct {
	saved map[string][]byte
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[key] = b
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "open object", errors.New("no such key"))
}

func newTestHandler(t *testing.T, accounts *accountsFake, analyzer *analyzerFake, history *historyServiceFake, models ports.ModelProvider, storage *storageFake, limiter *rate.Limiter) http.Handler {
	t.Helper()
	rt := NewRouter(accounts, analyzer, history, models, storage, nil, Options{
		Service:        "test",
		AnalyzeLimiter: limiter,
	})
	return rt.Handler()
}

func multipartUpload(t *testing.T, filename, contentType string, body []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(body); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func TestRegisterCreatesAccount(t *testing.T) {
	accounts := &accountsFake{}
	h := newTestHandler(t, accounts, &analyzerFake{}, &historyServiceFake{}, modelsOKFake{}, &storageFake{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/register", strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rr.Code)
	}
	if len(accounts.registered) != 1 || accounts.registered[0] != "alice" {
		t.Fatalf("registered = %v", accounts.registered)
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	accounts := &accountsFake{
		registerErr: domain.WrapError(domain.ErrAlreadyExists, "create user", errors.New("duplicate key")),
	}
	h := newTestHandler(t, accounts, &analyzerFake{}, &historyServiceFake{}, modelsOKFake{}, &storageFake{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/register", strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != domain.ErrAlreadyExists.Error() {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestLoginRejectedIsUnauthorized(t *testing.T) {
	accounts := &accountsFake{
		authErr: domain.WrapError(domain.ErrAuthRejected, "authenticate", errors.New("password mismatch")),
	}
	h := newTestHandler(t, accounts, &analyzerFake{}, &historyServiceFake{}, modelsOKFake{}, &storageFake{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestAnalyzeRequiresUsername(t *testing.T) {
	analyzer := &analyzerFake{result: &domain.Analysis{}}
	h := newTestHandler(t, &accountsFake{}, analyzer, &historyServiceFake{}, modelsOKFake{}, &storageFake{}, nil)

	body, contentType := multipartUpload(t, "scan.png", "image/png", []byte("pixels"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if analyzer.calls != 0 {
		t.Fatalf("analyzer ran %d times for an anonymous request", analyzer.calls)
	}
}

func TestAnalyzeReturnsResultAndRecord(t *testing.T) {
	analyzer := &analyzerFake{result: &domain.Analysis{
		Category: "invoice",
		Summary:  "A water bill for March.",
		RawText:  "City Water Utility invoice...",
	}}
	history := &historyServiceFake{}
	storage := &storageFake{}
	h := newTestHandler(t, &accountsFake{}, analyzer, history, modelsOKFake{}, storage, nil)

	body, contentType := multipartUpload(t, "bill.png", "image/png", []byte("pixels"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(usernameHeader, "alice")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp analyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Category != "invoice" || resp.Summary != "A water bill for March." {
		t.Fatalf("unexpected analysis %+v", resp.Analysis)
	}
	if resp.RecordID != 1 {
		t.Fatalf("RecordID = %d", resp.RecordID)
	}
	if len(history.recorded) != 1 || history.recorded[0].Username != "alice" || history.recorded[0].Filename != "bill.png" {
		t.Fatalf("recorded = %+v", history.recorded)
	}
	if len(storage.saved) != 1 {
		t.Fatalf("saved = %d objects, want 1", len(storage.saved))
	}
	for key := range storage.saved {
		if !strings.HasSuffix(key, ".png") {
			t.Fatalf("storage key %q does not keep the extension", key)
		}
	}
}

func TestAnalyzeEmptyTextIsUnprocessable(t *testing.T) {
	analyzer := &analyzerFake{
		err: domain.WrapError(domain.ErrEmptyText, "extract text", errors.New("blank page")),
	}
	history := &historyServiceFake{}
	h := newTestHandler(t, &accountsFake{}, analyzer, history, modelsOKFake{}, &storageFake{}, nil)

	body, contentType := multipartUpload(t, "blank.png", "image/png", []byte("pixels"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(usernameHeader, "alice")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	var respBody map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &respBody); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if respBody["error"] != "no text found" {
		t.Fatalf("error = %q", respBody["error"])
	}
	if len(history.recorded) != 0 {
		t.Fatalf("failed run must not be recorded, got %+v", history.recorded)
	}
}

func TestAnalyzeModelsUnavailableIsServiceUnavailable(t *testing.T) {
	analyzer := &analyzerFake{
		err: domain.WrapError(domain.ErrModelsUnavailable, "load models", errors.New("bad artifact")),
	}
	h := newTestHandler(t, &accountsFake{}, analyzer, &historyServiceFake{}, modelsDownFake{}, &storageFake{}, nil)

	body, contentType := multipartUpload(t, "scan.png", "image/png", []byte("pixels"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(usernameHeader, "alice")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	analyzer := &analyzerFake{result: &domain.Analysis{Category: "note"}}
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	h := newTestHandler(t, &accountsFake{}, analyzer, &historyServiceFake{}, modelsOKFake{}, &storageFake{}, limiter)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		body, contentType := multipartUpload(t, "scan.png", "image/png", []byte("pixels"))
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(usernameHeader, "alice")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rr.Code, want)
		}
	}
}

func TestHistoryReturnsRecords(t *testing.T) {
	history := &historyServiceFake{records: []domain.AnalysisRecord{
		{ID: 2, Username: "alice", Filename: "b.png", Category: "receipt"},
		{ID: 1, Username: "alice", Filename: "a.png", Category: "invoice"},
	}}
	h := newTestHandler(t, &accountsFake{}, &analyzerFake{}, history, modelsOKFake{}, &storageFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req.Header.Set(usernameHeader, "alice")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Records []domain.AnalysisRecord `json:"records"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Records) != 2 || resp.Records[0].ID != 2 {
		t.Fatalf("records = %+v", resp.Records)
	}
}

func TestHistoryExportIsWorkbookAttachment(t *testing.T) {
	history := &historyServiceFake{records: []domain.AnalysisRecord{
		{ID: 1, Username: "alice", Filename: "a.png", Category: "invoice", Summary: "Water bill."},
	}}
	h := newTestHandler(t, &accountsFake{}, &analyzerFake{}, history, modelsOKFake{}, &storageFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/history/export", nil)
	req.Header.Set(usernameHeader, "alice")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "history.xlsx") {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if rr.Body.Len() == 0 {
		t.Fatalf("empty export body")
	}
}

func TestHealthzReflectsModelState(t *testing.T) {
	h := newTestHandler(t, &accountsFake{}, &analyzerFake{}, &historyServiceFake{}, modelsDownFake{}, &storageFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	h = newTestHandler(t, &accountsFake{}, &analyzerFake{}, &historyServiceFake{}, modelsOKFake{}, &storageFake{}, nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	h := newTestHandler(t, &accountsFake{}, &analyzerFake{}, &historyServiceFake{}, modelsOKFake{}, &storageFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(requestIDHeader); got != "fixed-id" {
		t.Fatalf("request id = %q, want fixed-id", got)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing generated request id")
	}
}
