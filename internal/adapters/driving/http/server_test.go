package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockAskService records calls so tests can assert retrieval never ran.
type mockAskService struct {
	matches []domain.Match
	info    *domain.CollectionInfo
	err     error
	calls   int
	lastReq domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	if err := req.Validate(100); err != nil {
		return nil, err
	}
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return domain.NewAnswer(req.Question, m.matches), nil
}

func (m *mockAskService) Info(_ context.Context) (*domain.CollectionInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

func newTestServer(t *testing.T, ask *mockAskService) *Server {
	t.Helper()
	server, err := NewServer(ask, Config{})
	require.NoError(t, err)
	return server
}

func doRequest(server *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewServer_RequiresAskService(t *testing.T) {
	_, err := NewServer(nil, Config{})
	assert.ErrorIs(t, err, ErrMissingAskService)
}

func TestRoot(t *testing.T) {
	rec := doRequest(newTestServer(t, &mockAskService{}), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Banner, decode(t, rec)["message"])
}

func TestHealthz(t *testing.T) {
	ask := &mockAskService{info: &domain.CollectionInfo{Name: "iso27001_controls", Count: 12}}

	rec := doRequest(newTestServer(t, ask), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "iso27001_controls", body["collection"])
	assert.Equal(t, float64(12), body["count"])
}

func TestAsk_ReturnsAnswerAndContexts(t *testing.T) {
	ask := &mockAskService{matches: []domain.Match{
		{ChunkID: "chunk-3", Content: "A.7.7 Clear desk and clear screen", Score: 0.8},
		{ChunkID: "chunk-1", Content: "A.5.1 Policies for information security", Score: 0.3},
	}}

	rec := doRequest(newTestServer(t, ask), http.MethodPost, "/ask",
		`{"question": "What is a clean desk policy?", "top_k": 2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "What is a clean desk policy?", body["question"])
	assert.Equal(t, "A.7.7 Clear desk and clear screen", body["answer"])
	assert.Equal(t, []any{"A.7.7 Clear desk and clear screen", "A.5.1 Policies for information security"}, body["contexts"])
	assert.Equal(t, 2, ask.lastReq.TopK)
}

func TestAsk_DefaultTopK(t *testing.T) {
	ask := &mockAskService{}

	rec := doRequest(newTestServer(t, ask), http.MethodPost, "/ask", `{"question": "access control"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DefaultTopK, ask.lastReq.TopK)
}

func TestAsk_NoMatchesIsSentinel(t *testing.T) {
	rec := doRequest(newTestServer(t, &mockAskService{}), http.MethodPost, "/ask", `{"question": "anything"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, domain.NoGuidanceAnswer, body["answer"])
	assert.Equal(t, []any{}, body["contexts"])
}

func TestAsk_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"question":`},
		{"empty body", ``},
		{"numeric question", `{"question": 42}`},
		{"missing question", `{"top_k": 3}`},
		{"blank question", `{"question": "   "}`},
		{"zero top_k", `{"question": "q", "top_k": 0}`},
		{"negative top_k", `{"question": "q", "top_k": -2}`},
		{"string top_k", `{"question": "q", "top_k": "3"}`},
		{"top_k above ceiling", `{"question": "q", "top_k": 101}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ask := &mockAskService{}

			rec := doRequest(newTestServer(t, ask), http.MethodPost, "/ask", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec), "error")
			assert.Zero(t, ask.calls, "retrieval must not run")
		})
	}
}

func TestAsk_BackendErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"embedding down", fmt.Errorf("embed question: %w", domain.ErrEmbeddingUnavailable), http.StatusServiceUnavailable},
		{"store down", fmt.Errorf("query: %w", domain.ErrVectorStoreUnavailable), http.StatusServiceUnavailable},
		{"dimension mismatch", domain.ErrDimensionMismatch, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(newTestServer(t, &mockAskService{err: tt.err}), http.MethodPost, "/ask", `{"question": "q"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEqual(t, domain.NoGuidanceAnswer, decode(t, rec)["answer"])
		})
	}
}

func TestRequestID(t *testing.T) {
	server := newTestServer(t, &mockAskService{})

	rec := doRequest(server, http.MethodGet, "/", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	rec = doRequest(server, http.MethodGet, "/", "", requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	t.Run("preflight answered with 204", func(t *testing.T) {
		rec := doRequest(newTestServer(t, &mockAskService{}), http.MethodOptions, "/ask", "",
			"Origin", "https://app.example",
			"Access-Control-Request-Method", "POST",
			"Access-Control-Request-Headers", "Content-Type")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("disallowed origin gets no headers", func(t *testing.T) {
		server, err := NewServer(&mockAskService{}, Config{CORSOrigins: []string{"https://ok.example"}})
		require.NoError(t, err)

		rec := doRequest(server, http.MethodGet, "/", "", "Origin", "https://evil.example")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("x: %w", domain.ErrInvalidInput)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrEmbeddingUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.ErrNotFound))
}
