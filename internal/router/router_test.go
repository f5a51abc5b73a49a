package router

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/BerylCAtieno/eia-document-api/internal/db"
	"github.com/BerylCAtieno/eia-document-api/internal/handlers"
	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/queue"
	"github.com/BerylCAtieno/eia-document-api/internal/repository"
	"github.com/BerylCAtieno/eia-document-api/internal/services"
	"github.com/BerylCAtieno/eia-document-api/internal/storage"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoLLM struct{}

func (echoLLM) Provider() string { return "echo" }
func (echoLLM) GenerateText(context.Context, string) (string, error) {
	return "reply", nil
}
func (echoLLM) GenerateWithImage(context.Context, string, string, []byte) (string, error) {
	return "reply", nil
}

func newHandler(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger := utils.NewLoggerWithWriter("error", io.Discard)
	m := metrics.NewMetrics()

	documentRepo := repository.NewDocumentRepository(database)
	personaRepo := repository.NewPersonaRepository(database)
	analysisRepo := repository.NewAnalysisRepository(database)
	searchRepo := repository.NewSearchResultRepository(database)

	svc := Services{
		Documents: services.NewDocumentService(documentRepo, searchRepo, storage.NewMemoryStorage(),
			queue.NewMemoryQueue(10), services.DocumentOptions{}, logger, m),
		Analyses: services.NewAnalysisService(documentRepo, personaRepo, analysisRepo, echoLLM{}, logger, m),
		Chat:     services.NewChatService(documentRepo, personaRepo, searchRepo, echoLLM{}, nil, services.ChatOptions{}, logger),
		Pages:    services.NewPageService(echoLLM{}, 0, logger),
		Personas: services.NewPersonaService(personaRepo, echoLLM{}, logger),
	}

	return NewRouter(svc, handlers.FunctionOptions{}, m, logger), m
}

func TestHealth(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightOnEveryEndpoint(t *testing.T) {
	h, _ := newHandler(t)

	for _, path := range []string{
		"/api/v1/analyze-document",
		"/api/v1/chat",
		"/api/v1/analyze-page",
		"/api/v1/generate-persona",
		"/api/v1/upload-document",
		"/api/v1/personas/abc",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"), path)
	}
}

func TestChatThroughRouter(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(`{"message":"hello there"}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"reply","sources":[],"isOnlineSearch":false,"success":true}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `eia_http_requests_total{method="POST",route="/api/v1/chat",status="200"} 1`)

}

func TestFunctionErrorShape(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-document", bytes.NewBufferString(`{"document_id":"missing"}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Document not found","code":"not_found"}`, rec.Body.String())
}
