package router

import (
	"net/http"

	"github.com/BerylCAtieno/eia-document-api/internal/handlers"
	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/middleware"
	"github.com/BerylCAtieno/eia-document-api/internal/services"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"

	"github.com/gorilla/mux"
)

type Services struct {
	Documents services.DocumentService
	Analyses  services.AnalysisService
	Chat      services.ChatService
	Pages     services.PageService
	Personas  services.PersonaService
}

func NewRouter(svc Services, opts handlers.FunctionOptions, m *metrics.Metrics, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Recovery(logger))

	fnHandler := handlers.NewFunctionHandler(svc.Documents, svc.Analyses, svc.Chat, svc.Pages, svc.Personas, opts, logger)
	docHandler := handlers.NewDocumentHandler(svc.Documents, svc.Analyses, logger)
	personaHandler := handlers.NewPersonaHandler(svc.Personas, logger)

	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	// Routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Function endpoints
	api.HandleFunc("/analyze-document", fnHandler.AnalyzeDocument).Methods(http.MethodPost)
	api.HandleFunc("/chat", fnHandler.Chat).Methods(http.MethodPost)
	api.HandleFunc("/analyze-page", fnHandler.AnalyzePage).Methods(http.MethodPost)
	api.HandleFunc("/analyze-pages", fnHandler.AnalyzePages).Methods(http.MethodPost)
	api.HandleFunc("/generate-persona", fnHandler.GeneratePersona).Methods(http.MethodPost)
	api.HandleFunc("/upload-document", fnHandler.UploadDocument).Methods(http.MethodPost)

	// Document endpoints
	api.HandleFunc("/documents", docHandler.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", docHandler.GetDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/file", docHandler.DownloadDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/analyses", docHandler.ListDocumentAnalyses).Methods(http.MethodGet)
	api.HandleFunc("/analyses/{id}", docHandler.GetAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/search-results", docHandler.ListSearchResults).Methods(http.MethodGet)

	// Persona endpoints
	api.HandleFunc("/personas", personaHandler.ListPersonas).Methods(http.MethodGet)
	api.HandleFunc("/personas", personaHandler.CreatePersona).Methods(http.MethodPost)
	api.HandleFunc("/personas/{id}", personaHandler.GetPersona).Methods(http.MethodGet)
	api.HandleFunc("/personas/{id}", personaHandler.UpdatePersona).Methods(http.MethodPut)
	api.HandleFunc("/personas/{id}", personaHandler.DeletePersona).Methods(http.MethodDelete)

	// CORS wraps the router so preflight requests reach it for every path.
	return middleware.CORS()(r)
}
