package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/BerylCAtieno/eia-document-api/internal/services"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/gorilla/mux"
)

type DocumentHandler struct {
	documents services.DocumentService
	analyses  services.AnalysisService
	logger    *utils.Logger
}

func NewDocumentHandler(documents services.DocumentService, analyses services.AnalysisService, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		analyses:  analyses,
		logger:    logger,
	}
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	docs, err := h.documents.ListDocuments(r.Context(), limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, docs)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.GetDocument(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, doc)
}

// DownloadDocument streams the original uploaded file.
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, rc, err := h.documents.OpenDocumentFile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalFilename}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("Failed to stream document", "error", err, "id", doc.ID)
	}
}

func (h *DocumentHandler) ListDocumentAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.analyses.ListDocumentAnalyses(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, analyses)
}

func (h *DocumentHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.analyses.GetAnalysis(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, analysis)
}

func (h *DocumentHandler) ListSearchResults(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	results, err := h.documents.ListSearchResults(r.Context(), r.URL.Query().Get("document_id"), limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, results)
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, utils.NewBadRequestError("limit must be a positive integer")
	}
	return limit, nil
}
