package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/BerylCAtieno/eia-document-api/internal/services"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
)

const (
	// room for multipart boundaries and the title/description fields
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20

	// DefaultUploadRate is the slowest client throughput, in bytes per
	// second, an upload's write deadline is sized for.
	DefaultUploadRate = 512 << 10
	// responseSlack covers persistence and encoding after the slow part.
	responseSlack = 30 * time.Second
)

// FunctionOptions sizes the function endpoints.
type FunctionOptions struct {
	MaxFileSize int64
	// PageBudget is the time allowed per page of a batch analysis,
	// including pacing. Zero leaves the server write timeout in place.
	PageBudget time.Duration
	UploadRate int64
}

// FunctionHandler serves the POST endpoints that replaced the edge functions.
type FunctionHandler struct {
	documents   services.DocumentService
	analyses    services.AnalysisService
	chat        services.ChatService
	pages       services.PageService
	personas    services.PersonaService
	maxFileSize int64
	pageBudget  time.Duration
	uploadRate  int64
	logger      *utils.Logger
}

func NewFunctionHandler(
	documents services.DocumentService,
	analyses services.AnalysisService,
	chat services.ChatService,
	pages services.PageService,
	personas services.PersonaService,
	opts FunctionOptions,
	logger *utils.Logger,
) *FunctionHandler {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = services.DefaultMaxFileSize
	}
	if opts.UploadRate <= 0 {
		opts.UploadRate = DefaultUploadRate
	}
	return &FunctionHandler{
		documents:   documents,
		analyses:    analyses,
		chat:        chat,
		pages:       pages,
		personas:    personas,
		maxFileSize: opts.MaxFileSize,
		pageBudget:  opts.PageBudget,
		uploadRate:  opts.UploadRate,
		logger:      logger,
	}
}

func (h *FunctionHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	resp, err := h.analyses.TriggerAnalysis(r.Context(), &req)
	if err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *FunctionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	resp, err := h.chat.Chat(r.Context(), &req)
	if err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *FunctionHandler) AnalyzePage(w http.ResponseWriter, r *http.Request) {
	var req models.PageAnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	resp, err := h.pages.AnalyzePage(r.Context(), &req)
	if err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *FunctionHandler) AnalyzePages(w http.ResponseWriter, r *http.Request) {
	var req models.BatchPageAnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	if h.pageBudget > 0 {
		h.extendWriteDeadline(w, time.Duration(len(req.Pages))*h.pageBudget+responseSlack)
	}

	resp, err := h.pages.AnalyzePages(r.Context(), &req)
	if err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *FunctionHandler) GeneratePersona(w http.ResponseWriter, r *http.Request) {
	var req models.GeneratePersonaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	resp, err := h.personas.GeneratePersona(r.Context(), &req)
	if err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *FunctionHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	limit := h.maxFileSize + multipartOverhead
	sizeErr := utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", h.maxFileSize>>20))

	// Check Content-Length first to reject oversized requests early
	if r.ContentLength > limit {
		respondFunctionError(w, h.logger, sizeErr)
		return
	}
	h.extendWriteDeadline(w, uploadBudget(r.ContentLength, limit, h.uploadRate))
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			respondFunctionError(w, h.logger, sizeErr)
			return
		}
		respondFunctionError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondFunctionError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	h.logger.Info("File upload attempt",
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"size", header.Size)

	req := &models.UploadRequest{
		File:        file,
		Size:        header.Size,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	resp, err := h.documents.UploadDocument(r.Context(), req)
	if err != nil {
		respondFunctionError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

// extendWriteDeadline replaces the server-wide write timeout for requests
// whose duration scales with their size.
func (h *FunctionHandler) extendWriteDeadline(w http.ResponseWriter, d time.Duration) {
	err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("Failed to extend write deadline", "error", err)
	}
}

// uploadBudget is the time to receive a body of contentLength bytes (or limit
// when unknown) at rate bytes per second, plus processing slack.
func uploadBudget(contentLength, limit, rate int64) time.Duration {
	size := contentLength
	if size <= 0 || size > limit {
		size = limit
	}
	return time.Duration(size/rate)*time.Second + responseSlack
}
