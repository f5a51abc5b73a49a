package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/llm"
	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/BerylCAtieno/eia-document-api/internal/queue"
	"github.com/BerylCAtieno/eia-document-api/internal/repository"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
)

// Placeholder findings and confidence stored with every completed analysis.
var defaultKeyFindings = []string{
	"Environmental impact assessment reviewed",
	"Mitigation measures require verification",
	"Regulatory compliance should be confirmed",
}

const defaultConfidenceScore = 0.85

type AnalysisService interface {
	TriggerAnalysis(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error)
	GetAnalysis(ctx context.Context, id string) (*models.Analysis, error)
	ListDocumentAnalyses(ctx context.Context, documentID string) ([]models.Analysis, error)
	HandleJob(ctx context.Context, job queue.Job) error
}

type analysisService struct {
	documents repository.DocumentRepository
	personas  repository.PersonaRepository
	analyses  repository.AnalysisRepository
	llm       llm.Client
	logger    *utils.Logger
	metrics   *metrics.Metrics
}

func NewAnalysisService(
	documents repository.DocumentRepository,
	personas repository.PersonaRepository,
	analyses repository.AnalysisRepository,
	client llm.Client,
	logger *utils.Logger,
	m *metrics.Metrics,
) AnalysisService {
	return &analysisService{
		documents: documents,
		personas:  personas,
		analyses:  analyses,
		llm:       client,
		logger:    logger,
		metrics:   m,
	}
}

func (s *analysisService) TriggerAnalysis(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	analysisID, err := s.run(ctx, req)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisResponse{
		Success:    true,
		AnalysisID: analysisID,
		Message:    "Analysis completed successfully",
	}, nil
}

// run performs the analysis and returns the analysis id whenever a row was
// created, including on failure.
func (s *analysisService) run(ctx context.Context, req *models.AnalysisRequest) (string, error) {
	documentID := strings.TrimSpace(req.DocumentID)
	if documentID == "" {
		return "", utils.NewBadRequestError("document_id is required")
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", documentID)
		return "", utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return "", utils.NewNotFoundError("Document not found")
	}

	var persona *models.Persona
	if req.PersonaID != "" {
		persona, err = s.personas.GetByID(ctx, req.PersonaID)
		if err != nil {
			s.logger.Error("Failed to get persona", "error", err, "id", req.PersonaID)
			return "", utils.NewInternalError("Failed to retrieve persona")
		}
		if persona == nil {
			return "", utils.NewNotFoundError("Persona not found")
		}
	}

	if s.llm == nil {
		return "", utils.NewUpstreamError("No LLM provider configured for analysis", nil)
	}

	analysisType := strings.TrimSpace(req.AnalysisType)
	if analysisType == "" {
		analysisType = models.DefaultAnalysisType
	}

	now := time.Now().UTC()
	analysis := &models.Analysis{
		ID:                 utils.GenerateID(),
		DocumentID:         doc.ID,
		AnalysisType:       analysisType,
		CustomInstructions: optionalString(req.CustomInstructions),
		Status:             models.AnalysisStatusProcessing,
		KeyFindings:        models.StringList{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if persona != nil {
		analysis.PersonaID = &persona.ID
	}

	if err := s.analyses.Create(ctx, analysis); err != nil {
		s.logger.Error("Failed to create analysis", "error", err, "document_id", doc.ID)
		return "", utils.NewInternalError("Failed to create analysis record")
	}

	log := s.logger.With("analysis_id", analysis.ID, "document_id", doc.ID)
	log.Info("Starting document analysis", "analysis_type", analysisType)

	prompt := llm.AnalysisPrompt(llm.AnalysisPromptInput{
		Title:              doc.Title,
		Content:            derefString(doc.Content),
		AnalysisType:       analysisType,
		PersonaPrompt:      personaPrompt(persona),
		CustomInstructions: req.CustomInstructions,
	})

	reply, err := s.llm.GenerateText(ctx, prompt)
	if err != nil {
		log.Error("Failed to analyze document", "error", err)
		s.markFailed(ctx, analysis.ID, err)
		return analysis.ID, utils.NewUpstreamError("Failed to analyze document with LLM", err)
	}

	// persisted even when the request context is cancelled
	persistCtx := context.WithoutCancel(ctx)
	if err := s.analyses.Complete(persistCtx, analysis.ID, reply, defaultKeyFindings, defaultConfidenceScore); err != nil {
		log.Error("Failed to save analysis results", "error", err)
		s.markFailed(ctx, analysis.ID, err)
		return analysis.ID, utils.NewInternalError("Failed to save analysis results")
	}

	s.metrics.RecordAnalysis(models.AnalysisStatusCompleted)
	log.Info("Document analyzed successfully", "content_length", len(reply))

	return analysis.ID, nil
}

// markFailed moves the analysis to failed and counts it only when the row
// actually left processing.
func (s *analysisService) markFailed(ctx context.Context, id string, cause error) {
	err := s.analyses.Fail(context.WithoutCancel(ctx), id, cause.Error())
	switch {
	case err == nil:
		s.metrics.RecordAnalysis(models.AnalysisStatusFailed)
	case errors.Is(err, repository.ErrNotProcessing):
		s.logger.Warn("Analysis already finalised", "analysis_id", id)
	default:
		s.logger.Error("Failed to mark analysis as failed", "error", err, "analysis_id", id)
	}
}

// HandleJob runs a queued analysis. Failures after the analysis row exists are
// recorded on the row and not retried.
func (s *analysisService) HandleJob(ctx context.Context, job queue.Job) error {
	analysisID, err := s.run(ctx, &models.AnalysisRequest{DocumentID: job.DocumentID})
	if err == nil {
		return nil
	}

	appErr := utils.AsAppError(err)
	if analysisID != "" || appErr.Code == utils.CodeNotFound || appErr.Code == utils.CodeValidation {
		return queue.Permanent(err)
	}
	return err
}

func (s *analysisService) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	analysis, err := s.analyses.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get analysis", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve analysis")
	}
	if analysis == nil {
		return nil, utils.NewNotFoundError("Analysis not found")
	}
	return analysis, nil
}

func (s *analysisService) ListDocumentAnalyses(ctx context.Context, documentID string) ([]models.Analysis, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", documentID)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return nil, utils.NewNotFoundError("Document not found")
	}

	analyses, err := s.analyses.ListByDocument(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to list analyses", "error", err, "document_id", documentID)
		return nil, utils.NewInternalError("Failed to list analyses")
	}
	return analyses, nil
}

func personaPrompt(p *models.Persona) string {
	if p == nil {
		return ""
	}
	return p.SystemPrompt
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
