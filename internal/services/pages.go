package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/llm"
	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"golang.org/x/time/rate"
)

const (
	PageTypeUnknown  = "unknown"
	defaultImageMIME = "image/png"
)

var errEmptyImage = errors.New("empty image data")

type PageService interface {
	AnalyzePage(ctx context.Context, req *models.PageAnalysisRequest) (*models.PageAnalysisResponse, error)
	AnalyzePages(ctx context.Context, req *models.BatchPageAnalysisRequest) (*models.BatchPageAnalysisResponse, error)
}

type pageService struct {
	llm     llm.Client
	limiter *rate.Limiter
	logger  *utils.Logger
}

// NewPageService creates the page analyzer. interval spaces out model calls
// in batch requests; zero disables pacing.
func NewPageService(client llm.Client, interval time.Duration, logger *utils.Logger) PageService {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &pageService{
		llm:     client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (s *pageService) AnalyzePage(ctx context.Context, req *models.PageAnalysisRequest) (*models.PageAnalysisResponse, error) {
	image, mimeType, err := DecodeImage(req.ImageData)
	if errors.Is(err, errEmptyImage) {
		return nil, utils.NewBadRequestError("imageData is required")
	}
	if err != nil {
		return nil, utils.NewBadRequestError("imageData must be base64 encoded")
	}

	if s.llm == nil {
		return nil, utils.NewUpstreamError("No LLM provider configured for page analysis", nil)
	}

	reply, err := s.llm.GenerateWithImage(ctx, llm.PagePrompt(req.Prompt), mimeType, image)
	if err != nil {
		s.logger.Error("Failed to analyze page", "error", err, "page", req.PageNumber)
		return nil, utils.NewUpstreamError("Failed to analyze page with LLM", err)
	}

	analysis, ok := ParsePageAnalysis(reply)
	if !ok {
		s.logger.Warn("Page analysis reply was not valid JSON, using fallback", "page", req.PageNumber)
	}

	return &models.PageAnalysisResponse{
		Analysis:   analysis,
		PageNumber: req.PageNumber,
	}, nil
}

// AnalyzePages analyzes pages one at a time, paced by the limiter. A failing
// page is reported in its result and the batch continues.
func (s *pageService) AnalyzePages(ctx context.Context, req *models.BatchPageAnalysisRequest) (*models.BatchPageAnalysisResponse, error) {
	if len(req.Pages) == 0 {
		return nil, utils.NewBadRequestError("pages is required")
	}

	results := make([]models.PageAnalysisResponse, 0, len(req.Pages))
	for _, page := range req.Pages {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, utils.NewInternalError("Page analysis cancelled")
		}

		resp, err := s.AnalyzePage(ctx, &models.PageAnalysisRequest{
			ImageData:  page.ImageData,
			Prompt:     req.Prompt,
			PageNumber: page.PageNumber,
		})
		if err != nil {
			results = append(results, models.PageAnalysisResponse{
				Analysis:   emptyPageAnalysis(),
				PageNumber: page.PageNumber,
				Error:      utils.AsAppError(err).Message,
			})
			continue
		}
		results = append(results, *resp)
	}

	s.logger.Info("Batch page analysis finished", "pages", len(req.Pages))
	return &models.BatchPageAnalysisResponse{Results: results}, nil
}

// DecodeImage decodes base64 image data, optionally wrapped in a data URL.
func DecodeImage(data string) ([]byte, string, error) {
	data = strings.TrimSpace(data)

	var mimeType string
	if strings.HasPrefix(data, "data:") {
		header, payload, found := strings.Cut(data, ",")
		if !found {
			return nil, "", errors.New("malformed data URL")
		}
		mimeType, _, _ = strings.Cut(strings.TrimPrefix(header, "data:"), ";")
		data = payload
	}

	if data == "" {
		return nil, "", errEmptyImage
	}

	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		image, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, "", err
		}
	}
	if len(image) == 0 {
		return nil, "", errEmptyImage
	}

	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(image)
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = defaultImageMIME
		}
	}

	return image, mimeType, nil
}

// ParsePageAnalysis parses a model reply into a PageAnalysis. When the reply
// is not a JSON object it returns the fallback analysis carrying the raw text
// and false.
func ParsePageAnalysis(reply string) (models.PageAnalysis, bool) {
	var analysis models.PageAnalysis
	body := strings.TrimSpace(llm.StripCodeFence(reply))
	if !strings.HasPrefix(body, "{") || json.Unmarshal([]byte(body), &analysis) != nil {
		return models.PageAnalysis{
			SubjectRelevance: 0,
			Summary:          reply,
			KeyPoints:        []string{},
			Entities:         []string{},
			PageType:         PageTypeUnknown,
			RawText:          reply,
		}, false
	}

	analysis.SubjectRelevance = clamp(analysis.SubjectRelevance, 0, 100)
	if analysis.KeyPoints == nil {
		analysis.KeyPoints = []string{}
	}
	if analysis.Entities == nil {
		analysis.Entities = []string{}
	}
	if analysis.PageType == "" {
		analysis.PageType = PageTypeUnknown
	}
	analysis.RawText = ""

	return analysis, true
}

func emptyPageAnalysis() models.PageAnalysis {
	return models.PageAnalysis{
		KeyPoints: []string{},
		Entities:  []string{},
		PageType:  PageTypeUnknown,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
