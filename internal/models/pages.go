package models

type PageAnalysisRequest struct {
	ImageData  string `json:"imageData"`
	Prompt     string `json:"prompt"`
	PageNumber int    `json:"pageNumber"`
}

// PageAnalysis is the structured reply expected from the multimodal model.
// RawText is only set on the fallback path when the reply was not JSON.
type PageAnalysis struct {
	SubjectRelevance float64  `json:"subjectRelevance"`
	Summary          string   `json:"summary"`
	KeyPoints        []string `json:"keyPoints"`
	Entities         []string `json:"entities"`
	PageType         string   `json:"pageType"`
	RawText          string   `json:"rawText,omitempty"`
}

type PageAnalysisResponse struct {
	Analysis   PageAnalysis `json:"analysis"`
	PageNumber int          `json:"pageNumber"`
	Error      string       `json:"error,omitempty"`
}

type PageImage struct {
	ImageData  string `json:"imageData"`
	PageNumber int    `json:"pageNumber"`
}

type BatchPageAnalysisRequest struct {
	Prompt string      `json:"prompt"`
	Pages  []PageImage `json:"pages"`
}

type BatchPageAnalysisResponse struct {
	Results []PageAnalysisResponse `json:"results"`
}
