package models

import "time"

const (
	AnalysisStatusPending    = "pending"
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusFailed     = "failed"

	DefaultAnalysisType = "environmental"
)

type Analysis struct {
	ID                 string     `json:"id" db:"id"`
	DocumentID         string     `json:"document_id" db:"document_id"`
	PersonaID          *string    `json:"persona_id,omitempty" db:"persona_id"`
	AnalysisType       string     `json:"analysis_type" db:"analysis_type"`
	CustomInstructions *string    `json:"custom_instructions,omitempty" db:"custom_instructions"`
	Status             string     `json:"status" db:"status"`
	AnalysisContent    *string    `json:"analysis_content,omitempty" db:"analysis_content"`
	KeyFindings        StringList `json:"key_findings" db:"key_findings"`
	ConfidenceScore    *float64   `json:"confidence_score,omitempty" db:"confidence_score"`
	ErrorMessage       *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type AnalysisRequest struct {
	DocumentID         string `json:"document_id"`
	AnalysisType       string `json:"analysis_type,omitempty"`
	PersonaID          string `json:"persona_id,omitempty"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

type AnalysisResponse struct {
	Success    bool   `json:"success"`
	AnalysisID string `json:"analysis_id"`
	Message    string `json:"message"`
}
