package models

import "time"

type SearchResult struct {
	ID             string    `json:"id" db:"id"`
	Query          string    `json:"query" db:"query"`
	DocumentID     string    `json:"document_id" db:"document_id"`
	RelevanceScore float64   `json:"relevance_score" db:"relevance_score"`
	MatchedContent string    `json:"matched_content" db:"matched_content"`
	PersonaTag     *string   `json:"persona_tag,omitempty" db:"persona_tag"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
