package repository

import (
	"context"

	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type SearchResultRepository interface {
	Create(ctx context.Context, result *models.SearchResult) error
	List(ctx context.Context, documentID string, limit int) ([]models.SearchResult, error)
}

type searchResultRepository struct {
	db *sqlx.DB
}

func NewSearchResultRepository(db *sqlx.DB) SearchResultRepository {
	return &searchResultRepository{db: db}
}

func (r *searchResultRepository) Create(ctx context.Context, result *models.SearchResult) error {
	query := `
		INSERT INTO search_results (id, query, document_id, relevance_score, matched_content,
			persona_tag, created_at)
		VALUES (:id, :query, :document_id, :relevance_score, :matched_content, :persona_tag, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, result)
	return err
}

// List returns the newest results first, optionally restricted to one document.
func (r *searchResultRepository) List(ctx context.Context, documentID string, limit int) ([]models.SearchResult, error) {
	results := []models.SearchResult{}

	query := `SELECT id, query, document_id, relevance_score, matched_content, persona_tag, created_at
		FROM search_results`
	args := []any{}
	if documentID != "" {
		query += ` WHERE document_id = ?`
		args = append(args, documentID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	if err := r.db.SelectContext(ctx, &results, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return results, nil
}
