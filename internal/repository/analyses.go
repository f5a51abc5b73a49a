package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	GetByID(ctx context.Context, id string) (*models.Analysis, error)
	ListByDocument(ctx context.Context, documentID string) ([]models.Analysis, error)
	Complete(ctx context.Context, id, content string, findings []string, confidence float64) error
	Fail(ctx context.Context, id, message string) error
}

type analysisRepository struct {
	db *sqlx.DB
}

func NewAnalysisRepository(db *sqlx.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

const analysisColumns = `id, document_id, persona_id, analysis_type, custom_instructions, status,
	analysis_content, key_findings, confidence_score, error_message, created_at, updated_at,
	completed_at`

func (r *analysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	query := `
		INSERT INTO analyses (id, document_id, persona_id, analysis_type, custom_instructions, status,
			analysis_content, key_findings, confidence_score, error_message, created_at, updated_at,
			completed_at)
		VALUES (:id, :document_id, :persona_id, :analysis_type, :custom_instructions, :status,
			:analysis_content, :key_findings, :confidence_score, :error_message, :created_at, :updated_at,
			:completed_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, analysis)
	return err
}

func (r *analysisRepository) GetByID(ctx context.Context, id string) (*models.Analysis, error) {
	var analysis models.Analysis

	query := r.db.Rebind(`SELECT ` + analysisColumns + ` FROM analyses WHERE id = ?`)
	err := r.db.GetContext(ctx, &analysis, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &analysis, nil
}

func (r *analysisRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Analysis, error) {
	analyses := []models.Analysis{}

	query := r.db.Rebind(`SELECT ` + analysisColumns + ` FROM analyses
		WHERE document_id = ? ORDER BY created_at DESC`)
	if err := r.db.SelectContext(ctx, &analyses, query, documentID); err != nil {
		return nil, err
	}

	return analyses, nil
}

// Complete moves a processing analysis to completed. Rows in any other state
// are left alone so the transition happens at most once.
func (r *analysisRepository) Complete(ctx context.Context, id, content string, findings []string, confidence float64) error {
	query := r.db.Rebind(`
		UPDATE analyses
		SET status = ?, analysis_content = ?, key_findings = ?, confidence_score = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`)

	now := time.Now().UTC()
	return r.transition(ctx, query,
		models.AnalysisStatusCompleted, content, models.StringList(findings), confidence,
		now, now, id, models.AnalysisStatusProcessing)
}

func (r *analysisRepository) Fail(ctx context.Context, id, message string) error {
	query := r.db.Rebind(`
		UPDATE analyses
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`)

	return r.transition(ctx, query,
		models.AnalysisStatusFailed, message, time.Now().UTC(), id, models.AnalysisStatusProcessing)
}

func (r *analysisRepository) transition(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotProcessing
	}

	return nil
}
