package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// Getters return (nil, nil) when the row does not exist; services map that to
// a not-found error.

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, limit int) ([]models.Document, error)
	ListWithContent(ctx context.Context, limit int) ([]models.Document, error)
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, title, description, file_name, original_filename, content_type,
	file_size, content, storage_path, status, created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, title, description, file_name, original_filename, content_type,
			file_size, content, storage_path, status, created_at, updated_at)
		VALUES (:id, :title, :description, :file_name, :original_filename, :content_type,
			:file_size, :content, :storage_path, :status, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document

	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)
	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context, limit int) ([]models.Document, error) {
	docs := []models.Document{}

	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &docs, query, limit); err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *documentRepository) ListWithContent(ctx context.Context, limit int) ([]models.Document, error) {
	docs := []models.Document{}

	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documents
		WHERE content IS NOT NULL ORDER BY created_at DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &docs, query, limit); err != nil {
		return nil, err
	}

	return docs, nil
}
