package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type PersonaRepository interface {
	Create(ctx context.Context, persona *models.Persona) error
	GetByID(ctx context.Context, id string) (*models.Persona, error)
	GetDefault(ctx context.Context) (*models.Persona, error)
	List(ctx context.Context) ([]models.Persona, error)
	Update(ctx context.Context, persona *models.Persona) error
	Delete(ctx context.Context, id string) (bool, error)
}

type personaRepository struct {
	db *sqlx.DB
}

func NewPersonaRepository(db *sqlx.DB) PersonaRepository {
	return &personaRepository{db: db}
}

const personaColumns = `id, name, description, system_prompt, expertise_areas, avatar_emoji,
	is_default, created_at, updated_at`

func (r *personaRepository) Create(ctx context.Context, persona *models.Persona) error {
	query := `
		INSERT INTO personas (id, name, description, system_prompt, expertise_areas, avatar_emoji,
			is_default, created_at, updated_at)
		VALUES (:id, :name, :description, :system_prompt, :expertise_areas, :avatar_emoji,
			:is_default, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, persona)
	return err
}

func (r *personaRepository) GetByID(ctx context.Context, id string) (*models.Persona, error) {
	query := r.db.Rebind(`SELECT ` + personaColumns + ` FROM personas WHERE id = ?`)
	return r.getOne(ctx, query, id)
}

// GetDefault returns the oldest persona flagged as default. Nothing enforces a
// single default, so the oldest one wins.
func (r *personaRepository) GetDefault(ctx context.Context) (*models.Persona, error) {
	query := r.db.Rebind(`SELECT ` + personaColumns + ` FROM personas
		WHERE is_default = ? ORDER BY created_at ASC LIMIT 1`)
	return r.getOne(ctx, query, true)
}

func (r *personaRepository) getOne(ctx context.Context, query string, args ...any) (*models.Persona, error) {
	var persona models.Persona

	err := r.db.GetContext(ctx, &persona, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &persona, nil
}

func (r *personaRepository) List(ctx context.Context) ([]models.Persona, error) {
	personas := []models.Persona{}

	query := `SELECT ` + personaColumns + ` FROM personas ORDER BY is_default DESC, name ASC`
	if err := r.db.SelectContext(ctx, &personas, query); err != nil {
		return nil, err
	}

	return personas, nil
}

func (r *personaRepository) Update(ctx context.Context, persona *models.Persona) error {
	persona.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE personas
		SET name = :name, description = :description, system_prompt = :system_prompt,
			expertise_areas = :expertise_areas, avatar_emoji = :avatar_emoji,
			is_default = :is_default, updated_at = :updated_at
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, persona)
	return err
}

func (r *personaRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM personas WHERE id = ?`), id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
