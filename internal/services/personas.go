package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/llm"
	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/BerylCAtieno/eia-document-api/internal/repository"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
)

type PersonaService interface {
	GeneratePersona(ctx context.Context, req *models.GeneratePersonaRequest) (*models.GeneratePersonaResponse, error)
	ListPersonas(ctx context.Context) ([]models.Persona, error)
	GetPersona(ctx context.Context, id string) (*models.Persona, error)
	CreatePersona(ctx context.Context, in *models.PersonaInput) (*models.Persona, error)
	UpdatePersona(ctx context.Context, id string, in *models.PersonaInput) (*models.Persona, error)
	DeletePersona(ctx context.Context, id string) error
}

type personaService struct {
	repo   repository.PersonaRepository
	llm    llm.Client
	logger *utils.Logger
}

func NewPersonaService(repo repository.PersonaRepository, client llm.Client, logger *utils.Logger) PersonaService {
	return &personaService{
		repo:   repo,
		llm:    client,
		logger: logger,
	}
}

// GeneratePersona asks the model for a persona definition. The result is
// returned to the caller and not stored.
func (s *personaService) GeneratePersona(ctx context.Context, req *models.GeneratePersonaRequest) (*models.GeneratePersonaResponse, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, utils.NewBadRequestError("description is required")
	}
	if s.llm == nil {
		return nil, utils.NewUpstreamError("No LLM provider configured for persona generation", nil)
	}

	reply, err := s.llm.GenerateText(ctx, llm.PersonaPrompt(description))
	if err != nil {
		s.logger.Error("Failed to generate persona", "error", err)
		return nil, utils.NewUpstreamError("Failed to generate persona with LLM", err)
	}

	persona, err := ParseGeneratedPersona(reply)
	if err != nil {
		s.logger.Error("Failed to parse generated persona", "error", err, "reply_length", len(reply))
		return nil, utils.NewUpstreamError("Failed to parse persona from LLM response", err)
	}

	s.logger.Info("Persona generated", "name", persona.Name)

	return &models.GeneratePersonaResponse{
		Success:          true,
		GeneratedPersona: *persona,
	}, nil
}

// ParseGeneratedPersona extracts the first JSON object from a model reply.
func ParseGeneratedPersona(reply string) (*models.GeneratedPersona, error) {
	obj, ok := llm.ExtractJSONObject(reply)
	if !ok {
		return nil, errors.New("no JSON object in reply")
	}

	var persona models.GeneratedPersona
	if err := json.Unmarshal([]byte(obj), &persona); err != nil {
		return nil, err
	}
	if persona.ExpertiseAreas == nil {
		persona.ExpertiseAreas = []string{}
	}

	return &persona, nil
}

func (s *personaService) ListPersonas(ctx context.Context) ([]models.Persona, error) {
	personas, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list personas", "error", err)
		return nil, utils.NewInternalError("Failed to list personas")
	}
	return personas, nil
}

func (s *personaService) GetPersona(ctx context.Context, id string) (*models.Persona, error) {
	persona, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get persona", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve persona")
	}
	if persona == nil {
		return nil, utils.NewNotFoundError("Persona not found")
	}
	return persona, nil
}

func (s *personaService) CreatePersona(ctx context.Context, in *models.PersonaInput) (*models.Persona, error) {
	if err := validatePersonaInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	persona := &models.Persona{
		ID:        utils.GenerateID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyPersonaInput(persona, in)

	if err := s.repo.Create(ctx, persona); err != nil {
		s.logger.Error("Failed to create persona", "error", err, "name", persona.Name)
		return nil, utils.NewInternalError("Failed to create persona")
	}

	s.logger.Info("Persona created", "id", persona.ID, "name", persona.Name)
	return persona, nil
}

func (s *personaService) UpdatePersona(ctx context.Context, id string, in *models.PersonaInput) (*models.Persona, error) {
	if err := validatePersonaInput(in); err != nil {
		return nil, err
	}

	persona, err := s.GetPersona(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPersonaInput(persona, in)

	if err := s.repo.Update(ctx, persona); err != nil {
		s.logger.Error("Failed to update persona", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to update persona")
	}

	return persona, nil
}

func (s *personaService) DeletePersona(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete persona", "error", err, "id", id)
		return utils.NewInternalError("Failed to delete persona")
	}
	if !deleted {
		return utils.NewNotFoundError("Persona not found")
	}

	s.logger.Info("Persona deleted", "id", id)
	return nil
}

func validatePersonaInput(in *models.PersonaInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return utils.NewBadRequestError("name is required")
	}
	if strings.TrimSpace(in.SystemPrompt) == "" {
		return utils.NewBadRequestError("system_prompt is required")
	}
	return nil
}

func applyPersonaInput(p *models.Persona, in *models.PersonaInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.SystemPrompt = in.SystemPrompt
	p.ExpertiseAreas = models.StringList(in.ExpertiseAreas)
	if p.ExpertiseAreas == nil {
		p.ExpertiseAreas = models.StringList{}
	}
	p.AvatarEmoji = in.AvatarEmoji
	p.IsDefault = in.IsDefault
}
