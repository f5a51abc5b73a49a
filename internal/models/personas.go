package models

import "time"

type Persona struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Description    *string    `json:"description,omitempty" db:"description"`
	SystemPrompt   string     `json:"system_prompt" db:"system_prompt"`
	ExpertiseAreas StringList `json:"expertise_areas" db:"expertise_areas"`
	AvatarEmoji    string     `json:"avatar_emoji" db:"avatar_emoji"`
	IsDefault      bool       `json:"is_default" db:"is_default"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// PersonaInput is the writable subset of a persona accepted by create and
// update.
type PersonaInput struct {
	Name           string   `json:"name"`
	Description    *string  `json:"description,omitempty"`
	SystemPrompt   string   `json:"system_prompt"`
	ExpertiseAreas []string `json:"expertise_areas"`
	AvatarEmoji    string   `json:"avatar_emoji"`
	IsDefault      bool     `json:"is_default"`
}

type GeneratePersonaRequest struct {
	Description string `json:"description"`
}

type GeneratedPersona struct {
	Name           string   `json:"name"`
	SystemPrompt   string   `json:"system_prompt"`
	ExpertiseAreas []string `json:"expertise_areas"`
	AvatarEmoji    string   `json:"avatar_emoji"`
}

type GeneratePersonaResponse struct {
	Success bool `json:"success"`
	GeneratedPersona
}
