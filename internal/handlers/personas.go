package handlers

import (
	"net/http"

	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/BerylCAtieno/eia-document-api/internal/services"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/gorilla/mux"
)

type PersonaHandler struct {
	personas services.PersonaService
	logger   *utils.Logger
}

func NewPersonaHandler(personas services.PersonaService, logger *utils.Logger) *PersonaHandler {
	return &PersonaHandler{personas: personas, logger: logger}
}

func (h *PersonaHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, err := h.personas.ListPersonas(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, personas)
}

func (h *PersonaHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	persona, err := h.personas.GetPersona(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, persona)
}

func (h *PersonaHandler) CreatePersona(w http.ResponseWriter, r *http.Request) {
	var in models.PersonaInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	persona, err := h.personas.CreatePersona(r.Context(), &in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, persona)
}

func (h *PersonaHandler) UpdatePersona(w http.ResponseWriter, r *http.Request) {
	var in models.PersonaInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}

	persona, err := h.personas.UpdatePersona(r.Context(), mux.Vars(r)["id"], &in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, persona)
}

func (h *PersonaHandler) DeletePersona(w http.ResponseWriter, r *http.Request) {
	if err := h.personas.DeletePersona(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
