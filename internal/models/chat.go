package models

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message             string        `json:"message"`
	PersonaID           string        `json:"persona_id"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
}

type ChatResponse struct {
	Response       string   `json:"response"`
	Sources        []string `json:"sources"`
	IsOnlineSearch bool     `json:"isOnlineSearch"`
	Success        bool     `json:"success"`
}
