package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/eia-document-api/internal/extractor"
	"github.com/BerylCAtieno/eia-document-api/internal/llm"
	"github.com/BerylCAtieno/eia-document-api/internal/models"
	"github.com/BerylCAtieno/eia-document-api/internal/repository"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
)

const (
	chatHistoryLimit   = 5
	chatDocumentLimit  = 10
	chatContextChars   = 2000
	matchedPassageSpan = 200
	// keyword occurrences at which relevance saturates at 1.0
	relevanceSaturation = 10

	OnlineSearchSource = "Online search"
)

type ChatService interface {
	Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

type ChatOptions struct {
	// MatchVisibleText matches and quotes HTML documents by their visible
	// text instead of the stored markup.
	MatchVisibleText bool
}

type chatService struct {
	documents     repository.DocumentRepository
	personas      repository.PersonaRepository
	searchResults repository.SearchResultRepository
	llm           llm.Client
	// search is the online search provider; nil disables the fallback.
	search llm.Client
	opts   ChatOptions
	logger *utils.Logger
}

func NewChatService(
	documents repository.DocumentRepository,
	personas repository.PersonaRepository,
	searchResults repository.SearchResultRepository,
	client llm.Client,
	search llm.Client,
	opts ChatOptions,
	logger *utils.Logger,
) ChatService {
	return &chatService{
		documents:     documents,
		personas:      personas,
		searchResults: searchResults,
		llm:           client,
		search:        search,
		opts:          opts,
		logger:        logger,
	}
}

type documentMatch struct {
	doc         models.Document
	text        string
	occurrences int
}

func (s *chatService) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, utils.NewBadRequestError("message is required")
	}

	persona, err := s.resolvePersona(ctx, req.PersonaID)
	if err != nil {
		return nil, err
	}

	systemPrompt := llm.DefaultAssistantPrompt
	if persona != nil {
		systemPrompt = persona.SystemPrompt
	}

	if s.llm == nil {
		return nil, utils.NewUpstreamError("No LLM provider configured for chat", nil)
	}

	docs, err := s.documents.ListWithContent(ctx, chatDocumentLimit)
	if err != nil {
		s.logger.Error("Failed to load documents for chat", "error", err)
		return nil, utils.NewInternalError("Failed to load documents")
	}

	keyword := Keyword(message)
	matches := matchDocuments(docs, keyword, s.opts.MatchVisibleText)

	var (
		chatContext string
		sources     = []string{}
		online      bool
	)

	if len(matches) > 0 {
		var b strings.Builder
		for _, m := range matches {
			fmt.Fprintf(&b, "Document: %s\n%s\n\n", m.doc.Title, truncateRunes(m.text, chatContextChars))
			sources = append(sources, m.doc.Title)
		}
		chatContext = b.String()
		s.logSearchResults(ctx, keyword, matches, persona)
	} else if s.search != nil {
		answer, err := s.search.GenerateText(ctx, llm.OnlineSearchPrompt(message))
		if err != nil {
			s.logger.Warn("Online search failed, continuing without context", "error", err)
		} else {
			chatContext = answer
			online = true
			sources = []string{OnlineSearchSource}
		}
	}

	prompt := llm.ChatPrompt(llm.ChatPromptInput{
		SystemPrompt:  systemPrompt,
		Context:       chatContext,
		OnlineContext: online,
		History:       lastMessages(req.ConversationHistory, chatHistoryLimit),
		Message:       message,
	})

	reply, err := s.llm.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Error("Failed to generate chat response", "error", err)
		return nil, utils.NewUpstreamError("Failed to generate chat response", err)
	}

	s.logger.Info("Chat response generated",
		"keyword", keyword,
		"matched_documents", len(matches),
		"online_search", online)

	return &models.ChatResponse{
		Response:       reply,
		Sources:        sources,
		IsOnlineSearch: online,
		Success:        true,
	}, nil
}

// resolvePersona returns the requested persona, else the default one, else nil.
func (s *chatService) resolvePersona(ctx context.Context, personaID string) (*models.Persona, error) {
	if personaID != "" {
		persona, err := s.personas.GetByID(ctx, personaID)
		if err != nil {
			s.logger.Error("Failed to get persona", "error", err, "id", personaID)
			return nil, utils.NewInternalError("Failed to retrieve persona")
		}
		if persona == nil {
			return nil, utils.NewNotFoundError("Persona not found")
		}
		return persona, nil
	}

	persona, err := s.personas.GetDefault(ctx)
	if err != nil {
		s.logger.Error("Failed to get default persona", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve persona")
	}
	return persona, nil
}

func (s *chatService) logSearchResults(ctx context.Context, keyword string, matches []documentMatch, persona *models.Persona) {
	var tag *string
	if persona != nil {
		tag = &persona.Name
	}

	now := time.Now().UTC()
	for _, m := range matches {
		result := &models.SearchResult{
			ID:             utils.GenerateID(),
			Query:          keyword,
			DocumentID:     m.doc.ID,
			RelevanceScore: relevanceScore(m.occurrences),
			MatchedContent: matchedPassage(m.text, keyword),
			PersonaTag:     tag,
			CreatedAt:      now,
		}
		if err := s.searchResults.Create(ctx, result); err != nil {
			s.logger.Warn("Failed to record search result", "error", err, "document_id", m.doc.ID)
		}
	}
}

// Keyword returns the first whitespace-separated word of the lower-cased
// message that is longer than three characters, or "" when there is none.
func Keyword(message string) string {
	for _, word := range strings.Fields(strings.ToLower(message)) {
		if utf8.RuneCountInString(word) > 3 {
			return word
		}
	}
	return ""
}

func matchDocuments(docs []models.Document, keyword string, visibleText bool) []documentMatch {
	if keyword == "" {
		return nil
	}

	var matches []documentMatch
	for _, doc := range docs {
		text := derefString(doc.Content)
		if visibleText {
			text = visibleDocumentText(doc)
		}
		n := strings.Count(strings.ToLower(text), keyword)
		if n > 0 {
			matches = append(matches, documentMatch{doc: doc, text: text, occurrences: n})
		}
	}
	return matches
}

// visibleDocumentText reduces HTML documents to their visible text.
func visibleDocumentText(doc models.Document) string {
	content := derefString(doc.Content)
	if doc.ContentType != extractor.MIMEHTML {
		return content
	}

	text, err := extractor.HTMLText(content)
	if err != nil {
		return content
	}
	return text
}

func relevanceScore(occurrences int) float64 {
	if occurrences >= relevanceSaturation {
		return 1
	}
	return float64(occurrences) / relevanceSaturation
}

// matchedPassage returns roughly matchedPassageSpan runes of text centred on
// the first occurrence of keyword.
func matchedPassage(text, keyword string) string {
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	if len(lower) != len(runes) {
		// case folding changed the length; fall back to a prefix
		return truncateRunes(text, matchedPassageSpan)
	}

	idx := strings.Index(string(lower), keyword)
	if idx < 0 {
		return truncateRunes(text, matchedPassageSpan)
	}
	pos := utf8.RuneCountInString(string(lower)[:idx])

	start := pos - matchedPassageSpan/2
	if start < 0 {
		start = 0
	}
	end := start + matchedPassageSpan
	if end > len(runes) {
		end = len(runes)
	}

	return strings.TrimSpace(string(runes[start:end]))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func lastMessages(history []models.ChatMessage, n int) []models.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
