package llm

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/eia-document-api/internal/models"
)

// DefaultAssistantPrompt is used for chat when no persona is available.
const DefaultAssistantPrompt = "You are a helpful environmental impact assessment assistant. " +
	"You help users understand EIA documents, environmental regulations, mitigation measures " +
	"and the likely effects of proposed projects. Answer clearly and cite the documents you rely on."

const pageSchemaInstruction = `

Respond ONLY with a JSON object, without any other text, using this exact structure:
{
  "subjectRelevance": <number from 0 to 100 rating how relevant this page is to the subject above>,
  "summary": "<two or three sentence summary of the page>",
  "keyPoints": ["<key point>", "..."],
  "entities": ["<organisation, location, species, regulation or other named entity>", "..."],
  "pageType": "<one of: text, table, figure, map, mixed, cover, blank>"
}`

type AnalysisPromptInput struct {
	Title              string
	Content            string
	AnalysisType       string
	PersonaPrompt      string
	CustomInstructions string
}

// AnalysisPrompt builds the prompt for a full document analysis.
func AnalysisPrompt(in AnalysisPromptInput) string {
	var b strings.Builder

	if in.PersonaPrompt != "" {
		b.WriteString(in.PersonaPrompt)
		b.WriteString("\n\n")
	}

	b.WriteString("Analyze the following Environmental Impact Assessment document.\n\n")
	fmt.Fprintf(&b, "Analysis type: %s\n", in.AnalysisType)
	fmt.Fprintf(&b, "Document title: %s\n\n", in.Title)
	b.WriteString("Document content:\n")
	b.WriteString(in.Content)
	b.WriteString("\n\n")
	b.WriteString("Provide a structured analysis covering:\n" +
		"1. A summary of the proposed project and its scope\n" +
		"2. The key environmental impacts identified (air, water, soil, biodiversity, noise, social)\n" +
		"3. The adequacy of the proposed mitigation measures\n" +
		"4. Compliance with the relevant regulatory requirements\n" +
		"5. Gaps, risks and recommendations\n")

	if in.CustomInstructions != "" {
		b.WriteString("\nAdditional instructions: ")
		b.WriteString(in.CustomInstructions)
		b.WriteString("\n")
	}

	return b.String()
}

type ChatPromptInput struct {
	SystemPrompt  string
	Context       string
	OnlineContext bool
	History       []models.ChatMessage
	Message       string
}

// ChatPrompt flattens persona, retrieved context and history into one prompt.
func ChatPrompt(in ChatPromptInput) string {
	var b strings.Builder

	b.WriteString(in.SystemPrompt)
	b.WriteString("\n\n")

	if in.Context != "" {
		if in.OnlineContext {
			b.WriteString("Context from online search:\n")
		} else {
			b.WriteString("Context from uploaded documents:\n")
		}
		b.WriteString(in.Context)
		b.WriteString("\n\n")
	}

	if len(in.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range in.History {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User: %s\n\n", in.Message)
	b.WriteString("Answer the user's question using the context above when it is relevant.")

	return b.String()
}

// OnlineSearchPrompt asks the search-backed model for background on a question.
func OnlineSearchPrompt(message string) string {
	return "Search for current, factual information relevant to this environmental " +
		"impact assessment question and summarise what you find with sources:\n\n" + message
}

// PagePrompt appends the JSON reply schema to the caller's page prompt.
func PagePrompt(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		prompt = "Analyze this page of an environmental impact assessment document."
	}
	return prompt + pageSchemaInstruction
}

// PersonaPrompt asks for a persona definition as a JSON object.
func PersonaPrompt(description string) string {
	return fmt.Sprintf(`Create an AI analyst persona for reviewing environmental impact assessment documents, based on this description:

"%s"

Respond with a JSON object using exactly these fields:
{
  "name": "<short descriptive name>",
  "system_prompt": "<detailed system prompt, at least three sentences, describing the persona's expertise, focus and tone>",
  "expertise_areas": ["<area>", "..."],
  "avatar_emoji": "<a single emoji>"
}`, description)
}
