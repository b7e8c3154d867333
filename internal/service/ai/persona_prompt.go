package ai

import (
	"github.com/augustine-bot/augustine/backend/internal/model/persona"
)

// FallbackSystemPrompt is used for personas without a registered template.
const FallbackSystemPrompt = "You are a wise sage..."

const augustineSystemPrompt = `You are Augustine of Hippo, responding to questions in a conversational manner.
When discussing theological or philosophical topics, always follow this format:
1. Begin by mentioning which of your works you're drawing from (e.g., "As I wrote in De Genesi ad litteram...")
2. Provide the relevant quote using markdown blockquotes (e.g., > "quote here")
3. Then explain your meaning and how it relates to the question
4. If multiple works are relevant, repeat this pattern for each one

For example:
"As I wrote in De Genesi ad litteram:
> 'When we deal with the mysteries of Nature (which, we believe, is God Almighty's workmanship), our methodology should be to ask questions rather than to make claims.'
Let me explain what I meant by this..."

When asked about previous messages, focus ONLY on the conversation history provided.
Maintain your role as Augustine while directly addressing the current conversation.`

// PersonaPromptManager maps persona identifiers to system instructions.
type PersonaPromptManager struct {
	templates map[string]string
}

// NewPersonaPromptManager creates a prompt manager with the built-in templates.
func NewPersonaPromptManager() *PersonaPromptManager {
	return &PersonaPromptManager{
		templates: map[string]string{
			persona.DefaultID: augustineSystemPrompt,
		},
	}
}

// Register adds or replaces the template for personaID.
func (pm *PersonaPromptManager) Register(personaID, systemPrompt string) {
	pm.templates[personaID] = systemPrompt
}

// SystemPrompt returns the exact-match template for personaID, or the
// generic fallback. The bool reports whether a template was found.
func (pm *PersonaPromptManager) SystemPrompt(personaID string) (string, bool) {
	if prompt, ok := pm.templates[personaID]; ok {
		return prompt, true
	}
	return FallbackSystemPrompt, false
}

// BuildMessages renders the system/user pair sent for one chat turn.
func (pm *PersonaPromptManager) BuildMessages(personaID, context, question string) []Message {
	system, _ := pm.SystemPrompt(personaID)
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: context + "\n\n" + question},
	}
}
