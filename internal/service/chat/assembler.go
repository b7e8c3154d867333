package chat

import (
	"context"
	"log"
	"strings"

	"github.com/augustine-bot/augustine/backend/internal/model/chat"
	"github.com/augustine-bot/augustine/backend/internal/service/retrieval"
)

// RecencyWindowSize is the number of prior turns kept as short-term memory.
const RecencyWindowSize = 4

const (
	historyHeader       = "Here's our conversation history:\n\n"
	passagesHeader      = "\n\nRelevant passages from my works:\n"
	citeInstruction     = "\n\nPlease cite the specific work each quote comes from and explain its relevance to the question."
	backgroundHeader    = "Relevant background with original text:\n"
	quoteInstruction    = "\n\nPlease include relevant quotes from the provided text in your response."
	humanLabel          = "Human"
	NoPassagesApology   = "I apologize, but I couldn't find relevant passages for this query."
	RetrievalErrApology = "I apologize, but there was an error retrieving the context."
)

var metaQuestions = map[string]struct{}{
	"what did we discuss?":                          {},
	"what did we talk about?":                       {},
	"what did we discuss in our previous messages?": {},
	"what was our previous conversation about?":     {},
}

// IsMetaQuestion reports whether question asks about the conversation itself.
func IsMetaQuestion(question string) bool {
	_, ok := metaQuestions[strings.ToLower(strings.TrimSpace(question))]
	return ok
}

// RecencyWindow renders the last RecencyWindowSize turns, oldest first.
// Returns "" when there is no history.
func RecencyWindow(prior []chat.Message, personaName string) string {
	if len(prior) == 0 {
		return ""
	}
	if len(prior) > RecencyWindowSize {
		prior = prior[len(prior)-RecencyWindowSize:]
	}

	lines := make([]string, 0, len(prior))
	for _, msg := range prior {
		speaker := personaName
		if msg.Role == chat.RoleUser {
			speaker = humanLabel
		}
		lines = append(lines, speaker+": "+msg.Message)
	}
	return historyHeader + strings.Join(lines, "\n")
}

// Assembler builds the context handed to the completion model for one question.
type Assembler struct {
	retriever retrieval.Retriever
}

// NewAssembler creates an Assembler. A nil retriever behaves as a failing one.
func NewAssembler(retriever retrieval.Retriever) *Assembler {
	return &Assembler{retriever: retriever}
}

// Assemble decides between history, retrieval or both and returns the context text.
func (a *Assembler) Assemble(ctx context.Context, question string, prior []chat.Message, personaName string) string {
	if len(prior) == 0 {
		return backgroundHeader + a.retrieve(ctx, question) + quoteInstruction
	}

	window := RecencyWindow(prior, personaName)
	if IsMetaQuestion(question) {
		return window
	}
	return window + passagesHeader + a.retrieve(ctx, question) + citeInstruction
}

// retrieve never fails; errors and empty results become apology text.
func (a *Assembler) retrieve(ctx context.Context, question string) string {
	if a.retriever == nil {
		log.Printf("[chat] retrieval not configured")
		return RetrievalErrApology
	}

	passages, err := a.retriever.Query(ctx, question)
	if err != nil {
		log.Printf("[chat] retrieval failed: %v", err)
		return RetrievalErrApology
	}
	if strings.TrimSpace(passages) == "" {
		return NoPassagesApology
	}
	return passages
}
