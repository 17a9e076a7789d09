// Package usecases - dialogue.go orchestrates one chat turn.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"medibot/internal/domain/entities"
	"medibot/internal/domain/ports"
)

// GreetingReply is the fixed answer for recognized greetings.
const GreetingReply = "👋 Hello! I'm your medical assistant. How can I help you today?"

// greetings is the fixed set of phrases answered without retrieval or
// generation. Matching is exact after trimming and lower-casing; punctuation
// is not stripped, so "hi!" falls through to the retrieval path.
var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
}

// DialogueController drives one request/response cycle: classify greetings,
// otherwise retrieve, compose the prompt, generate, and record the turn.
type DialogueController struct {
	retriever   ports.PassageRetriever
	generator   ports.Generator
	logger      *zap.Logger
	preamble    string
	topK        int
	maxTokens   int
	temperature float64
}

// NewDialogueController creates a controller with injected collaborators.
func NewDialogueController(retriever ports.PassageRetriever, generator ports.Generator, logger *zap.Logger, topK, maxTokens int, temperature float64) *DialogueController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topK <= 0 {
		topK = 3
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	// zero is a valid temperature (greedy decoding); only negatives mean unset
	if temperature < 0 {
		temperature = 0.5
	}
	return &DialogueController{
		retriever:   retriever,
		generator:   generator,
		logger:      logger,
		preamble:    DefaultPreamble,
		topK:        topK,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Respond processes one user message against the session. The user turn is
// appended first; on any failure it stays in history without a paired
// assistant turn and the next input is accepted normally. Every successful
// turn contributes exactly one user and one assistant entry.
func (c *DialogueController) Respond(ctx context.Context, session *entities.ConversationSession, input string) (*entities.ChatResponse, error) {
	session.Append(entities.ChatTurn{Role: entities.RoleUser, Content: input})

	if isGreeting(input) {
		session.Append(entities.ChatTurn{Role: entities.RoleAssistant, Content: GreetingReply})
		return &entities.ChatResponse{Answer: GreetingReply}, nil
	}

	passages, err := c.retriever.Retrieve(ctx, input, c.topK)
	if err != nil {
		c.logger.Error("passage retrieval failed", zap.Error(err))
		return nil, fmt.Errorf("retrieving passages: %w", err)
	}

	// The retrieved passages are surfaced as sources only; the context slot
	// carries the accumulated conversation, including the turn just appended.
	prompt := BuildPrompt(c.preamble, session.PromptContext(), input)

	answer, err := c.generator.Generate(ctx, prompt, c.maxTokens, c.temperature)
	if err != nil {
		c.logger.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	answer = strings.TrimSpace(answer)

	session.Append(entities.ChatTurn{Role: entities.RoleAssistant, Content: answer})
	c.logger.Info("turn completed",
		zap.String("session", session.ID()),
		zap.Int("sources", len(passages)),
		zap.Int("history_len", session.Len()))

	return &entities.ChatResponse{Answer: answer, Sources: passages}, nil
}

func isGreeting(input string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(input))]
	return ok
}
