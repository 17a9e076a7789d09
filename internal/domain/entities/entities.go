// Package entities contains core business entities.
// These are pure domain objects with no external dependencies beyond ID generation.
package entities

import (
	"strings"

	"github.com/google/uuid"
)

// Role identifies who produced a chat turn.
type Role string

const (
	// RoleUser marks a turn typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn produced by the assistant.
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message in a conversation. Immutable once created.
type ChatTurn struct {
	Role    Role
	Content string
}

// ConversationSession holds the ordered turns of one interactive session.
// Turns are append-only; the session lives in memory for the lifetime of the
// session and is never persisted. Single writer: one turn is fully processed
// before the next is accepted.
type ConversationSession struct {
	id    string
	turns []ChatTurn
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *ConversationSession {
	return &ConversationSession{id: uuid.NewString()}
}

// ID returns the session identifier.
func (s *ConversationSession) ID() string { return s.id }

// Append adds a turn to the end of the session.
func (s *ConversationSession) Append(turn ChatTurn) {
	s.turns = append(s.turns, turn)
}

// History returns a copy of the turns in order.
func (s *ConversationSession) History() []ChatTurn {
	out := make([]ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns recorded so far.
func (s *ConversationSession) Len() int { return len(s.turns) }

// PromptContext folds the full history into a single context string: every
// turn's content in session order, separated by blank lines. Conversational
// memory goes into the prompt's context slot this way rather than as a
// structured field.
func (s *ConversationSession) PromptContext() string {
	parts := make([]string, len(s.turns))
	for i, t := range s.turns {
		parts[i] = t.Content
	}
	return strings.Join(parts, "\n\n")
}

// RetrievedPassage is one nearest-neighbor hit from the passage index.
// Produced fresh per query and never mutated.
type RetrievedPassage struct {
	Source    string `json:"source"`
	PageLabel string `json:"page_label,omitempty"`
	Excerpt   string `json:"excerpt"`
	Rank      int    `json:"rank"`
}

// ChatResponse is the assistant's answer for one turn plus the passages
// retrieved for it, surfaced as auxiliary sources.
type ChatResponse struct {
	Answer  string             `json:"answer"`
	Sources []RetrievedPassage `json:"sources,omitempty"`
}

// Document represents a source document on disk.
type Document struct {
	ID      string
	Name    string
	Path    string
	Content string
}

// Chunk is a piece of a document stored in the passage index.
type Chunk struct {
	ID         string
	DocumentID string
	Source     string // document name, used for citation
	PageLabel  string // optional page label, empty for plain text sources
	Content    string
	Index      int // position in document
	Embedding  []float32
}

// PlanRequest carries the user profile for a diet and workout plan.
type PlanRequest struct {
	Gender              string `json:"gender"`
	Age                 int    `json:"age"`
	HeightCm            int    `json:"height_cm"`
	WeightKg            int    `json:"weight_kg"`
	DietaryPreferences  string `json:"dietary_preferences"`
	FitnessGoals        string `json:"fitness_goals"`
	LifestyleFactors    string `json:"lifestyle_factors"`
	DietaryRestrictions string `json:"dietary_restrictions"`
	HealthConditions    string `json:"health_conditions"`
	Query               string `json:"query"`
}

// Plan is the parsed, section-grouped recommendation plan.
type Plan struct {
	DietTypes      []string `json:"diet_types"`
	Workouts       []string `json:"workouts"`
	Breakfasts     []string `json:"breakfasts"`
	Dinners        []string `json:"dinners"`
	AdditionalTips []string `json:"additional_tips"`
}
