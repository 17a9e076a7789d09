package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_StartsEmptyWithID(t *testing.T) {
	s := NewSession()

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.History())
}

func TestSession_AppendPreservesOrder(t *testing.T) {
	s := NewSession()
	s.Append(ChatTurn{Role: RoleUser, Content: "first"})
	s.Append(ChatTurn{Role: RoleAssistant, Content: "second"})
	s.Append(ChatTurn{Role: RoleUser, Content: "third"})

	h := s.History()
	require.Len(t, h, 3)
	assert.Equal(t, "first", h[0].Content)
	assert.Equal(t, "second", h[1].Content)
	assert.Equal(t, "third", h[2].Content)
}

func TestSession_HistoryReturnsCopy(t *testing.T) {
	s := NewSession()
	s.Append(ChatTurn{Role: RoleUser, Content: "original"})

	h := s.History()
	h[0].Content = "tampered"

	assert.Equal(t, "original", s.History()[0].Content)
}

func TestSession_PromptContextJoinsWithBlankLines(t *testing.T) {
	s := NewSession()
	s.Append(ChatTurn{Role: RoleUser, Content: "what is a fever?"})
	s.Append(ChatTurn{Role: RoleAssistant, Content: "An elevated temperature."})

	assert.Equal(t, "what is a fever?\n\nAn elevated temperature.", s.PromptContext())
}

func TestSession_PromptContextEmptySession(t *testing.T) {
	assert.Equal(t, "", NewSession().PromptContext())
}

func TestSessions_HaveDistinctIDs(t *testing.T) {
	assert.NotEqual(t, NewSession().ID(), NewSession().ID())
}
