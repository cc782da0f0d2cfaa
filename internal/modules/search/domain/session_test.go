package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "medgraph/internal/platform/errors"
)

func TestShouldLookupTrimsAndCountsRunes(t *testing.T) {
	t.Parallel()
	assert.False(t, ShouldLookup(" a ", 2))
	assert.True(t, ShouldLookup("al", 2))
	assert.True(t, ShouldLookup("Zoë", 3))
	assert.False(t, ShouldLookup("", 1))
}

func TestSessionOnlyLatestTokenIsAccepted(t *testing.T) {
	t.Parallel()
	var s Session
	first := s.Issue("al")
	second := s.Issue("alice")
	require.Greater(t, second, first)

	assert.True(t, s.Accept(second, []Candidate{{ID: "Alice"}}))
	assert.False(t, s.Accept(first, []Candidate{{ID: "Alan"}, {ID: "Alice"}}))
	assert.Equal(t, "Alice", s.Results[0].ID)
}

func TestInvalidatedTokenNeverReopens(t *testing.T) {
	t.Parallel()
	var s Session
	tok := s.Issue("al")
	s.Invalidate()
	s.Close()

	assert.False(t, s.Accept(tok, []Candidate{{ID: "Alan"}}))
	assert.False(t, s.Open())
}

func TestPickResolvesAgainstCurrentResults(t *testing.T) {
	t.Parallel()
	var s Session
	_, err := s.Pick("Alan")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	tok := s.Issue("al")
	s.Accept(tok, []Candidate{{ID: "Alan", Age: 40}})
	c, err := s.Pick("Alan")
	require.NoError(t, err)
	assert.Equal(t, 40, c.Age)
	_, err = s.Pick("Alice")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
