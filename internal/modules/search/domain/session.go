package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "medgraph/internal/platform/errors"
)

// Token identifies one issued lookup. Tokens only grow.
type Token uint64

type Candidate struct {
	ID    string
	Label string
	Age   int
}

// ShouldLookup reports whether text is long enough to query for.
func ShouldLookup(text string, minLength int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= minLength
}

// Session tracks the latest issued token and the results panel it owns.
// Only a response carrying the latest token may open or fill the panel.
type Session struct {
	Query   string
	Results []Candidate

	latest Token
	open   bool
}

func (s *Session) Issue(query string) Token {
	s.latest++
	s.Query = strings.TrimSpace(query)
	return s.latest
}

// Invalidate retires every outstanding token without issuing a lookup.
func (s *Session) Invalidate() {
	s.latest++
}

func (s *Session) Latest() Token { return s.latest }

func (s *Session) Accept(token Token, results []Candidate) bool {
	if token != s.latest {
		return false
	}
	s.Results = results
	s.open = true
	return true
}

func (s *Session) Close() {
	s.open = false
	s.Results = nil
}

func (s *Session) Open() bool { return s.open }

// Pick resolves id against the results the panel currently holds. A caller
// choosing from an older list gets an error rather than whatever now sits at
// the same row.
func (s *Session) Pick(id string) (Candidate, error) {
	if !s.open {
		return Candidate{}, fmt.Errorf("%w: results panel is closed", apperrors.ErrInvalidInput)
	}
	for _, c := range s.Results {
		if c.ID == id {
			return c, nil
		}
	}
	return Candidate{}, fmt.Errorf("%w: %q is not in the current results", apperrors.ErrInvalidInput, id)
}
