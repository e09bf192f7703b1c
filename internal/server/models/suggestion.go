package models

import (
	"slices"
	"time"
)

// Suggestion is a feature request submitted by a user.
//
// Category, Author and SuggestionStatus are embedded snapshots rather than
// live references. UserVotes holds voter ids with set semantics.
type Suggestion struct {
	ID                 string      `json:"id"`
	Suggestion         string      `json:"suggestion"`
	Description        string      `json:"description"`
	DateCreated        time.Time   `json:"date_created"`
	Category           Category    `json:"category"`
	Author             UserSummary `json:"author"`
	UserVotes          []string    `json:"user_votes"`
	SuggestionStatus   *Status     `json:"suggestion_status,omitempty"`
	OwnerNotes         string      `json:"owner_notes"`
	ApprovedForRelease bool        `json:"approved_for_release"`
	Archived           bool        `json:"archived"`
	Rejected           bool        `json:"rejected"`
}

// SuggestionSummary is the denormalized {id, title} copy kept on a user's
// authored and voted lists. It is a snapshot and is not refreshed when the
// suggestion is edited later.
type SuggestionSummary struct {
	ID         string `json:"id"`
	Suggestion string `json:"suggestion"`
}

// Summary snapshots the suggestion.
func (s *Suggestion) Summary() SuggestionSummary {
	return SuggestionSummary{ID: s.ID, Suggestion: s.Suggestion}
}

// HasVoteFrom reports whether userID is among the voters.
func (s *Suggestion) HasVoteFrom(userID string) bool {
	return slices.Contains(s.UserVotes, userID)
}

// ToggleVote adds userID to the voters if absent, otherwise removes it.
// It returns true when the vote was added.
func (s *Suggestion) ToggleVote(userID string) bool {
	if i := slices.Index(s.UserVotes, userID); i >= 0 {
		s.UserVotes = slices.Delete(s.UserVotes, i, i+1)
		return false
	}
	s.UserVotes = append(s.UserVotes, userID)
	return true
}

// VoteCount is the number of distinct voters.
func (s *Suggestion) VoteCount() int {
	return len(s.UserVotes)
}

// Pending reports whether an admin has neither approved nor rejected it.
func (s *Suggestion) Pending() bool {
	return !s.ApprovedForRelease && !s.Rejected
}
