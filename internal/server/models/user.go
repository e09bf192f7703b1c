package models

// User is the local identity record. ID is assigned by storage on creation;
// ObjectIdentifier is the identity-provider id and stays empty until the
// user first signs in.
type User struct {
	ID                  string              `json:"id"`
	ObjectIdentifier    string              `json:"object_identifier"`
	FirstName           string              `json:"first_name"`
	LastName            string              `json:"last_name"`
	DisplayName         string              `json:"display_name"`
	EmailAddress        string              `json:"email_address"`
	AuthoredSuggestions []SuggestionSummary `json:"authored_suggestions"`
	VotedOnSuggestions  []SuggestionSummary `json:"voted_on_suggestions"`
}

// UserSummary is the author snapshot embedded in a suggestion.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Saved reports whether storage has assigned the user an id.
func (u *User) Saved() bool {
	return u.ID != ""
}

// Summary snapshots the user for embedding.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.DisplayName}
}

// HasVotedOn reports whether suggestionID is in the voted list.
func (u *User) HasVotedOn(suggestionID string) bool {
	return indexOfSummary(u.VotedOnSuggestions, suggestionID) >= 0
}

// AddVoted appends a summary to the voted list.
func (u *User) AddVoted(s SuggestionSummary) {
	u.VotedOnSuggestions = append(u.VotedOnSuggestions, s)
}

// RemoveVoted drops the first voted summary whose ID matches, keeping order.
// It reports whether anything was removed.
func (u *User) RemoveVoted(suggestionID string) bool {
	i := indexOfSummary(u.VotedOnSuggestions, suggestionID)
	if i < 0 {
		return false
	}
	u.VotedOnSuggestions = append(u.VotedOnSuggestions[:i:i], u.VotedOnSuggestions[i+1:]...)
	return true
}

// AddAuthored appends a summary to the authored list.
func (u *User) AddAuthored(s SuggestionSummary) {
	u.AuthoredSuggestions = append(u.AuthoredSuggestions, s)
}

func indexOfSummary(xs []SuggestionSummary, id string) int {
	for i := range xs {
		if xs[i].ID == id {
			return i
		}
	}
	return -1
}
