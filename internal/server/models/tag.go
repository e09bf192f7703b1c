package models

// Category groups suggestions by theme.
type Category struct {
	ID                  string `json:"id"`
	CategoryName        string `json:"category_name"`
	CategoryDescription string `json:"category_description"`
}

// Status is the triage state an admin assigns to a suggestion.
type Status struct {
	ID                string `json:"id"`
	StatusName        string `json:"status_name"`
	StatusDescription string `json:"status_description"`
}
