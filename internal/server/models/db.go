package models

// Collection (table) names owned by the storage layer.
const (
	CategoryCollection   = "categories"
	StatusCollection     = "statuses"
	UserCollection       = "users"
	SuggestionCollection = "suggestions"
)
