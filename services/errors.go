package services

import "errors"

var (
	// ErrLocationNotFound is terminal for a search: nothing is fetched.
	ErrLocationNotFound = errors.New("location not found")

	// ErrNoCategories means the product produced no category tags.
	ErrNoCategories = errors.New("no categories found")

	// ErrAIUnavailable is returned when an AI client has no credentials.
	ErrAIUnavailable = errors.New("AI provider not configured")

	// ErrInvalidAIResponse marks a model reply that failed schema validation.
	ErrInvalidAIResponse = errors.New("invalid AI response")
)
