// Package ops implements the operations shared by the CLI, the MCP server
// and the web UI. Each operation takes an Input struct and returns an Output
// struct or a typed error.
package ops

import (
	"crypto/rand"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// DefaultDraftType is used when a draft is saved without a type.
const DefaultDraftType = "outline"

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeType trims, lowercases and collapses whitespace in a draft type.
func NormalizeType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// deckOptions derives element options from configuration.
func deckOptions(cfg *config.Config) deck.Options {
	if cfg == nil {
		return deck.Options{}
	}
	return deck.Options{MaxIndexedRecords: cfg.MaxIndexedRecords}
}

// parseOutline decodes a required outline argument.
func parseOutline(field string, data json.RawMessage) (deck.Outline, error) {
	if len(data) == 0 {
		return deck.Outline{}, errors.NewInvalidRequest(field + " is required")
	}
	o, err := deck.ParseOutline(data)
	if err != nil {
		return deck.Outline{}, errors.NewInvalidRequest(field + ": " + err.Error())
	}
	return o, nil
}

// parseSlide decodes a required slide argument.
func parseSlide(field string, data json.RawMessage) (deck.Slide, error) {
	var s deck.Slide
	if len(data) == 0 {
		return s, errors.NewInvalidRequest(field + " is required")
	}
	if err := s.UnmarshalJSON(data); err != nil {
		return s, errors.NewInvalidRequest(field + ": " + err.Error())
	}
	return s, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
