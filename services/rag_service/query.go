package rag_service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput marks a query the caller must fix before resubmitting. It
// is detected before any network call is made.
var ErrInvalidInput = errors.New("invalid input")

const (
	minQueryLength = 3
	maxQueryLength = 1000
)

// NormalizeQuery trims the raw query and enforces the length bounds. Bounds
// are counted in characters, not bytes, so Devanagari and other multibyte
// scripts get the full range.
func NormalizeQuery(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return "", fmt.Errorf("%w: query is empty", ErrInvalidInput)
	}
	length := utf8.RuneCountInString(normalized)
	if length < minQueryLength {
		return "", fmt.Errorf("%w: query must be at least %d characters", ErrInvalidInput, minQueryLength)
	}
	if length > maxQueryLength {
		return "", fmt.Errorf("%w: query must be at most %d characters", ErrInvalidInput, maxQueryLength)
	}
	return normalized, nil
}
