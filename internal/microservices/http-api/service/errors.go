package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"bloghub/internal/microservices/http-api/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailInUse         = errors.New("email already in use")
	// ErrAlreadyConfirmed: confirmed is terminal, a second confirm is a conflict.
	ErrAlreadyConfirmed = repository.ErrAlreadyConfirmed
)

// ValidationError carries field-level messages for a 422 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

/* helper: generate slug-like string from title */
var nonAlnum = regexp.MustCompile(`[^a-z0-9\-]+`)
var dashes = regexp.MustCompile(`-{2,}`)

func generateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonAlnum.ReplaceAllString(s, "")
	s = dashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "untitled"
	}
	if len(s) > 200 {
		s = strings.Trim(s[:200], "-")
	}
	// a short random suffix keeps generated slugs from colliding on equal titles
	return s + "-" + uuid.NewString()[:8]
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// resolveSlug validates a client slug or generates one from the title.
func resolveSlug(requested, title string) (string, error) {
	if requested == "" {
		return generateSlug(title), nil
	}
	if !slugPattern.MatchString(requested) {
		return "", invalidField("slug", "must contain lowercase letters, digits and single dashes only")
	}
	return requested, nil
}
