package dictionary

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/lexicon/internal/domain"
)

const (
	maxWordLength    = 500
	maxContextLength = 5000
)

// LookupInput holds the parameters of a dictionary lookup.
type LookupInput struct {
	Word    string
	Context *string
	// Languages overrides the service defaults field by field.
	Languages domain.LanguageConfig
	// Force generates a fresh entry even when one is stored.
	Force bool
}

// Validate checks all fields and collects all errors.
func (i *LookupInput) Validate() error {
	var errs []domain.FieldError

	word := strings.TrimSpace(i.Word)
	if word == "" {
		errs = append(errs, domain.FieldError{Field: "word", Message: "required"})
	} else if utf8.RuneCountInString(word) > maxWordLength {
		errs = append(errs, domain.FieldError{Field: "word", Message: "too long (max 500)"})
	}
	if i.Context != nil && utf8.RuneCountInString(*i.Context) > maxContextLength {
		errs = append(errs, domain.FieldError{Field: "context", Message: "too long (max 5000)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
