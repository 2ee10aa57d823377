package domain

import "strings"

// LanguageName is the result of normalizing a user-supplied language.
// StandardizedName is the canonical English name ("Spanish");
// DisplayName echoes RawInput verbatim.
type LanguageName struct {
	RawInput         string `json:"raw_input"`
	StandardizedName string `json:"standardized_name"`
	DisplayName      string `json:"display_name"`
}

// LanguageConfig is the language triple every lookup is performed under.
type LanguageConfig struct {
	SourceLanguage     string `json:"source_language"`
	TargetLanguage     string `json:"target_language"`
	DefinitionLanguage string `json:"definition_language"`
}

// Validate checks that all three languages are set.
func (c LanguageConfig) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(c.SourceLanguage) == "" {
		errs = append(errs, FieldError{Field: "source_language", Message: "required"})
	}
	if strings.TrimSpace(c.TargetLanguage) == "" {
		errs = append(errs, FieldError{Field: "target_language", Message: "required"})
	}
	if strings.TrimSpace(c.DefinitionLanguage) == "" {
		errs = append(errs, FieldError{Field: "definition_language", Message: "required"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Merge returns c with empty fields filled from fallback.
func (c LanguageConfig) Merge(fallback LanguageConfig) LanguageConfig {
	if strings.TrimSpace(c.SourceLanguage) == "" {
		c.SourceLanguage = fallback.SourceLanguage
	}
	if strings.TrimSpace(c.TargetLanguage) == "" {
		c.TargetLanguage = fallback.TargetLanguage
	}
	if strings.TrimSpace(c.DefinitionLanguage) == "" {
		c.DefinitionLanguage = fallback.DefinitionLanguage
	}
	return c
}

// Languages lists the distinct languages present in the store, per role.
type Languages struct {
	Source     []string `json:"source"`
	Target     []string `json:"target"`
	Definition []string `json:"definition"`
}
