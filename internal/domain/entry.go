package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DictionaryEntry is a generated dictionary entry in its wire form.
// Nullable fields are pointers without omitempty so absent values are
// serialized as explicit nulls.
type DictionaryEntry struct {
	Metadata     Metadata     `json:"metadata"`
	Headword     string       `json:"headword"`
	PartOfSpeech PartOfSpeech `json:"part_of_speech"`
	Meanings     []Meaning    `json:"meanings"`
}

// Metadata records the languages an entry was generated for.
type Metadata struct {
	SourceLanguage     string `json:"source_language"`
	TargetLanguage     string `json:"target_language"`
	DefinitionLanguage string `json:"definition_language"`
}

// Languages returns the metadata as a LanguageConfig.
func (m Metadata) Languages() LanguageConfig {
	return LanguageConfig{
		SourceLanguage:     m.SourceLanguage,
		TargetLanguage:     m.TargetLanguage,
		DefinitionLanguage: m.DefinitionLanguage,
	}
}

// MetadataFor builds metadata from a language configuration.
func MetadataFor(cfg LanguageConfig) Metadata {
	return Metadata{
		SourceLanguage:     cfg.SourceLanguage,
		TargetLanguage:     cfg.TargetLanguage,
		DefinitionLanguage: cfg.DefinitionLanguage,
	}
}

// Meaning is one sense of a headword.
type Meaning struct {
	Definition string    `json:"definition"`
	Grammar    Grammar   `json:"grammar"`
	Examples   []Example `json:"examples"`
}

// Grammar holds optional grammatical notes for a meaning.
type Grammar struct {
	NounType   *string `json:"noun_type"`
	VerbType   *string `json:"verb_type"`
	Comparison *string `json:"comparison"`
}

// Example is a usage sentence with an optional translation.
type Example struct {
	Sentence    string  `json:"sentence"`
	Translation *string `json:"translation"`
}

// Normalize replaces nil slices with empty ones so they marshal as [].
func (e *DictionaryEntry) Normalize() {
	if e.Meanings == nil {
		e.Meanings = []Meaning{}
	}
	for i := range e.Meanings {
		if e.Meanings[i].Examples == nil {
			e.Meanings[i].Examples = []Example{}
		}
	}
}

// StoredEntry is a dictionary entry persisted in the local store.
type StoredEntry struct {
	ID              uuid.UUID       `json:"id"`
	Entry           DictionaryEntry `json:"entry"`
	LanguageWarning *string         `json:"language_warning"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ---------------------------------------------------------------------------
// PartOfSpeech
// ---------------------------------------------------------------------------

// PartOfSpeech is either a single string or a list of strings on the wire.
// It remembers which shape it was decoded from and marshals back to it.
type PartOfSpeech struct {
	values []string
	list   bool
}

// SinglePOS builds a string-shaped part of speech.
func SinglePOS(v string) PartOfSpeech {
	return PartOfSpeech{values: []string{v}}
}

// ListPOS builds a list-shaped part of speech.
func ListPOS(vs ...string) PartOfSpeech {
	return PartOfSpeech{values: append([]string{}, vs...), list: true}
}

// Values returns the parts of speech.
func (p PartOfSpeech) Values() []string { return append([]string(nil), p.values...) }

// IsList reports whether the value was a JSON array.
func (p PartOfSpeech) IsList() bool { return p.list }

// IsZero reports whether no part of speech was given.
func (p PartOfSpeech) IsZero() bool { return !p.list && len(p.values) == 0 }

func (p PartOfSpeech) String() string { return strings.Join(p.values, ", ") }

func (p PartOfSpeech) MarshalJSON() ([]byte, error) {
	if p.list {
		vs := p.values
		if vs == nil {
			vs = []string{}
		}
		return json.Marshal(vs)
	}
	if len(p.values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(p.values[0])
}

func (p *PartOfSpeech) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = PartOfSpeech{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return fmt.Errorf("part_of_speech: %w", err)
		}
		*p = ListPOS(vs...)
		return nil
	default:
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("part_of_speech: %w", err)
		}
		*p = SinglePOS(v)
		return nil
	}
}

// StorageValue encodes the part of speech for a text column.
// Lists are stored as JSON arrays, single values as plain text.
func (p PartOfSpeech) StorageValue() string {
	if !p.list {
		if len(p.values) == 0 {
			return ""
		}
		return p.values[0]
	}
	b, _ := p.MarshalJSON()
	return string(b)
}

// ParseStoredPOS decodes a value produced by StorageValue.
func ParseStoredPOS(s string) PartOfSpeech {
	if strings.HasPrefix(s, "[") {
		var p PartOfSpeech
		if err := p.UnmarshalJSON([]byte(s)); err == nil {
			return p
		}
	}
	if s == "" {
		return PartOfSpeech{}
	}
	return SinglePOS(s)
}
