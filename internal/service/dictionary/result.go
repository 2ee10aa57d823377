package dictionary

import "github.com/heartmarshall/lexicon/internal/domain"

// LookupResult is the outcome of a lookup.
type LookupResult struct {
	Entry domain.StoredEntry `json:"entry"`
	// Headword is the resolved lemma the entry was looked up under.
	Headword string `json:"headword"`
	// Cached is true when the entry came from the store without a remote
	// generation.
	Cached          bool    `json:"cached"`
	LanguageWarning *string `json:"language_warning"`
}

// SearchResult is a page of stored entries.
type SearchResult struct {
	Entries    []domain.StoredEntry `json:"entries"`
	TotalCount int                  `json:"total_count"`
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes a line that could not be imported.
type ImportError struct {
	LineNumber int    `json:"line_number"`
	Reason     string `json:"reason"`
}
