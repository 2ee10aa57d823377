package domain

// EntryFilter narrows a search over stored entries.
// Empty language fields match any language.
type EntryFilter struct {
	Query              string
	SourceLanguage     string
	TargetLanguage     string
	DefinitionLanguage string
	Limit              int
	Offset             int
}

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

// Normalize clamps paging values into the allowed range.
func (f EntryFilter) Normalize() EntryFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultSearchLimit
	}
	if f.Limit > MaxSearchLimit {
		f.Limit = MaxSearchLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Query = NormalizeText(f.Query)
	return f
}
