package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// LemmaKey identifies a lemma lookup. Equality is exact and case-preserving.
// A nil Context and a pointer to "" are different keys.
type LemmaKey struct {
	RawWord        string
	TargetLanguage string
	Context        *string
}

// NewLemmaKey builds a key, copying the context so later mutation by the
// caller cannot change the key.
func NewLemmaKey(word, targetLanguage string, context *string) LemmaKey {
	k := LemmaKey{RawWord: word, TargetLanguage: targetLanguage}
	if context != nil {
		c := *context
		k.Context = &c
	}
	return k
}

// HasContext reports whether the lookup carries a sentence context.
func (k LemmaKey) HasContext() bool { return k.Context != nil }

// ContextHash returns the hex SHA-256 of the context, or "" when there is none.
func (k LemmaKey) ContextHash() string {
	if k.Context == nil {
		return ""
	}
	sum := sha256.Sum256([]byte(*k.Context))
	return hex.EncodeToString(sum[:])
}

// CacheKey returns a comparable string usable as a map key.
func (k LemmaKey) CacheKey() string {
	ctx := "-"
	if k.Context != nil {
		ctx = "c:" + k.ContextHash()
	}
	return k.RawWord + "\x1f" + k.TargetLanguage + "\x1f" + ctx
}

// LemmaResult is a resolved headword for a key.
type LemmaResult struct {
	Key      LemmaKey
	Headword string
}
