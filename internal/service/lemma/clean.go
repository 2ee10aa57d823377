package lemma

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/heartmarshall/lexicon/internal/domain"
)

const quoteChars = "\"'`“”‘’„«»‹›"

// sentence punctuation followed by more text: "run. It means..."
var sentenceBreakRe = regexp.MustCompile(`[.!?;]\s+\S`)

// extraWordsAllowed is how many more words than the input a lemma may have,
// enough for a reflexive particle ("se laver", "sich waschen") or "to go".
const extraWordsAllowed = 1

// explanationMarkers never appear in a bare headword unless the looked-up
// text already contained them. Matched as whole words, case-insensitively.
var explanationMarkers = []string{
	"is", "means", "lemma", "headword", "answer", "infinitive",
	"base form", "dictionary form", "root form", "verb", "noun", "adjective", "adverb",
}

// cleanLemma turns a raw model answer into a headword or returns an
// ErrInvalidLemma ResponseError.
func cleanLemma(raw, input string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.ContainsAny(s, "\r\n") {
		return "", domain.NewResponseError(domain.ErrInvalidLemma, raw, "multi-line answer")
	}

	s = trimEdges(s)
	if s == "" {
		return "", domain.NewResponseError(domain.ErrInvalidLemma, raw, "empty answer")
	}

	// "Lemma: run"
	if strings.Contains(s, ":") {
		return "", domain.NewResponseError(domain.ErrInvalidLemma, raw, "labelled answer")
	}
	if sentenceBreakRe.MatchString(s) {
		return "", domain.NewResponseError(domain.ErrInvalidLemma, raw, "explanatory answer")
	}

	words, inputWords := len(strings.Fields(s)), len(strings.Fields(input))
	if words > inputWords+extraWordsAllowed {
		return "", domain.NewResponseError(domain.ErrInvalidLemma, raw, "answer has %d words", words)
	}
	if words > inputWords {
		if m, ok := addedMarker(s, input); ok {
			return "", domain.NewResponseError(domain.ErrInvalidLemma, raw, "explanatory answer (%q)", m)
		}
	}

	return domain.NFC(domain.CompactSpaces(s)), nil
}

// addedMarker reports the first explanation marker present in answer but not
// in input.
func addedMarker(answer, input string) (string, bool) {
	a := wordBounded(answer)
	in := wordBounded(input)
	for _, m := range explanationMarkers {
		m = " " + m + " "
		if strings.Contains(a, m) && !strings.Contains(in, m) {
			return strings.TrimSpace(m), true
		}
	}
	return "", false
}

// wordBounded lowercases s, keeps only letter, digit and mark runs as words
// and pads the result with spaces so " word " matches whole words.
func wordBounded(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
	return " " + strings.Join(words, " ") + " "
}

// trimEdges strips surrounding quotes and any leading or trailing rune that
// is not a letter, digit, mark, space or hyphen. Inner characters are kept.
func trimEdges(s string) string {
	for {
		before := s
		s = strings.TrimSpace(s)
		s = strings.Trim(s, quoteChars)
		s = strings.TrimFunc(s, isEdgeJunk)
		if s == before {
			return s
		}
	}
}

func isEdgeJunk(r rune) bool {
	if r == '-' || unicode.IsSpace(r) {
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}
