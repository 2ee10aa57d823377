package entrygen

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/heartmarshall/lexicon/internal/domain"
)

// minScriptShare is the share of letters that must belong to the expected
// script for text to count as written in a language.
const minScriptShare = 0.6

// scriptTables maps ISO 15924 codes to the Unicode scripts used to write them.
var scriptTables = map[string][]*unicode.RangeTable{
	"Latn": {unicode.Latin},
	"Cyrl": {unicode.Cyrillic},
	"Grek": {unicode.Greek},
	"Arab": {unicode.Arabic},
	"Hebr": {unicode.Hebrew},
	"Deva": {unicode.Devanagari},
	"Beng": {unicode.Bengali},
	"Guru": {unicode.Gurmukhi},
	"Gujr": {unicode.Gujarati},
	"Taml": {unicode.Tamil},
	"Telu": {unicode.Telugu},
	"Knda": {unicode.Kannada},
	"Mlym": {unicode.Malayalam},
	"Sinh": {unicode.Sinhala},
	"Thai": {unicode.Thai},
	"Laoo": {unicode.Lao},
	"Khmr": {unicode.Khmer},
	"Mymr": {unicode.Myanmar},
	"Tibt": {unicode.Tibetan},
	"Geor": {unicode.Georgian},
	"Armn": {unicode.Armenian},
	"Ethi": {unicode.Ethiopic},
	"Thaa": {unicode.Thaana},
	"Mong": {unicode.Mongolian},
	"Hans": {unicode.Han},
	"Hant": {unicode.Han},
	"Hani": {unicode.Han},
	"Jpan": {unicode.Han, unicode.Hiragana, unicode.Katakana},
	"Kore": {unicode.Hangul, unicode.Han},
	"Hang": {unicode.Hangul},
}

var (
	namesOnce sync.Once
	tagByName map[string]language.Tag
)

// loadNames indexes every base language by its lower-cased English name.
func loadNames() {
	namer := display.English.Languages()
	tagByName = make(map[string]language.Tag)
	for _, b := range display.Supported.BaseLanguages() {
		tag := language.Make(b.String())
		name := namer.Name(tag)
		if name == "" {
			continue
		}
		tagByName[strings.ToLower(name)] = tag
	}
}

// lookupTag resolves an English language name or a BCP 47 code.
func lookupTag(name string) (language.Tag, bool) {
	namesOnce.Do(loadNames)

	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return language.Und, false
	}
	if tag, ok := tagByName[n]; ok {
		return tag, true
	}
	if tag, err := language.Parse(n); err == nil && tag != language.Und {
		return tag, true
	}
	return language.Und, false
}

// expectedScript returns the script code and Unicode tables for a language.
func expectedScript(languageName string) (string, []*unicode.RangeTable, bool) {
	tag, ok := lookupTag(languageName)
	if !ok {
		return "", nil, false
	}
	script, conf := tag.Script()
	if conf == language.No {
		return "", nil, false
	}
	tables, ok := scriptTables[script.String()]
	if !ok {
		return "", nil, false
	}
	return script.String(), tables, true
}

// scriptShare returns the fraction of letters in text that belong to tables
// and the number of letters seen.
func scriptShare(text string, tables []*unicode.RangeTable) (float64, int) {
	var letters, inScript int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsOneOf(tables, r) {
			inScript++
		}
	}
	if letters == 0 {
		return 1, 0
	}
	return float64(inScript) / float64(letters), letters
}

// definitionLanguageWarning reports when the definitions of entry do not
// appear to be written in definitionLanguage. Languages whose script cannot
// be determined are never flagged.
func definitionLanguageWarning(entry domain.DictionaryEntry, definitionLanguage string) *string {
	script, tables, ok := expectedScript(definitionLanguage)
	if !ok {
		return nil
	}

	var b strings.Builder
	for _, m := range entry.Meanings {
		b.WriteString(m.Definition)
		b.WriteByte(' ')
	}

	share, letters := scriptShare(b.String(), tables)
	if letters == 0 || share >= minScriptShare {
		return nil
	}

	w := fmt.Sprintf("definitions do not appear to be written in %s (%.0f%% of letters in %s script)",
		definitionLanguage, share*100, script)
	return &w
}
