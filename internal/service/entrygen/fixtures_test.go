package entrygen

import "github.com/heartmarshall/lexicon/internal/domain"

const validEntryJSON = `{
  "metadata": {
    "source_language": "English",
    "target_language": "Spanish",
    "definition_language": "English"
  },
  "headword": "correr",
  "part_of_speech": "verb",
  "meanings": [
    {
      "definition": "to move swiftly on foot",
      "grammar": {"noun_type": null, "verb_type": "intransitive", "comparison": null},
      "examples": [
        {"sentence": "Corro todas las mañanas.", "translation": "I run every morning."},
        {"sentence": "¡Corre!", "translation": null}
      ]
    },
    {
      "definition": "to flow, of water or time",
      "grammar": {"noun_type": null, "verb_type": "intransitive", "comparison": null},
      "examples": []
    }
  ]
}`

var spanishLangs = domain.LanguageConfig{
	SourceLanguage:     "English",
	TargetLanguage:     "Spanish",
	DefinitionLanguage: "English",
}
