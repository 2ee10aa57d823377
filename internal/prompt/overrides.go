package prompt

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type overridesFile struct {
	Templates map[string]string `toml:"templates"`
}

// LoadOverrides reads a TOML file with a [templates] table and applies it on
// top of the embedded defaults. An empty path returns the defaults.
//
//	[templates]
//	lemma = """
//	Give the headword of [TARGET_WORD] ([TARGET_LANGUAGE]).
//	"""
func LoadOverrides(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt overrides %s: %w", path, err)
	}
	return ParseOverrides(data)
}

// ParseOverrides applies TOML-encoded overrides to the embedded defaults.
func ParseOverrides(data []byte) (*Set, error) {
	var f overridesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompt overrides: %w", err)
	}

	overrides := make(map[Name]string, len(f.Templates))
	for k, v := range f.Templates {
		overrides[Name(k)] = v
	}
	return Default().With(overrides)
}
