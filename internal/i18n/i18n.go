// Package i18n translates UI chrome and status labels through embedded TOML
// message catalogs. English is the reference catalog; other languages fall
// back to it key by key, and a key missing everywhere renders as itself so a
// forgotten translation shows up on screen instead of hiding.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/tally/internal/shared"
)

//go:embed en.toml ar.toml
var catalogs embed.FS

// DefaultLanguage is the reference catalog every lookup falls back to.
const DefaultLanguage = "en"

// Translator resolves message keys for one configured language.
type Translator struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

// New loads the catalog for lang. Unknown languages return
// shared.ErrInvalidConfig so the caller can warn and retry with
// DefaultLanguage.
func New(lang string) (*Translator, error) {
	fallback, err := loadCatalog(DefaultLanguage)
	if err != nil {
		return nil, err
	}

	if lang == "" || lang == DefaultLanguage {
		return &Translator{lang: DefaultLanguage, messages: fallback, fallback: fallback}, nil
	}

	messages, err := loadCatalog(lang)
	if err != nil {
		return nil, err
	}
	return &Translator{lang: lang, messages: messages, fallback: fallback}, nil
}

// Language returns the language this translator resolves first.
func (t *Translator) Language() string {
	return t.lang
}

// T resolves a dotted message key, falling back to English and then to the
// key itself.
func (t *Translator) T(key string) string {
	if msg, ok := t.messages[key]; ok {
		return msg
	}
	if msg, ok := t.fallback[key]; ok {
		return msg
	}
	return key
}

// Tf resolves a key and formats it with fmt.Sprintf.
func (t *Translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// Languages lists the embedded catalog languages.
func Languages() []string {
	entries, err := catalogs.ReadDir(".")
	if err != nil {
		return []string{DefaultLanguage}
	}

	var langs []string
	for _, entry := range entries {
		langs = append(langs, strings.TrimSuffix(entry.Name(), ".toml"))
	}
	sort.Strings(langs)
	return langs
}

// loadCatalog parses one embedded catalog into flat dotted keys.
func loadCatalog(lang string) (map[string]string, error) {
	data, err := catalogs.ReadFile(lang + ".toml")
	if err != nil {
		return nil, fmt.Errorf("%w: no message catalog for language %q", shared.ErrInvalidConfig, lang)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s catalog: %w", lang, err)
	}

	messages := make(map[string]string)
	flatten("", raw, messages)
	return messages, nil
}

// flatten walks nested TOML tables into "table.key" entries.
func flatten(prefix string, table map[string]any, out map[string]string) {
	for key, value := range table {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(name, v, out)
		case string:
			out[name] = v
		}
	}
}
