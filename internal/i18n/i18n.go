package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed locales/*.json
var locales embed.FS

type Lang string

const (
	English  Lang = "en"
	Spanish  Lang = "es"
	Fallback      = English
)

// Supported is ordered to match the language matcher in prefs.go.
var Supported = []Lang{English, Spanish}

func Parse(s string) (Lang, bool) {
	l := Lang(strings.ToLower(strings.TrimSpace(s)))
	for _, sup := range Supported {
		if l == sup {
			return l, true
		}
	}
	return Fallback, false
}

// Toggle switches between the two site languages.
func (l Lang) Toggle() Lang {
	if l == English {
		return Spanish
	}
	return English
}

type Bundle struct {
	tables map[Lang]map[string]any
	def    Lang
}

// Load reads the embedded locale tables. def is used when a request carries
// no usable preference; an unsupported def falls back to English.
func Load(def Lang) (*Bundle, error) {
	if _, ok := Parse(string(def)); !ok {
		def = Fallback
	}
	b := &Bundle{tables: make(map[Lang]map[string]any, len(Supported)), def: def}
	for _, l := range Supported {
		data, err := locales.ReadFile("locales/" + string(l) + ".json")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", l, err)
		}
		var table map[string]any
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", l, err)
		}
		b.tables[l] = table
	}
	return b, nil
}

func (b *Bundle) Default() Lang { return b.def }

func (b *Bundle) Translator(l Lang) Translator {
	table, ok := b.tables[l]
	if !ok {
		l = b.def
		table = b.tables[l]
	}
	return Translator{lang: l, table: table}
}

// Translator is an immutable view of one locale.
type Translator struct {
	lang  Lang
	table map[string]any
}

func (t Translator) Lang() Lang { return t.lang }

// T resolves a dotted key such as "nav.home". Missing keys come back as-is.
func (t Translator) T(key string) string {
	var node any = t.table
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return key
		}
		node = m[part]
	}
	if s, ok := node.(string); ok && s != "" {
		return s
	}
	return key
}
