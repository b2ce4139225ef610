package language

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
)

type entry struct {
	code3   string // ISO 639-2/T (3-letter)
	alt3    string // ISO 639-2/B alternate (e.g. "fre" vs "fra")
	display string
}

var builtin = []entry{
	{"jpn", "", "Japanese"},
	{"eng", "", "English"},
	{"spa", "", "Spanish"},
	{"und", "", "Undetermined"},
	{"fra", "fre", "French"},
	{"deu", "ger", "German"},
	{"ita", "", "Italian"},
	{"por", "", "Portuguese"},
	{"kor", "", "Korean"},
	{"zho", "chi", "Chinese"},
	{"rus", "", "Russian"},
	{"ara", "", "Arabic"},
	{"hin", "", "Hindi"},
	{"nld", "dut", "Dutch"},
	{"pol", "", "Polish"},
	{"swe", "", "Swedish"},
	{"dan", "", "Danish"},
	{"nor", "", "Norwegian"},
	{"fin", "", "Finnish"},
}

// Table maps ISO 639-2 codes to the track names written into output files.
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	names map[string]string
}

// Default returns the built-in table.
func Default() *Table {
	names := make(map[string]string, len(builtin)*2)
	for _, e := range builtin {
		names[e.code3] = e.display
		if e.alt3 != "" {
			names[e.alt3] = e.display
		}
	}
	return &Table{names: names}
}

// NewTable returns the built-in table extended with extra code/name entries.
// Extra entries override built-in names for the same code. Names are
// title-cased; codes must be three letters that parse as an ISO 639 base.
func NewTable(extra map[string]string) (*Table, error) {
	table := Default()
	if len(extra) == 0 {
		return table, nil
	}
	caser := cases.Title(xlanguage.English)
	for _, code := range slices.Sorted(maps.Keys(extra)) {
		normalized := Normalize(code)
		if len(normalized) != 3 {
			return nil, fmt.Errorf("language %q: code must be three letters", code)
		}
		if _, err := xlanguage.ParseBase(normalized); err != nil {
			return nil, fmt.Errorf("language %q: %w", code, err)
		}
		name := strings.TrimSpace(extra[code])
		if name == "" {
			return nil, fmt.Errorf("language %q: name is empty", code)
		}
		table.names[normalized] = caser.String(name)
	}
	return table, nil
}

// Normalize lowercases and trims a language code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Resolve returns the display name for code. Bibliographic codes missing
// from the table fall back to their terminology form ("ger" -> "deu").
func (t *Table) Resolve(code string) (string, bool) {
	if t == nil {
		return "", false
	}
	code = Normalize(code)
	if code == "" {
		return "", false
	}
	if name, ok := t.names[code]; ok {
		return name, true
	}
	if len(code) != 3 {
		return "", false
	}
	base, err := xlanguage.ParseBase(code)
	if err != nil {
		return "", false
	}
	if iso3 := base.ISO3(); iso3 != code {
		name, ok := t.names[iso3]
		return name, ok
	}
	return "", false
}

// Codes returns every known code in sorted order.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.names))
}
