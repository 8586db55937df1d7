// Package countries bundles the static country reference table used to map
// destination codes to display names and continents.
package countries

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed countries.json
var raw []byte

// Country is one row of the bundled reference table.
type Country struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Continent string `json:"continent"`
}

// Table provides code-keyed lookups over the bundled reference data.
type Table struct {
	byCode map[string]Country
}

// Load parses the bundled table. Call once at process start and share the
// result; the table is read-only after construction.
func Load() (*Table, error) {
	var list []Country
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse bundled country table: %w", err)
	}
	byCode := make(map[string]Country, len(list))
	for _, c := range list {
		byCode[c.Code] = c
	}
	return &Table{byCode: byCode}, nil
}

// Lookup returns the full record for an ISO 3166-1 alpha-2 code.
func (t *Table) Lookup(code string) (Country, bool) {
	c, ok := t.byCode[code]
	return c, ok
}

// Name returns the display name for a country code.
func (t *Table) Name(code string) (string, bool) {
	c, ok := t.byCode[code]
	return c.Name, ok
}

// ContinentOf returns the continent code for a country, or "" when the
// country code is unknown. An empty continent never matches a rule entry,
// so continent-keyed rules simply fall through for unknown destinations.
func (t *Table) ContinentOf(code string) string {
	return t.byCode[code].Continent
}
