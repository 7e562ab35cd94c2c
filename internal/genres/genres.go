// Package genres maps TMDB genre ids to localized names and back.
package genres

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"marquee/internal/media"
)

//go:embed genres.json
var genresJSON []byte

type entry struct {
	ID      int      `json:"id"`
	EN      string   `json:"en"`
	FR      string   `json:"fr"`
	Aliases []string `json:"aliases"`
}

type table struct {
	entries []entry
	byID    map[int]*entry
	byName  map[string]int
}

// Index maps built at init time.
var tables map[media.Kind]*table

func init() {
	var raw map[media.Kind][]entry
	if err := json.Unmarshal(genresJSON, &raw); err != nil {
		panic(fmt.Sprintf("genres: decode embedded table: %v", err))
	}
	tables = make(map[media.Kind]*table, len(raw))
	for kind, entries := range raw {
		t := &table{
			entries: entries,
			byID:    make(map[int]*entry, len(entries)),
			byName:  make(map[string]int, len(entries)*3),
		}
		for i := range t.entries {
			e := &t.entries[i]
			t.byID[e.ID] = e
			for _, name := range append([]string{e.EN, e.FR}, e.Aliases...) {
				key := normalize(name)
				// Exact names win over aliases shared by several entries.
				if _, exists := t.byName[key]; !exists || name == e.EN || name == e.FR {
					t.byName[key] = e.ID
				}
			}
		}
		tables[kind] = t
	}
}

func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ID resolves an English or French genre name, case-insensitively.
func ID(kind media.Kind, name string) (int, bool) {
	t := tables[kind]
	if t == nil {
		return 0, false
	}
	id, ok := t.byName[normalize(name)]
	return id, ok
}

// Name returns the genre name for locale ("en" or "fr"); unknown locales use English.
func Name(kind media.Kind, locale string, id int) (string, bool) {
	t := tables[kind]
	if t == nil {
		return "", false
	}
	e, ok := t.byID[id]
	if !ok {
		return "", false
	}
	if locale == "fr" {
		return e.FR, true
	}
	return e.EN, true
}

// Names maps ids to names for locale, skipping ids the table does not know.
func Names(kind media.Kind, locale string, ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := Name(kind, locale, id); ok {
			names = append(names, name)
		}
	}
	return names
}

// Known lists the English genre names for kind in table order.
func Known(kind media.Kind) []string {
	t := tables[kind]
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		names = append(names, e.EN)
	}
	return names
}
