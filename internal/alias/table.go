// Package alias resolves entity surface forms against a canonical
// alias table built from threat-intelligence catalogs, and relabels
// annotated spans with the resolved category.
package alias

import (
	"encoding/json"
	"sort"
	"strings"
)

// Category classifies a canonical entity.
type Category string

const (
	CategoryTool         Category = "tool"
	CategoryMalware      Category = "malware"
	CategoryIntrusionSet Category = "intrusion-set"
)

// Entry holds the known aliases and category of one canonical entity.
// The persisted JSON form is {"aliases": [...], "type": "..."}.
type Entry struct {
	Aliases  []string `json:"aliases"`
	Category Category `json:"type"`
}

// Table maps lowercase canonical names to entries. Iteration order is
// fixed at insertion so exact-stage resolution is deterministic. A
// table is built once per run and read-only afterwards; it is safe to
// share across any number of resolver calls.
type Table struct {
	names   []string
	entries map[string]Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Add inserts or replaces an entry. The canonical name is lowercased
// and guaranteed to be a member of its own alias set.
func (t *Table) Add(canonical string, e Entry) {
	canonical = strings.ToLower(canonical)
	if !contains(e.Aliases, canonical) {
		e.Aliases = append(e.Aliases, canonical)
	}
	if _, exists := t.entries[canonical]; !exists {
		t.names = append(t.names, canonical)
	}
	t.entries[canonical] = e
}

// Get returns the entry for a canonical name.
func (t *Table) Get(canonical string) (Entry, bool) {
	e, ok := t.entries[strings.ToLower(canonical)]
	return e, ok
}

// Names returns canonical names in iteration order.
func (t *Table) Names() []string {
	return t.names
}

// Len returns the number of canonical entries.
func (t *Table) Len() int {
	return len(t.names)
}

// MarshalJSON persists the table as a plain name-to-entry mapping, the
// cacheable form shared with the reference-table fetcher.
func (t *Table) MarshalJSON() ([]byte, error) {
	m := make(map[string]Entry, len(t.entries))
	for name, e := range t.entries {
		m[name] = e
	}
	return json.Marshal(m)
}

// UnmarshalJSON loads the persisted mapping. JSON objects carry no
// order, so names are sorted to keep resolution deterministic across
// cache reloads.
func (t *Table) UnmarshalJSON(data []byte) error {
	var m map[string]Entry
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	t.entries = make(map[string]Entry, len(m))
	t.names = t.names[:0]
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.Add(name, m[name])
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
