// Package reftable acquires the read-only reference data the pipeline
// consumes: CSV membership tables (operating systems, encryption
// algorithms), the MITRE ATT&CK alias table built from STIX bundles,
// and an optional Redis cache in front of alias resolution.
package reftable

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Lookup is a case-insensitive membership test over a set of names.
// It is immutable after construction and safe for concurrent reads.
type Lookup struct {
	values map[string]struct{}
}

// NewLookup builds a lookup from a value list.
func NewLookup(values []string) *Lookup {
	l := &Lookup{values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			l.values[v] = struct{}{}
		}
	}
	return l
}

// Contains reports membership, ignoring case and surrounding space.
func (l *Lookup) Contains(value string) bool {
	_, ok := l.values[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// Len returns the number of entries.
func (l *Lookup) Len() int {
	return len(l.values)
}

// LoadCSV reads one named column of a CSV file into a lookup. The
// first record is the header; the column is matched case-insensitively.
func LoadCSV(path, column string) (*Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading reference table header: %w", err)
	}
	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("reference table %s has no column %q", path, column)
	}

	var values []string
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		if col < len(record) {
			values = append(values, record[col])
		}
	}

	return NewLookup(values), nil
}
