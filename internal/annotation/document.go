// Package annotation models token-level entity annotations in the
// one-token-per-line "TOKEN LABEL" format used by CTI NER corpora,
// and converts between the BIO and BIOES span-tagging schemes.
package annotation

import "strings"

// Scheme identifies a positional span-tagging scheme.
type Scheme string

const (
	SchemeBIO   Scheme = "BIO"
	SchemeBIOES Scheme = "BIOES"
)

// Valid reports whether s names a supported scheme.
func (s Scheme) Valid() bool {
	return s == SchemeBIO || s == SchemeBIOES
}

// Tag letters. O carries no entity type.
const (
	TagBegin  byte = 'B'
	TagInside byte = 'I'
	TagEnd    byte = 'E'
	TagSingle byte = 'S'
	TagOut    byte = 'O'
)

// Line is one line of an annotated document. Lines that do not split
// into exactly two space-separated fields (blank lines, sentence
// boundaries) are kept with Labeled=false and pass through every
// transformation verbatim.
type Line struct {
	Raw     string // original text, authoritative for unlabeled lines
	Token   string
	Tag     byte   // B, I, E, S or O when Labeled
	Type    string // entity type; empty for O
	Labeled bool
}

// IsO reports whether the line is labeled and outside any span.
func (l *Line) IsO() bool {
	return l.Labeled && l.Tag == TagOut
}

// Label renders the line's label field ("O" or "TAG-TYPE").
func (l *Line) Label() string {
	if l.Type == "" {
		return string(l.Tag)
	}
	return string(l.Tag) + "-" + l.Type
}

// SetLabel rewrites the line's tag and entity type.
func (l *Line) SetLabel(tag byte, entityType string) {
	l.Tag = tag
	l.Type = entityType
}

// Document is an ordered sequence of lines. All transformations
// mutate a Document in memory; Render materializes it back to text.
type Document struct {
	Lines []Line
}

// Parse splits annotated text into lines. A line is labeled when it
// splits on the first space into a token and a non-empty label; the
// label's first byte is the tag and anything after "TAG-" is the
// entity type. Scheme-inconsistent labels are preserved as data.
func Parse(text string) *Document {
	raw := strings.Split(strings.TrimSpace(text), "\n")
	doc := &Document{Lines: make([]Line, 0, len(raw))}

	for _, r := range raw {
		parts := strings.SplitN(r, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			doc.Lines = append(doc.Lines, Line{Raw: r})
			continue
		}

		label := strings.TrimSpace(parts[1])
		line := Line{
			Raw:     r,
			Token:   parts[0],
			Tag:     label[0],
			Labeled: true,
		}
		if len(label) > 2 {
			line.Type = label[2:]
		}
		doc.Lines = append(doc.Lines, line)
	}

	return doc
}

// Render serializes the document. Labeled lines are rebuilt from their
// current tag and type; unlabeled lines come back byte for byte.
func (d *Document) Render() string {
	var sb strings.Builder
	for i := range d.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		l := &d.Lines[i]
		if l.Labeled {
			sb.WriteString(l.Token)
			sb.WriteByte(' ')
			sb.WriteString(l.Label())
		} else {
			sb.WriteString(l.Raw)
		}
	}
	return sb.String()
}
