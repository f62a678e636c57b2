package annotation

import "strings"

// Cursor walks the labeled lines of a document, skipping blank and
// malformed lines. It replaces ad-hoc index arithmetic with two named
// operations: peek the next labeled line, and extract a whole span.
type Cursor struct {
	doc *Document
}

// NewCursor returns a cursor over doc.
func NewCursor(doc *Document) *Cursor {
	return &Cursor{doc: doc}
}

// NextLabeled returns the index of the first labeled line after i, or
// -1 when no labeled line remains. Reaching the end is a normal
// terminal condition for every span-shape decision.
func (c *Cursor) NextLabeled(i int) int {
	for j := i + 1; j < len(c.doc.Lines); j++ {
		if c.doc.Lines[j].Labeled {
			return j
		}
	}
	return -1
}

// Span is one entity mention: a maximal run of same-typed tokens under
// a legal B(I)*E, B(I)* or S pattern.
type Span struct {
	Type    string
	Indexes []int // labeled line indexes, in order
	Tokens  []string
}

// Text returns the span's space-joined surface form.
func (s Span) Text() string {
	return strings.Join(s.Tokens, " ")
}

// End returns the index of the span's last line, so callers can resume
// scanning after it.
func (s Span) End() int {
	return s.Indexes[len(s.Indexes)-1]
}

// ExtractSpan collects the span starting at index i, which must hold a
// B or S line. An S span is trivially one token. A B span extends
// through same-typed I lines and stops at a same-typed E (inclusive)
// or at the first line that breaks the chain (exclusive).
func (c *Cursor) ExtractSpan(i int) Span {
	start := &c.doc.Lines[i]
	span := Span{
		Type:    start.Type,
		Indexes: []int{i},
		Tokens:  []string{start.Token},
	}
	if start.Tag != TagBegin {
		return span
	}

	for j := c.NextLabeled(i); j >= 0; j = c.NextLabeled(j) {
		next := &c.doc.Lines[j]
		if next.Type != span.Type {
			break
		}
		switch next.Tag {
		case TagInside:
			span.Indexes = append(span.Indexes, j)
			span.Tokens = append(span.Tokens, next.Token)
		case TagEnd:
			span.Indexes = append(span.Indexes, j)
			span.Tokens = append(span.Tokens, next.Token)
			return span
		default:
			return span
		}
	}
	return span
}
