package annotation

// Detect reports the tagging scheme of a document: any E or S tag
// means BIOES, otherwise BIO.
func Detect(doc *Document) Scheme {
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if l.Labeled && (l.Tag == TagEnd || l.Tag == TagSingle) {
			return SchemeBIOES
		}
	}
	return SchemeBIO
}

// ToBIO converts a document to BIO in place. The rewrite is purely
// per-token: E becomes I and S becomes B, keeping the entity type.
func ToBIO(doc *Document) {
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.Labeled {
			continue
		}
		switch l.Tag {
		case TagEnd:
			l.Tag = TagInside
		case TagSingle:
			l.Tag = TagBegin
		}
	}
}

// ToBIOES converts a document to BIOES in place. Each B or I line
// needs one labeled-line lookahead: a B whose successor is not a
// same-typed I becomes S, and an I whose successor is not a same-typed
// I becomes E. When no labeled line follows, the current token is
// span-final.
func ToBIOES(doc *Document) {
	cur := NewCursor(doc)
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.Labeled || l.Tag == TagOut {
			continue
		}

		continues := false
		if j := cur.NextLabeled(i); j >= 0 {
			next := &doc.Lines[j]
			continues = next.Tag == TagInside && next.Type == l.Type
		}

		switch l.Tag {
		case TagBegin:
			if !continues {
				l.Tag = TagSingle
			}
		case TagInside:
			if !continues {
				l.Tag = TagEnd
			}
		}
	}
}

// Convert rewrites doc to the requested scheme. Converting to the
// scheme the document already uses still normalizes it (a round trip
// through BIO is idempotent on canonical input).
func Convert(doc *Document, target Scheme) {
	switch target {
	case SchemeBIO:
		ToBIO(doc)
	case SchemeBIOES:
		ToBIO(doc)
		ToBIOES(doc)
	}
}
