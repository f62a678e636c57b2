// Package consistency enforces per-surface-form label agreement
// across a document: once a token has been seen as a single-token
// entity, later conflicting or untagged occurrences of the same token
// are rewritten to the first-seen label.
package consistency

import (
	"github.com/lvonguyen/tagforge/internal/annotation"
)

type memoLabel struct {
	tag        byte
	entityType string
}

// Correct runs two linear passes. The first builds a surface-form memo
// from S spans and singleton B spans (a B whose next labeled token is
// O, i.e. it lacks its I/E continuation), rewriting repeats to the
// first-seen label. The second rewrites O tokens whose surface form is
// in the memo. Each pass runs once; a token is corrected by at most
// one memo lookup, so running Correct on its own output changes
// nothing.
func Correct(doc *annotation.Document) {
	memo := make(map[string]memoLabel)
	cur := annotation.NewCursor(doc)

	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.Labeled || l.Type == "" {
			continue
		}
		switch l.Tag {
		case annotation.TagSingle:
			memoize(memo, l)
		case annotation.TagBegin:
			j := cur.NextLabeled(i)
			if j >= 0 && doc.Lines[j].Tag == annotation.TagOut {
				memoize(memo, l)
			}
		}
	}

	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.IsO() {
			continue
		}
		if m, seen := memo[l.Token]; seen {
			l.SetLabel(m.tag, m.entityType)
		}
	}
}

// memoize applies first-seen-wins: a known surface form overwrites the
// current label, an unknown one records it.
func memoize(memo map[string]memoLabel, l *annotation.Line) {
	if m, seen := memo[l.Token]; seen {
		l.SetLabel(m.tag, m.entityType)
		return
	}
	memo[l.Token] = memoLabel{tag: l.Tag, entityType: l.Type}
}
