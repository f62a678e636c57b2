package alias

import (
	"context"

	"github.com/lvonguyen/tagforge/internal/annotation"
)

// RelabelSpans re-types every span carrying one of the source types by
// resolving its full surface text through the resolver: the resolved
// category picks a target label, a miss picks defaultLabel. The span's
// tag shape is untouched; every token of the span gets the same new
// type. One parameterized pass covers software and group relabeling.
func RelabelSpans(ctx context.Context, doc *annotation.Document, sourceTypes []string,
	r EntityResolver, targets TargetLabels, defaultLabel string) {

	cur := annotation.NewCursor(doc)
	for _, sourceType := range sourceTypes {
		for i := 0; i < len(doc.Lines); i++ {
			l := &doc.Lines[i]
			if !l.Labeled || l.Type != sourceType {
				continue
			}
			switch l.Tag {
			case annotation.TagSingle:
				l.Type = LabelFor(ctx, r, l.Token, defaultLabel, targets)
			case annotation.TagBegin:
				span := cur.ExtractSpan(i)
				newType := LabelFor(ctx, r, span.Text(), defaultLabel, targets)
				for _, idx := range span.Indexes {
					doc.Lines[idx].Type = newType
				}
				i = span.End()
			}
		}
	}
}
