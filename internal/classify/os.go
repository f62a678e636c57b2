package classify

import (
	"strings"

	"github.com/lvonguyen/tagforge/internal/annotation"
)

// Seed words that start an operating-system phrase. "android" is
// always a single-token span; the rest attempt greedy extension.
var (
	osSingleSeed = "android"
	osFamilyWords = toSet([]string{
		"windows", "linux", "mac", "macos", "ubuntu", "fedora",
		"centos", "rhel", "freebsd",
	})
)

// Longest OS phrase the tagger will emit, in tokens.
const maxOSPhrase = 5

// DiscoverOS tags operating-system mentions among O tokens. A family
// seed word opens a candidate span which is extended one untagged
// token at a time; each extension is kept only while the reference
// lookup recognizes the full concatenated phrase, otherwise the
// candidate rolls back to the last accepted length. The accepted span
// (1..5 tokens) is emitted as B(I)* under BIO or S / B(I)*E under
// BIOES.
func DiscoverOS(doc *annotation.Document, scheme annotation.Scheme, entityType string, lookup Lookup) {
	if entityType == "" {
		return
	}
	cur := annotation.NewCursor(doc)

	for i := 0; i < len(doc.Lines); i++ {
		l := &doc.Lines[i]
		if !l.IsO() {
			continue
		}
		lower := strings.ToLower(l.Token)

		if lower == osSingleSeed {
			tagOSSpan(doc, scheme, entityType, []int{i})
			continue
		}
		if _, seed := osFamilyWords[lower]; !seed {
			continue
		}

		indexes := []int{i}
		phrase := l.Token
		if lookup != nil {
			last := i
			for len(indexes) < maxOSPhrase {
				j := cur.NextLabeled(last)
				if j < 0 || !doc.Lines[j].IsO() {
					break
				}
				candidate := phrase + " " + doc.Lines[j].Token
				if !lookup.Contains(candidate) {
					break
				}
				indexes = append(indexes, j)
				phrase = candidate
				last = j
			}
		}

		tagOSSpan(doc, scheme, entityType, indexes)
		i = indexes[len(indexes)-1]
	}
}

// tagOSSpan writes the B/I/E/S pattern for a span of the given line
// indexes under the active scheme.
func tagOSSpan(doc *annotation.Document, scheme annotation.Scheme, entityType string, indexes []int) {
	n := len(indexes)
	for pos, idx := range indexes {
		var tag byte
		switch {
		case pos == 0 && n == 1:
			if scheme == annotation.SchemeBIOES {
				tag = annotation.TagSingle
			} else {
				tag = annotation.TagBegin
			}
		case pos == 0:
			tag = annotation.TagBegin
		case pos == n-1 && scheme == annotation.SchemeBIOES:
			tag = annotation.TagEnd
		default:
			tag = annotation.TagInside
		}
		doc.Lines[idx].SetLabel(tag, entityType)
	}
}
