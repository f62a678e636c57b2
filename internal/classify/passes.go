package classify

import (
	"strings"

	"github.com/lvonguyen/tagforge/internal/annotation"
)

// ClassifyFiles re-types single-token spans of sourceType through
// SampleFile. Only S spans and malformed singleton B spans (no I or E
// following) are candidates; multi-token spans keep their label, since
// a file name or hash never spans tokens.
func ClassifyFiles(doc *annotation.Document, sourceType, defaultType string) {
	cur := annotation.NewCursor(doc)
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.Labeled || l.Type != sourceType {
			continue
		}
		switch l.Tag {
		case annotation.TagSingle:
			l.Type = SampleFile(l.Token, defaultType)
		case annotation.TagBegin:
			if j := cur.NextLabeled(i); j >= 0 {
				next := &doc.Lines[j]
				if next.Tag == annotation.TagInside || next.Tag == annotation.TagEnd {
					continue
				}
			}
			l.Type = SampleFile(l.Token, defaultType)
		}
	}
}

// SplitExploits divides a generic exploit type into a vulnerability
// name and a vulnerability identifier by token content: tokens that
// start with "CVE" or "(CVE" get idType, everything else nameType.
// The source type comparison is case-insensitive.
func SplitExploits(doc *annotation.Document, sourceType, nameType, idType string) {
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.Labeled || !strings.EqualFold(l.Type, sourceType) {
			continue
		}
		if strings.HasPrefix(l.Token, "CVE") || strings.HasPrefix(l.Token, "(CVE") {
			l.Type = idType
		} else {
			l.Type = nameType
		}
	}
}

// IOCLabels configures the target type for each discovered indicator
// category. An empty label disables that category.
type IOCLabels struct {
	IP       string `yaml:"ip"`
	URL      string `yaml:"url"`
	File     string `yaml:"file"`
	Domain   string `yaml:"domain"`
	Email    string `yaml:"email"`
	Protocol string `yaml:"protocol"`
}

// Enabled reports whether any category has a target label.
func (l IOCLabels) Enabled() bool {
	return l != (IOCLabels{})
}

// DiscoverIOCs scans O-tagged tokens for low-level indicators of
// compromise and tags hits as single-token spans: B under BIO, S under
// BIOES. File and hash detection run before the URL, domain and
// protocol checks; hash hits are typed with the algorithm name itself.
func DiscoverIOCs(doc *annotation.Document, scheme annotation.Scheme, labels IOCLabels) {
	tag := discoveryTag(scheme)
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.IsO() || l.Token == "." {
			continue
		}

		switch {
		case labels.IP != "" && IsIPv4(l.Token):
			l.SetLabel(tag, labels.IP)
		case labels.Email != "" && IsEmail(l.Token):
			l.SetLabel(tag, labels.Email)
		case labels.File != "" && IsFile(l.Token):
			l.SetLabel(tag, labels.File)
		case HashAlgorithm(l.Token) != "":
			l.SetLabel(tag, HashAlgorithm(l.Token))
		case labels.URL != "" && IsURL(l.Token):
			l.SetLabel(tag, labels.URL)
		case labels.Domain != "" && IsDomain(l.Token):
			l.SetLabel(tag, labels.Domain)
		case labels.Protocol != "" && IsProtocol(l.Token):
			l.SetLabel(tag, labels.Protocol)
		}
	}
}

// DiscoverEncryption tags O tokens present in the encryption-algorithm
// lookup as single-token spans of entityType.
func DiscoverEncryption(doc *annotation.Document, scheme annotation.Scheme, entityType string, lookup Lookup) {
	if entityType == "" || lookup == nil {
		return
	}
	tag := discoveryTag(scheme)
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if l.IsO() && lookup.Contains(l.Token) {
			l.SetLabel(tag, entityType)
		}
	}
}

// discoveryTag returns the tag a freshly discovered single-token span
// carries under the active scheme.
func discoveryTag(scheme annotation.Scheme) byte {
	if scheme == annotation.SchemeBIOES {
		return annotation.TagSingle
	}
	return annotation.TagBegin
}
