package classify

import (
	"testing"

	"github.com/lvonguyen/tagforge/internal/annotation"
)

// =============================================================================
// Operating System Discovery Tests
// =============================================================================

func osLookup() staticLookup {
	return staticLookup{
		"windows server":      true,
		"windows server 2016": true,
		"red hat":             false,
	}
}

func TestDiscoverOS_GreedyExtension(t *testing.T) {
	in := "Windows O\nServer O\n2016 O\ncrashed O"
	doc := annotation.Parse(in)
	DiscoverOS(doc, annotation.SchemeBIOES, "OS", osLookup())

	want := "Windows B-OS\nServer I-OS\n2016 E-OS\ncrashed O"
	if got := doc.Render(); got != want {
		t.Errorf("DiscoverOS() =\n%s\nwant\n%s", got, want)
	}
}

func TestDiscoverOS_TwoTokenBIO(t *testing.T) {
	in := "Windows O\nServer O\nrebooted O"
	doc := annotation.Parse(in)
	DiscoverOS(doc, annotation.SchemeBIO, "OS", osLookup())

	want := "Windows B-OS\nServer I-OS\nrebooted O"
	if got := doc.Render(); got != want {
		t.Errorf("DiscoverOS() =\n%s\nwant\n%s", got, want)
	}
}

func TestDiscoverOS_SeedAlone(t *testing.T) {
	tests := []struct {
		scheme annotation.Scheme
		want   string
	}{
		{annotation.SchemeBIOES, "Linux S-OS\nhosts O"},
		{annotation.SchemeBIO, "Linux B-OS\nhosts O"},
	}
	for _, tt := range tests {
		doc := annotation.Parse("Linux O\nhosts O")
		DiscoverOS(doc, tt.scheme, "OS", osLookup())
		if got := doc.Render(); got != tt.want {
			t.Errorf("scheme %s: got\n%s\nwant\n%s", tt.scheme, got, tt.want)
		}
	}
}

func TestDiscoverOS_SingleSeedNeverExtends(t *testing.T) {
	lookup := staticLookup{"android server": true}
	doc := annotation.Parse("Android O\nServer O")
	DiscoverOS(doc, annotation.SchemeBIOES, "OS", lookup)

	want := "Android S-OS\nServer O"
	if got := doc.Render(); got != want {
		t.Errorf("DiscoverOS() =\n%s\nwant\n%s", got, want)
	}
}

func TestDiscoverOS_LabeledTokenStopsExtension(t *testing.T) {
	doc := annotation.Parse("Windows O\nServer S-Tool")
	DiscoverOS(doc, annotation.SchemeBIOES, "OS", osLookup())

	want := "Windows S-OS\nServer S-Tool"
	if got := doc.Render(); got != want {
		t.Errorf("DiscoverOS() =\n%s\nwant\n%s", got, want)
	}
}

func TestDiscoverOS_PhraseLengthCap(t *testing.T) {
	lookup := staticLookup{
		"windows a":         true,
		"windows a b":       true,
		"windows a b c":     true,
		"windows a b c d":   true,
		"windows a b c d e": true,
	}
	doc := annotation.Parse("Windows O\na O\nb O\nc O\nd O\ne O")
	DiscoverOS(doc, annotation.SchemeBIOES, "OS", lookup)

	want := "Windows B-OS\na I-OS\nb I-OS\nc I-OS\nd E-OS\ne O"
	if got := doc.Render(); got != want {
		t.Errorf("DiscoverOS() =\n%s\nwant\n%s", got, want)
	}
}
