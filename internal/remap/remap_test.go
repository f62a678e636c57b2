package remap

import (
	"testing"

	"github.com/lvonguyen/tagforge/internal/annotation"
)

func TestPairRules_ArityMismatch(t *testing.T) {
	_, err := PairRules([]string{"Time", "Area"}, []string{"TIME"})
	if err == nil {
		t.Fatal("PairRules should reject mismatched list lengths")
	}
}

func TestGroupRules(t *testing.T) {
	rules, err := GroupRules([]string{"Idus,Org", "Way, OffAct"}, []string{"IDTY", "ACT"})
	if err != nil {
		t.Fatalf("GroupRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if len(rules[1].Sources) != 2 || rules[1].Sources[1] != "OffAct" {
		t.Errorf("group sources not split/trimmed: %+v", rules[1])
	}
}

func TestGroupRules_ArityMismatch(t *testing.T) {
	_, err := GroupRules([]string{"A,B"}, []string{"X", "Y"})
	if err == nil {
		t.Fatal("GroupRules should reject mismatched list lengths")
	}
}

func TestApply_OneToOne(t *testing.T) {
	rules, err := PairRules([]string{"Time", "HackOrg"}, []string{"TIME", "APT"})
	if err != nil {
		t.Fatalf("PairRules failed: %v", err)
	}

	doc := annotation.Parse("Monday B-Time\nAPT28 S-HackOrg\nother B-Way\nthe O")
	Apply(doc, rules)

	want := "Monday B-TIME\nAPT28 S-APT\nother B-Way\nthe O"
	if got := doc.Render(); got != want {
		t.Errorf("Apply() =\n%s\nwant\n%s", got, want)
	}
}

func TestApply_ManyToOne_FirstMatchWins(t *testing.T) {
	rules, err := GroupRules([]string{"Org,Idus", "Org,Way"}, []string{"IDTY", "ACT"})
	if err != nil {
		t.Fatalf("GroupRules failed: %v", err)
	}

	doc := annotation.Parse("Google B-Org\nphishing B-Way")
	Apply(doc, rules)

	// Org appears in both groups; the first rule must win.
	want := "Google B-IDTY\nphishing B-ACT"
	if got := doc.Render(); got != want {
		t.Errorf("Apply() =\n%s\nwant\n%s", got, want)
	}
}

// TestApply_PreservesTagShape verifies the remap invariant: the tag
// sequence is identical before and after, only types change.
func TestApply_PreservesTagShape(t *testing.T) {
	rules, _ := PairRules([]string{"Mal"}, []string{"MAL"})

	in := "Wanna B-Mal\nCry E-Mal\nhit O\nNHS S-Org"
	doc := annotation.Parse(in)
	Apply(doc, rules)

	wantTags := []byte{'B', 'E', 'O', 'S'}
	for i, l := range doc.Lines {
		if l.Tag != wantTags[i] {
			t.Errorf("line %d tag = %c, want %c", i, l.Tag, wantTags[i])
		}
	}
}

func TestApply_UnmatchedPassThrough(t *testing.T) {
	rules, _ := PairRules([]string{"Time"}, []string{"TIME"})

	in := "APT28 B-HackOrg"
	doc := annotation.Parse(in)
	Apply(doc, rules)

	if got := doc.Render(); got != in {
		t.Errorf("unmatched label changed: %s", got)
	}
}
