package alias

import (
	"context"
	"testing"
)

// =============================================================================
// Normalization Tests
// =============================================================================

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Emotet", "emotet"},
		{"EmotetTrojan", "emotet"},
		{"Dark-Comet_RAT", "darkcomet"},
		{"APT 28", "apt28"},
		{"Cobalt Strike Tool", "cobaltstrike"},
		{"LazarusGroup", "lazarus"},
		{"rat", ""}, // the suffix itself normalizes away
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Resolver Tests
// =============================================================================

func testTable() *Table {
	tbl := NewTable()
	tbl.Add("wannacry", Entry{Aliases: []string{"wanacry", "wcry"}, Category: CategoryMalware})
	tbl.Add("fancy bear", Entry{Aliases: []string{"apt28", "sofacy"}, Category: CategoryIntrusionSet})
	tbl.Add("cobalt strike", Entry{Category: CategoryTool})
	return tbl
}

func TestResolve_ExactStage(t *testing.T) {
	r := NewResolver(testTable(), DefaultFuzzyThreshold)
	ctx := context.Background()

	tests := []struct {
		query         string
		wantCanonical string
		wantCategory  Category
	}{
		{"WannaCry", "wannacry", CategoryMalware},
		{"WCry", "wannacry", CategoryMalware},
		{"WannaCryMalware", "wannacry", CategoryMalware}, // suffix stripped
		{"APT-28", "fancy bear", CategoryIntrusionSet},
		{"CobaltStrike", "cobalt strike", CategoryTool},
	}
	for _, tt := range tests {
		res, ok := r.Resolve(ctx, tt.query)
		if !ok {
			t.Errorf("Resolve(%q): no match", tt.query)
			continue
		}
		if res.Canonical != tt.wantCanonical || res.Category != tt.wantCategory {
			t.Errorf("Resolve(%q) = (%s, %s), want (%s, %s)",
				tt.query, res.Canonical, res.Category, tt.wantCanonical, tt.wantCategory)
		}
		if res.Fuzzy {
			t.Errorf("Resolve(%q) went fuzzy, want exact", tt.query)
		}
	}
}

func TestResolve_FuzzyStage(t *testing.T) {
	r := NewResolver(testTable(), DefaultFuzzyThreshold)

	// Token reorder defeats the exact stage but sorts identically.
	res, ok := r.Resolve(context.Background(), "Bear Fancy")
	if !ok {
		t.Fatal("Resolve(Bear Fancy): no match")
	}
	if res.Canonical != "fancy bear" || !res.Fuzzy || res.Score != 100 {
		t.Errorf("got (%s, fuzzy=%v, score=%d), want (fancy bear, true, 100)",
			res.Canonical, res.Fuzzy, res.Score)
	}
}

func TestResolve_ThresholdInclusive(t *testing.T) {
	// At threshold 100 only a perfect token-sort score passes, which
	// shows the boundary is inclusive.
	r := NewResolver(testTable(), 100)
	if _, ok := r.Resolve(context.Background(), "Bear Fancy"); !ok {
		t.Error("score 100 rejected at threshold 100")
	}
}

func TestResolve_ThresholdBoundary(t *testing.T) {
	// "abcd" against the sole alias "abce" scores a token-sort ratio of
	// exactly 75 (three of four characters match, 2*3/8). A threshold
	// equal to the score accepts, one point above rejects.
	tbl := NewTable()
	tbl.Add("abce", Entry{Category: CategoryMalware})

	res, ok := NewResolver(tbl, 75).Resolve(context.Background(), "abcd")
	if !ok {
		t.Fatal("score 75 rejected at threshold 75")
	}
	if res.Score != 75 || !res.Fuzzy {
		t.Errorf("got (score=%d, fuzzy=%v), want (75, true)", res.Score, res.Fuzzy)
	}

	if res, ok := NewResolver(tbl, 76).Resolve(context.Background(), "abcd"); ok {
		t.Errorf("score 75 accepted at threshold 76: %+v", res)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	r := NewResolver(testTable(), DefaultFuzzyThreshold)
	if res, ok := r.Resolve(context.Background(), "zzqqxxvv"); ok {
		t.Errorf("Resolve matched %s, want miss", res.Canonical)
	}
}

func TestResolve_ExactStageFirstEntryWins(t *testing.T) {
	tbl := NewTable()
	tbl.Add("first", Entry{Aliases: []string{"shared-name"}, Category: CategoryMalware})
	tbl.Add("second", Entry{Aliases: []string{"sharedname"}, Category: CategoryTool})
	r := NewResolver(tbl, DefaultFuzzyThreshold)

	for i := 0; i < 3; i++ {
		res, ok := r.Resolve(context.Background(), "SharedName")
		if !ok || res.Canonical != "first" {
			t.Fatalf("run %d: got %+v, want canonical first", i, res)
		}
	}
}

func TestNewResolver_ThresholdFallback(t *testing.T) {
	for _, bad := range []int{0, -5, 101} {
		r := NewResolver(testTable(), bad)
		if r.threshold != DefaultFuzzyThreshold {
			t.Errorf("threshold %d: got %d, want default", bad, r.threshold)
		}
	}
}

// =============================================================================
// Label Mapping Tests
// =============================================================================

func TestLabelFor(t *testing.T) {
	r := NewResolver(testTable(), DefaultFuzzyThreshold)
	targets := TargetLabels{Tool: "TOOL", Malware: "MAL", IntrusionSet: "APT"}
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
	}{
		{"WannaCry", "MAL"},
		{"CobaltStrike", "TOOL"},
		{"Sofacy", "APT"},
		{"zzqqxxvv", "DEF"},
	}
	for _, tt := range tests {
		if got := LabelFor(ctx, r, tt.query, "DEF", targets); got != tt.want {
			t.Errorf("LabelFor(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}
