package query

import (
	"testing"

	"github.com/kailas-cloud/prodsearch/internal/domain/price"
)

func fptr(v float64) *float64 { return &v }

func TestCompilePoolSize(t *testing.T) {
	tests := []struct {
		topK int
		pool int
	}{
		{1, MinCandidatePool},
		{8, MinCandidatePool},
		{12, 12},
		{13, 13},
		{100, 100},
	}
	for _, tt := range tests {
		c := Compile(price.Parsed{Query: "towels"}, tt.topK, 0.2, "")
		if c.PoolSize != tt.pool {
			t.Errorf("Compile(topK=%d).PoolSize = %d, want %d", tt.topK, c.PoolSize, tt.pool)
		}
		if c.TopK != tt.topK {
			t.Errorf("Compile(topK=%d).TopK = %d", tt.topK, c.TopK)
		}
	}
}

func TestCompilePassesTextThrough(t *testing.T) {
	parsed := price.Parsed{Query: "cleaning spray", Range: price.Range{Max: fptr(10)}}
	c := Compile(parsed, 8, 0.2, "")
	if c.Text != "cleaning spray" {
		t.Errorf("Text = %q, want %q", c.Text, "cleaning spray")
	}
	if c.MinScore != 0.2 {
		t.Errorf("MinScore = %v, want 0.2", c.MinScore)
	}
}

func TestFiltersEmptyWithoutConstraints(t *testing.T) {
	c := Compile(price.Parsed{Query: "towels"}, 8, 0.2, "")
	if !c.Filters().IsEmpty() {
		t.Error("no bounds and no category should yield an empty filter")
	}
}

func TestFiltersPriceRange(t *testing.T) {
	parsed := price.Parsed{Query: "towels", Range: price.Range{Min: fptr(5), Max: fptr(10)}}
	c := Compile(parsed, 8, 0.2, "")

	conds := c.Filters().Conditions()
	if len(conds) != 1 {
		t.Fatalf("got %d conditions, want 1", len(conds))
	}
	cond := conds[0]
	if !cond.IsRange() || cond.Key() != PriceField {
		t.Fatalf("expected a price range condition, got key=%q", cond.Key())
	}
	if *cond.Range().GTE() != 5 || *cond.Range().LTE() != 10 {
		t.Errorf("range = [%v, %v], want [5, 10]", cond.Range().GTE(), cond.Range().LTE())
	}
}

func TestFiltersOneSidedRange(t *testing.T) {
	parsed := price.Parsed{Query: "spray", Range: price.Range{Max: fptr(10)}}
	c := Compile(parsed, 8, 0.2, "")

	conds := c.Filters().Conditions()
	if len(conds) != 1 {
		t.Fatalf("got %d conditions, want 1", len(conds))
	}
	r := conds[0].Range()
	if r.GTE() != nil {
		t.Error("gte should be unset for an upper-bound-only range")
	}
	if r.LTE() == nil || *r.LTE() != 10 {
		t.Errorf("lte = %v, want 10", r.LTE())
	}
}

func TestFiltersCategoryConjunction(t *testing.T) {
	parsed := price.Parsed{Query: "towels", Range: price.Range{Min: fptr(5)}}
	c := Compile(parsed, 8, 0.2, "bathroom")

	conds := c.Filters().Conditions()
	if len(conds) != 2 {
		t.Fatalf("got %d conditions, want 2", len(conds))
	}
	if !conds[0].IsRange() || conds[0].Key() != PriceField {
		t.Error("first condition should be the price range")
	}
	if !conds[1].IsMatch() || conds[1].Key() != CategoryField || conds[1].Match() != "bathroom" {
		t.Error("second condition should be the category match")
	}
}

func TestFiltersCategoryOnly(t *testing.T) {
	c := Compile(price.Parsed{Query: "towels"}, 8, 0.2, "bathroom")
	conds := c.Filters().Conditions()
	if len(conds) != 1 || !conds[0].IsMatch() {
		t.Fatalf("expected a single category match, got %v", conds)
	}
}
