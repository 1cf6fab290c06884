package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "US-12345-A1", "US-12345-A1", 100},
		{"both empty", "", "", 100},
		{"one empty", "abc", "", 0},
		{"one char off", "US-12344-A1", "US-12345-A1", 91},
		{"trailing period", "apple inc", "apple inc.", 95},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round(Ratio(tt.a, tt.b)))
		})
	}
}

func TestScorers_AreSymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"apple inc", "amazon.com, inc."},
		{"microsoft corp", "microsoft corporation"},
		{"test pat", "test patent 1"},
		{"US-99999-A1", "EP-11111-A1"},
		{"ünïcode", "unicode"},
	}
	scorers := map[string]Scorer{
		"ratio":         Ratio,
		"partial":       PartialRatio,
		"token_sort":    TokenSortRatio,
		"token_set":     TokenSetRatio,
		"token":         TokenRatio,
		"partial_token": PartialTokenRatio,
		"wratio":        WRatio,
	}
	for name, s := range scorers {
		for _, p := range pairs {
			ab, ba := s(p[0], p[1]), s(p[1], p[0])
			assert.InDelta(t, ab, ba, 1e-9, "%s(%q,%q) not symmetric", name, p[0], p[1])
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 100.0)
		}
	}
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialRatio("test", "test patent 1"))
	assert.Equal(t, 100.0, PartialRatio("patent", "test patent 1"))
	assert.Equal(t, 0.0, PartialRatio("abc", "xyz"))
	assert.Equal(t, 0.0, PartialRatio("", "xyz"))
	assert.Equal(t, 100.0, PartialRatio("", ""))
	// "tent 9" has no full window match, best alignment is "tent 1".
	assert.Greater(t, PartialRatio("tent 9", "test patent 1"), 80.0)
}

func TestTokenSortRatio_IgnoresOrder(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortRatio("patent test", "test  patent"))
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 100.0, TokenSetRatio("test", "test patent 1"), "subset scores 100")
	assert.Equal(t, 92, Round(TokenSetRatio("test patent 1", "test patent 2")))
	assert.Equal(t, 0.0, TokenSetRatio("", "test"))
}

func TestTokenRatio_FragmentQuery(t *testing.T) {
	assert.Equal(t, 76, Round(TokenRatio("test pat", "test patent 1")))
	assert.Equal(t, 100, Round(TokenRatio("test patent 1", "test patent 1")))
	assert.Less(t, TokenRatio("completely different", "different patent"), 90.0)
}

func TestPartialTokenRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialTokenRatio("microsoft corp", "microsoft corporation"))
	assert.Equal(t, 0.0, PartialTokenRatio("", "x"))
}

func TestWRatio(t *testing.T) {
	assert.Equal(t, 95, Round(WRatio("apple inc", "apple inc.")))
	assert.Equal(t, 90, Round(WRatio("microsoft corp", "microsoft corporation")))
	assert.Equal(t, 100, Round(WRatio("apple inc.", "apple inc.")))
	assert.Equal(t, 0.0, WRatio("", "apple"))
	assert.Less(t, WRatio("apple inc", "amazon.com, inc."), 60.0)
}

func TestWRatio_LongLengthRatioDiscount(t *testing.T) {
	// 1 vs 9 characters: partial score is scaled by 0.6.
	assert.InDelta(t, 60.0, WRatio("a", "a bcdefgh"), 1e-9)
}

func TestExtract_TopNStableOnTies(t *testing.T) {
	choices := []string{"test patent 1", "different patent", "test patent 2"}

	got := Extract("test", choices, TokenRatio, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 2, got[1].Index)
	assert.Equal(t, 100.0, got[0].Score)
	assert.Equal(t, 100.0, got[1].Score)

	all := Extract("test", choices, TokenRatio, 0)
	assert.Len(t, all, 3)
	assert.Equal(t, 1, all[2].Index)

	assert.Nil(t, Extract("q", nil, Ratio, 5))
}

//Personal.AI order the ending
