package patent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

func TestClaimSet_UnmarshalArray(t *testing.T) {
	var cs ClaimSet
	require.NoError(t, json.Unmarshal([]byte(`[{"num":1,"text":"A device"},{"num":"2","text":"The device of claim 1"}]`), &cs))

	assert.Equal(t, 2, cs.Len())
	assert.Empty(t, cs.Raw)
	assert.Equal(t, ClaimNumber("1"), cs.Items[0].Num)
	assert.Equal(t, ClaimNumber("2"), cs.Items[1].Num)
}

func TestClaimSet_UnmarshalStringAndNull(t *testing.T) {
	var cs ClaimSet
	require.NoError(t, json.Unmarshal([]byte(`"[{\"num\": \"01\", \"text\": \"x\"}]"`), &cs))
	assert.Equal(t, `[{"num": "01", "text": "x"}]`, cs.Raw)
	assert.Zero(t, cs.Len())

	require.NoError(t, json.Unmarshal([]byte(`null`), &cs))
	assert.Equal(t, ClaimSet{}, cs)
}

func TestClaimSet_MarshalRoundTrip(t *testing.T) {
	raw := ClaimSet{Raw: `[{"num":"1","text":"x"}]`}
	b, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `"[{\"num\":\"1\",\"text\":\"x\"}]"`, string(b))

	b, err = json.Marshal(ClaimSet{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	b, err = json.Marshal(NewClaimSet(Claim{Num: "3", Text: "y"}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"num":"3","text":"y"}]`, string(b))
}

func TestClaimSet_Format(t *testing.T) {
	cs := NewClaimSet(
		Claim{Num: "1", Text: "A widget comprising a gear."},
		Claim{Text: "The widget of claim 1."},
	)
	got, err := cs.Format()
	require.NoError(t, err)
	assert.Equal(t, "Claim 1: A widget comprising a gear.\n\nClaim ?: The widget of claim 1.", got)
}

func TestClaimSet_FormatEmpty(t *testing.T) {
	got, err := ClaimSet{}.Format()
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestClaimSet_FormatRawString(t *testing.T) {
	cs := ClaimSet{Raw: `"[{\"num\": \"1\", \"text\": \"A so-called â\u0080\u009cwidgetâ\u0080\u009d\"}]"`}
	got, err := cs.Format()
	require.NoError(t, err)
	assert.Equal(t, `Claim 1: A so-called "widget"`, got)
}

func TestClaimSet_FormatMalformedDegradesToPlaceholder(t *testing.T) {
	cs := ClaimSet{Raw: "not a claims array"}
	got, err := cs.Format()
	require.Error(t, err)
	assert.Equal(t, ClaimsPlaceholder, got)
	assert.True(t, errors.IsCode(err, errors.CodeClaimsMalformed))
}

func TestRepairPunctuation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"left double quote", "â\u0080\u009cx", `"x`},
		{"right double quote", "xâ\u0080\u009d", `x"`},
		{"low double quote", "â\u0080\u009ex", `"x`},
		{"reversed double quote", "â\u0080\u009fx", `"x`},
		{"single quotes", "â\u0080\u0098aâ\u0080\u0099", "'a'"},
		{"em dash", "aâ\u0080\u0094b", "a-b"},
		{"stray lead byte", "aâb", "a-b"},
		{"clean text", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairPunctuation(tt.in))
		})
	}
}

func TestDecodeClaimsText_EscapeFallback(t *testing.T) {
	// Backslash-escaped quotes are not valid JSON until expanded.
	raw := `[{\"num\": 1, \"text\": \"first\"}, {\"num\": 2, \"text\": \"second\"}]`
	claims, err := DecodeClaimsText(raw)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, ClaimNumber("1"), claims[0].Num)
	assert.Equal(t, "second", claims[1].Text)
}

func TestDecodeClaimsText_InvalidEscape(t *testing.T) {
	_, err := DecodeClaimsText(`[{\q}]`)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeClaimsMalformed))
}

//Personal.AI order the ending
