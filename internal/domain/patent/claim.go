package patent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// ClaimsPlaceholder replaces the claims section of a prompt when the claims
// data cannot be decoded.
const ClaimsPlaceholder = "Error: Unable to format claims data"

// ClaimNumber is a claim's number as it appears in the source. Sources use
// both JSON numbers and strings.
type ClaimNumber string

// UnmarshalJSON accepts a JSON string or number.
func (n *ClaimNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = ClaimNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("claim number: %w", err)
	}
	*n = ClaimNumber(num.String())
	return nil
}

// Claim is one numbered claim of a patent.
type Claim struct {
	Num  ClaimNumber `json:"num"`
	Text string      `json:"text"`
}

// ─────────────────────────────────────────────────────────────────────────────
// ClaimSet
// ─────────────────────────────────────────────────────────────────────────────

// ClaimSet holds a patent's claims. Sources deliver claims either as a JSON
// array of {num, text} or as a string containing that array (often with
// mis-decoded punctuation). String sources are kept raw and decoded lazily by
// Resolve so that a bad entry degrades only the analysis that uses it.
type ClaimSet struct {
	Items []Claim
	Raw   string
}

// NewClaimSet builds a ClaimSet from decoded claims.
func NewClaimSet(claims ...Claim) ClaimSet {
	return ClaimSet{Items: claims}
}

// UnmarshalJSON accepts an array, a string or null.
func (c *ClaimSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = ClaimSet{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ClaimSet{Raw: s}
		return nil
	default:
		var items []Claim
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*c = ClaimSet{Items: items}
		return nil
	}
}

// MarshalJSON writes the claims back in the form they were read.
func (c ClaimSet) MarshalJSON() ([]byte, error) {
	if c.Raw != "" {
		return json.Marshal(c.Raw)
	}
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

// Len returns the number of decoded claims, or 0 for a raw set.
func (c ClaimSet) Len() int {
	return len(c.Items)
}

// Resolve returns the decoded claims with punctuation repaired.
func (c ClaimSet) Resolve() ([]Claim, error) {
	if c.Raw == "" {
		out := make([]Claim, len(c.Items))
		for i, cl := range c.Items {
			out[i] = Claim{Num: cl.Num, Text: RepairPunctuation(cl.Text)}
		}
		return out, nil
	}
	return DecodeClaimsText(c.Raw)
}

// Format renders the claims as "Claim N: text" blocks separated by blank
// lines. Claims without a number use "?". Undecodable claims yield
// ClaimsPlaceholder together with the decode error.
func (c ClaimSet) Format() (string, error) {
	claims, err := c.Resolve()
	if err != nil {
		return ClaimsPlaceholder, err
	}
	blocks := make([]string, 0, len(claims))
	for _, cl := range claims {
		num := string(cl.Num)
		if num == "" {
			num = "?"
		}
		blocks = append(blocks, fmt.Sprintf("Claim %s: %s", num, cl.Text))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Decoding of string-encoded claims
// ─────────────────────────────────────────────────────────────────────────────

// mojibake lists UTF-8 punctuation that was decoded as Latin-1, in the order
// the replacements are applied. The bare "â" entry catches leftovers once the
// full sequences are gone.
var mojibake = []struct{ from, to string }{
	{"â\u0080\u009c", `"`},
	{"â\u0080\u009d", `"`},
	{"â\u0080\u0098", "'"},
	{"â\u0080\u0099", "'"},
	{"â\u0080\u009e", `"`},
	{"â\u0080\u009f", `"`},
	{"â\u0080\u0094", "-"},
	{"â", "-"},
}

// RepairPunctuation replaces known mis-encoded punctuation sequences.
func RepairPunctuation(s string) string {
	for _, m := range mojibake {
		s = strings.ReplaceAll(s, m.from, m.to)
	}
	return s
}

// DecodeClaimsText decodes a string holding a JSON claims array. Surrounding
// quotes are stripped first; when the text is not valid JSON, backslash
// escapes are expanded and decoding is retried once.
func DecodeClaimsText(raw string) ([]Claim, error) {
	text := strings.Trim(raw, `"`)

	var claims []Claim
	err := json.Unmarshal([]byte(text), &claims)
	if err != nil {
		unescaped, uerr := unescape(text)
		if uerr != nil {
			return nil, errors.Wrap(uerr, errors.CodeClaimsMalformed, "claims text has invalid escapes")
		}
		if err = json.Unmarshal([]byte(unescaped), &claims); err != nil {
			return nil, errors.Wrap(err, errors.CodeClaimsMalformed, "claims text is not a JSON array")
		}
	}

	for i := range claims {
		claims[i].Text = RepairPunctuation(claims[i].Text)
	}
	return claims, nil
}

// unescape expands backslash escape sequences (\n, \t, \", \uXXXX, \xXX and
// friends) and leaves every other rune untouched.
func unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		if s[0] != '\\' {
			r, size := utf8.DecodeRuneInString(s)
			b.WriteRune(r)
			s = s[size:]
			continue
		}
		if len(s) >= 2 {
			switch s[1] {
			case '"', '\'', '/':
				b.WriteByte(s[1])
				s = s[2:]
				continue
			}
		}
		r, _, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			return "", err
		}
		b.WriteRune(r)
		s = tail
	}
	return b.String(), nil
}

//Personal.AI order the ending
