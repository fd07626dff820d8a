package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	cases := []struct {
		raw  string
		kind QueryKind
		id   int64
	}{
		{raw: "", kind: QueryAll},
		{raw: "   ", kind: QueryAll},
		{raw: "42", kind: QueryByID, id: 42},
		{raw: " 7 ", kind: QueryByID, id: 7},
		{raw: "ab", kind: QuerySuppressed},
		{raw: "ñu", kind: QuerySuppressed},
		{raw: "abc", kind: QueryByName},
		{raw: "a1b", kind: QueryByName},
		{raw: "99999999999999999999", kind: QueryByID, id: -1},
	}
	for _, tc := range cases {
		got := ParseQuery(tc.raw)
		assert.Equal(t, tc.kind, got.Kind, "raw=%q", tc.raw)
		if tc.kind == QueryByID {
			assert.Equal(t, tc.id, got.ID, "raw=%q", tc.raw)
		}
	}
}

func TestParseQueryNormalisesComposedRunes(t *testing.T) {
	decomposed := "Ac\u0327o"
	got := ParseQuery(decomposed)
	assert.Equal(t, QueryByName, got.Kind)
	assert.Equal(t, "A\u00e7o", got.Text)
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	q := ParseQuery("50%_off")
	assert.Equal(t, `%50\%\_off%`, q.LikePattern())
}
