package shared

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinNameQueryLength is the shortest name query that triggers a lookup.
const MinNameQueryLength = 3

// QueryKind classifies a free-text search box value.
type QueryKind int

const (
	// QueryAll means the box is empty: reload the full listing.
	QueryAll QueryKind = iota
	// QueryByID is an all-digit query routed to an identifier lookup.
	QueryByID
	// QueryByName is a name lookup (substring, case-insensitive).
	QueryByName
	// QuerySuppressed is too short to run; results stay as they are.
	QuerySuppressed
)

// SearchQuery is a parsed search box value.
type SearchQuery struct {
	Kind QueryKind
	ID   int64
	Text string
}

// ParseQuery routes raw to an identifier lookup, a name lookup or nothing.
func ParseQuery(raw string) SearchQuery {
	text := strings.TrimSpace(norm.NFC.String(raw))
	if text == "" {
		return SearchQuery{Kind: QueryAll}
	}
	if isDigits(text) {
		id, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return SearchQuery{Kind: QueryByID, ID: id, Text: text}
		}
		// overflowing digit strings cannot match any id
		return SearchQuery{Kind: QueryByID, ID: -1, Text: text}
	}
	if utf8.RuneCountInString(text) < MinNameQueryLength {
		return SearchQuery{Kind: QuerySuppressed, Text: text}
	}
	return SearchQuery{Kind: QueryByName, Text: text}
}

// LikePattern escapes the query for use with ILIKE.
func (q SearchQuery) LikePattern() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q.Text) + "%"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
