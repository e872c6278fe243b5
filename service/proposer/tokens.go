package proposer

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	urlLabelCode
	payloadLabelCode
	urlCode
	jsonObjectCode
)

// Token definitions
var (
	whitespaceToken   = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	urlLabelToken     = parsly.NewToken(urlLabelCode, "UrlLabel", newLabelMatcher("url"))
	payloadLabelToken = parsly.NewToken(payloadLabelCode, "PayloadLabel", newLabelMatcher("payload"))
	urlToken          = parsly.NewToken(urlCode, "Url", newURLMatcher())
	jsonObjectToken   = parsly.NewToken(jsonObjectCode, "JsonObject", newJSONObjectMatcher())
)

func newLabelMatcher(label string) parsly.Matcher {
	return &labelMatcher{label: []byte(label)}
}

func newURLMatcher() parsly.Matcher {
	return &urlMatcher{}
}

func newJSONObjectMatcher() parsly.Matcher {
	return &jsonObjectMatcher{}
}

// labelMatcher matches `label:` or `label=` with optional whitespace around
// the separator, case insensitively.
type labelMatcher struct {
	label []byte
}

func (m *labelMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos+len(m.label) > size {
		return 0
	}
	for i, expect := range m.label {
		if toLower(input[pos+i]) != expect {
			return 0
		}
	}
	matched := len(m.label)
	for pos+matched < size && (input[pos+matched] == ' ' || input[pos+matched] == '\t') {
		matched++
	}
	if pos+matched >= size {
		return 0
	}
	if input[pos+matched] != ':' && input[pos+matched] != '=' {
		return 0
	}
	matched++
	for pos+matched < size && (input[pos+matched] == ' ' || input[pos+matched] == '\t') {
		matched++
	}
	return matched
}

// urlMatcher matches an http or https URL up to the next whitespace.
type urlMatcher struct{}

func (m *urlMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := matchPrefix(input, pos, size, "https://")
	if matched == 0 {
		matched = matchPrefix(input, pos, size, "http://")
	}
	if matched == 0 {
		return 0
	}
	if pos+matched >= size || isSpace(input[pos+matched]) {
		return 0
	}
	for pos+matched < size && !isSpace(input[pos+matched]) {
		matched++
	}
	return matched
}

// jsonObjectMatcher matches a brace balanced object, honouring string
// literals and escapes.
type jsonObjectMatcher struct{}

func (m *jsonObjectMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size || input[pos] != '{' {
		return 0
	}
	depth := 0
	inString := false
	for i := pos; i < size; i++ {
		c := input[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i - pos + 1
			}
		}
	}
	return 0
}

func matchPrefix(input []byte, pos, size int, prefix string) int {
	if pos+len(prefix) > size {
		return 0
	}
	for i := 0; i < len(prefix); i++ {
		if toLower(input[pos+i]) != prefix[i] {
			return 0
		}
	}
	return len(prefix)
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
