package template

import "github.com/viant/parsly"

const (
	placeholderCode = iota
	textCode
)

var (
	placeholderToken = parsly.NewToken(placeholderCode, "Placeholder", &placeholderMatcher{})
	textToken        = parsly.NewToken(textCode, "Text", &textMatcher{})
)

// placeholderMatcher matches {name} where name is a non-empty run without '}'
type placeholderMatcher struct{}

func (m *placeholderMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize || input[pos] != '{' {
		return 0
	}
	for i := pos + 1; i < cursor.InputSize; i++ {
		if input[i] == '}' {
			if i == pos+1 {
				return 0
			}
			return i - pos + 1
		}
	}
	return 0
}

// textMatcher matches literal text up to the next '{', a '{' that does not open
// a placeholder is consumed as a single literal byte
type textMatcher struct{}

func (m *textMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize {
		return 0
	}
	matched := 1
	for i := pos + 1; i < cursor.InputSize; i++ {
		if input[i] == '{' {
			break
		}
		matched++
	}
	return matched
}
