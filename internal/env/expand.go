// Package env expands ${env.NAME} expressions in configuration and graph
// definition documents.
package env

import (
	"os"
	"strings"
	"unicode"
)

const prefix = "${env."

// Expand replaces every ${env.NAME} with the NAME environment variable, unset
// variables expand to an empty string.
func Expand(value string) string {
	return ExpandWith(value, os.Getenv)
}

// ExpandWith replaces every ${env.NAME} with lookup(NAME). A name containing
// anything but letters, digits or '_' leaves the prefix literal, an
// unterminated expression leaves the rest of the input literal.
func ExpandWith(value string, lookup func(string) string) string {
	if !strings.Contains(value, prefix) {
		return value
	}
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)
		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		key := value[startKey : startKey+endKey]
		if !isName(key) {
			b.WriteString(value[i+idx : startKey])
			i = startKey
			continue
		}
		b.WriteString(lookup(key))
		i = startKey + endKey + 1
	}
	return b.String()
}

func isName(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
