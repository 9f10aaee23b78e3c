package summarizer

import (
	"strings"
	"unicode/utf8"
)

// MaxContentChars caps how many characters of a document reach the prompt.
const MaxContentChars = 5000

// DecodeLossy decodes b as UTF-8, dropping invalid byte sequences.
func DecodeLossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

// Truncate returns the first limit characters of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}

	return s
}
