package quiz

import (
	"strings"
	"unicode/utf8"
)

// DefaultAnswerLength is the number of leading letters a student types.
const DefaultAnswerLength = 2

// ValidAnswer reports whether input is accepted for judging. With length > 0
// the trimmed input must be exactly length runes and ASCII only. With
// length == 0 any non-empty trimmed input is accepted.
func ValidAnswer(input string, length int) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	if length <= 0 {
		return true
	}
	if utf8.RuneCountInString(trimmed) != length {
		return false
	}
	return isASCII(input)
}

// Judge reports whether input is a case-insensitive prefix of answer.
func Judge(answer, input string) bool {
	return strings.HasPrefix(strings.ToLower(answer), strings.ToLower(strings.TrimSpace(input)))
}

// Hint returns the first character of answer.
func Hint(answer string) string {
	r, size := utf8.DecodeRuneInString(strings.TrimSpace(answer))
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
