package utils

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsUpper reports an all-caps word with at least two letters, e.g. "HELLO".
func IsUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			letters++
		}
	}
	return letters > 1
}

// IsTitle reports a capitalised word, e.g. "Hello".
func IsTitle(s string) bool {
	first, w := utf8.DecodeRuneInString(s)
	if w == 0 || !unicode.IsUpper(first) {
		return false
	}
	rest := s[w:]
	return strings.ToLower(rest) == rest
}

// ApplyCase copies the casing style of original onto word, which is
// expected lowercase. Only all-caps and title case are carried over.
func ApplyCase(original, word string) string {
	switch {
	case IsUpper(original):
		return strings.ToUpper(word)
	case IsTitle(original):
		first, w := utf8.DecodeRuneInString(word)
		if w == 0 {
			return word
		}
		return string(unicode.ToUpper(first)) + word[w:]
	}
	return word
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	str := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(char)
	}
	return b.String()
}
