package dictionary

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// maxTokenSize bounds the scanner buffer. A run of token runes that would
// not fit is split at a rune boundary into consecutive tokens.
const maxTokenSize = 1 << 20

// IsTokenRune reports whether r can be part of a token: letters, digits and underscore.
func IsTokenRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NewTokenScanner returns a scanner yielding the raw (not yet lowercased)
// tokens of r.
func NewTokenScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxTokenSize)
	s.Split(ScanTokens)
	return s
}

// Tokenize splits text into lowercase tokens.
func Tokenize(text string) []string {
	var tokens []string
	s := NewTokenScanner(strings.NewReader(text))
	for s.Scan() {
		tokens = append(tokens, strings.ToLower(s.Text()))
	}
	if err := s.Err(); err != nil {
		log.Warnf("Tokenizing stopped after %d tokens: %v", len(tokens), err)
	}
	return tokens
}

// NormalizeWord lowercases w and reports whether it is a single token.
// Entries from frequency lists, chunks and redis go through it so the
// vocabulary only ever holds words the tokenizer could have produced.
func NormalizeWord(w string) (string, bool) {
	if w == "" {
		return "", false
	}
	for _, r := range w {
		if r == utf8.RuneError || !IsTokenRune(r) {
			return "", false
		}
	}
	return strings.ToLower(w), true
}

// ScanTokens is a bufio.SplitFunc for maximal runs of token runes.
// Everything else, including invalid UTF-8, separates tokens.
func ScanTokens(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, width := utf8.DecodeRune(data[start:])
		if r == utf8.RuneError && !atEOF && !utf8.FullRune(data[start:]) {
			return start, nil, nil
		}
		if IsTokenRune(r) {
			break
		}
		start += width
	}

	for i := start; i < len(data); {
		if i-start >= maxTokenSize-utf8.UTFMax {
			return i, data[start:i], nil
		}
		r, width := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && !atEOF && !utf8.FullRune(data[i:]) {
			return start, nil, nil
		}
		if !IsTokenRune(r) {
			return i + width, data[start:i], nil
		}
		i += width
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
