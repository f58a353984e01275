// Package cli handles cmd line input and corrections for DBG and testing various features
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordfix/internal/logger"
	"github.com/bastiangx/wordfix/internal/utils"
	"github.com/bastiangx/wordfix/pkg/dictionary"
	"github.com/bastiangx/wordfix/pkg/spell"
	"github.com/charmbracelet/log"
)

// InputHandler reads lines from stdin and prints corrections. A line
// holding one word shows the ranked candidates; longer lines are corrected
// word by word and printed back with the original casing.
type InputHandler struct {
	corrector      spell.ICorrector
	minWordLength  int
	maxWordLength  int
	candidateLimit int
	noFilter       bool
	showCandidates bool
	in             io.Reader
	out            *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(corrector spell.ICorrector, minLength, maxLength, limit int, noFilter, showCandidates bool) *InputHandler {
	return &InputHandler{
		corrector:      corrector,
		minWordLength:  minLength,
		maxWordLength:  maxLength,
		candidateLimit: limit,
		noFilter:       noFilter,
		showCandidates: showCandidates,
		in:             os.Stdin,
		out:            logger.New(""),
	}
}

// SetIO replaces stdin and the output destination.
func (h *InputHandler) SetIO(r io.Reader, w io.Writer) {
	h.in = r
	h.out = logger.NewWithWriter("", w)
}

// Start runs the loop until the input ends or ctx is cancelled.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("wordfix CLI [BETA]")
	h.out.Print("type a word or a sentence and press Enter (Ctrl+C to exit):")

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.handleInput(ctx, line)
	}
	return scanner.Err()
}

func (h *InputHandler) handleInput(ctx context.Context, line string) {
	words := strings.FieldsFunc(line, func(r rune) bool { return !dictionary.IsTokenRune(r) })
	if len(words) == 0 {
		h.out.Warnf("Nothing to correct in: '%s'", line)
		return
	}
	if len(words) == 1 {
		h.handleWord(words[0])
		return
	}
	h.handleSentence(ctx, words)
}

func (h *InputHandler) accept(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < h.minWordLength {
		h.out.Errorf("Word too short: %s", word)
		return false
	}
	if h.maxWordLength > 0 && n > h.maxWordLength {
		h.out.Errorf("Word too long: %s", word)
		return false
	}
	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter && !utils.IsValidInput(word) {
		h.out.Infof("Skipping '%s'", word)
		return false
	}
	return true
}

func (h *InputHandler) handleWord(word string) {
	if !h.accept(word) {
		return
	}

	start := time.Now()
	res := h.corrector.Correct(word)
	h.out.Debugf("Took [ %v ] for '%s'", time.Since(start), word)

	if res.Tier == spell.TierExact {
		h.out.Printf("'%s' is spelled correctly", word)
	} else {
		h.out.Printf("%s -> %s  (%s)", word, utils.ApplyCase(word, res.Correction), res.Tier)
	}
	if !h.showCandidates || res.Tier == spell.TierFallback {
		return
	}

	cands := res.Candidates
	if h.candidateLimit > 0 && len(cands) > h.candidateLimit {
		cands = cands[:h.candidateLimit]
	}
	for i, c := range cands {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", c.Word)
		h.out.Printf("%2d. %-40s (freq: %8s  p: %.6f)", i+1, clWord, utils.FormatWithCommas(c.Count), c.Probability)
	}
}

func (h *InputHandler) handleSentence(ctx context.Context, words []string) {
	var toFix []string
	var idx []int
	for i, w := range words {
		if h.accept(w) {
			toFix = append(toFix, w)
			idx = append(idx, i)
		}
	}

	start := time.Now()
	results, err := h.corrector.CorrectAll(ctx, toFix)
	if err != nil {
		h.out.Errorf("Correction failed: %v", err)
		return
	}
	h.out.Debugf("Took [ %v ] for %d words", time.Since(start), len(toFix))

	out := make([]string, len(words))
	copy(out, words)
	changed := 0
	for j, res := range results {
		i := idx[j]
		if res.Correction != strings.ToLower(words[i]) {
			changed++
		}
		out[i] = utils.ApplyCase(words[i], res.Correction)
	}
	h.out.Print(strings.Join(out, " "))
	h.out.Printf("%d of %d words changed", changed, len(words))
}
