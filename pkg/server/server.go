package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordfix/internal/logger"
	"github.com/bastiangx/wordfix/internal/utils"
	"github.com/bastiangx/wordfix/pkg/config"
	"github.com/bastiangx/wordfix/pkg/model"
	"github.com/bastiangx/wordfix/pkg/spell"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Vocabulary is the listing side of the model, used by vocab and stats.
type Vocabulary interface {
	WithPrefix(prefix string, limit int) []model.Entry
	MostCommon(n int) []model.Entry
	Stats() map[string]int
}

// Server handles msgpack IPC for spelling corrections
type Server struct {
	corrector spell.ICorrector
	vocab     Vocabulary
	config    *config.Config
	in        io.Reader
	decoder   *msgpack.Decoder
	writer    *bufio.Writer
	encoder   *msgpack.Encoder
	log       *log.Logger
	requests  int
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(corrector spell.ICorrector, vocab Vocabulary, cfg *config.Config) *Server {
	return NewServerWithIO(corrector, vocab, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over r and w. A nil cfg uses defaults.
func NewServerWithIO(corrector spell.ICorrector, vocab Vocabulary, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	bw := bufio.NewWriter(w)
	return &Server{
		corrector: corrector,
		vocab:     vocab,
		config:    cfg,
		in:        r,
		decoder:   msgpack.NewDecoder(bufio.NewReader(r)),
		writer:    bw,
		encoder:   msgpack.NewEncoder(bw),
		log:       logger.New("server"),
	}
}

// Start sends the ready status and serves requests until the input ends or
// the stream can no longer be decoded. ctx is checked between requests. When
// the input is an io.Closer it is also closed on cancellation, which unblocks
// a pending read on pipes and connections; a plain blocking file such as a
// terminal stdin still waits for the next request before Start returns.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	if c, ok := s.in.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			if err := c.Close(); err != nil {
				s.log.Debugf("Closing input: %v", err)
			}
		})
		defer stop()
	}
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.log.Debug("Stopped while reading", "requests", s.requests)
				return ctxErr
			}
			if errors.Is(err, io.EOF) {
				s.log.Debug("Input closed", "requests", s.requests)
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return fmt.Errorf("decode request: %w", err)
		}
		s.requests++

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Debugf("Malformed request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	switch req.Action {
	case "", ActionCorrect:
		s.handleCorrect(req)
	case ActionBatch:
		s.handleBatch(ctx, req)
	case ActionVocab:
		s.handleVocab(req)
	case ActionStats:
		s.handleStats(req)
	case ActionHealth:
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// validateWord returns a client facing message when word cannot be corrected.
func (s *Server) validateWord(word string) string {
	if word == "" {
		return "Missing 'w' parameter"
	}
	if maxLen := s.config.Server.MaxWordLen; maxLen > 0 && utf8.RuneCountInString(word) > maxLen {
		return fmt.Sprintf("Word exceeds maximum length of %d characters", maxLen)
	}
	if s.config.Server.EnableFilter && !utils.IsValidInput(word) {
		return "Word must contain only letters, digits or underscores"
	}
	return ""
}

func (s *Server) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.config.Server.MaxCandidates
}

func (s *Server) handleCorrect(req Request) {
	if msg := s.validateWord(req.Word); msg != "" {
		s.log.Debug("Rejected word", "id", req.ID, "reason", msg)
		s.sendError(req.ID, msg, 400)
		return
	}

	start := time.Now()
	res := s.corrector.Correct(req.Word)
	resp := toResponse(res, req.Limit)
	resp.ID = req.ID
	resp.TimeTaken = time.Since(start).Microseconds()

	s.sendResponse(resp)
}

func (s *Server) handleBatch(ctx context.Context, req Request) {
	if len(req.Words) == 0 {
		s.sendError(req.ID, "Missing 'ws' parameter", 400)
		return
	}
	if maxBatch := s.config.Server.MaxBatch; maxBatch > 0 && len(req.Words) > maxBatch {
		s.sendError(req.ID, fmt.Sprintf("Batch exceeds maximum size of %d words", maxBatch), 400)
		return
	}
	for i, w := range req.Words {
		if msg := s.validateWord(w); msg != "" {
			s.sendError(req.ID, fmt.Sprintf("word %d: %s", i, msg), 400)
			return
		}
	}

	start := time.Now()
	results, err := s.corrector.CorrectAll(ctx, req.Words)
	if err != nil {
		s.log.Errorf("Batch %s failed: %v", req.ID, err)
		s.sendError(req.ID, "Internal server error", 500)
		return
	}

	out := make([]CorrectionResponse, len(results))
	for i, res := range results {
		out[i] = toResponse(res, req.Limit)
	}
	s.sendResponse(BatchResponse{
		ID:        req.ID,
		Results:   out,
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) handleVocab(req Request) {
	entries := toEntries(s.vocab.WithPrefix(req.Prefix, s.limit(req.Limit)))
	s.sendResponse(VocabResponse{
		ID:      req.ID,
		Entries: entries,
		Count:   len(entries),
	})
}

func (s *Server) handleStats(req Request) {
	stats := s.vocab.Stats()
	resp := StatsResponse{
		ID:    req.ID,
		Words: stats["words"],
		Total: stats["total"],
		Top:   toEntries(s.vocab.MostCommon(s.limit(req.Limit))),
	}
	if cached, ok := s.corrector.(interface{ CacheStats() map[string]int }); ok {
		resp.Cache = cached.CacheStats()
	}
	s.sendResponse(resp)
}

// sendResponse encodes response and flushes it so the client sees it
// before the next request is read.
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(CorrectionError{ID: id, Error: message, Code: code})
}

func toResponse(res spell.Result, limit int) CorrectionResponse {
	cands := res.Candidates
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	suggestions := make([]Suggestion, len(cands))
	for i, c := range cands {
		suggestions[i] = Suggestion{Word: c.Word, Count: c.Count, Probability: c.Probability}
	}
	return CorrectionResponse{
		Input:       res.Input,
		Correction:  res.Correction,
		Tier:        res.Tier.String(),
		Probability: res.Probability,
		Suggestions: suggestions,
	}
}

func toEntries(entries []model.Entry) []VocabEntry {
	out := make([]VocabEntry, len(entries))
	for i, e := range entries {
		out[i] = VocabEntry{Word: e.Word, Count: e.Count}
	}
	return out
}
