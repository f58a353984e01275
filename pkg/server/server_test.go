package server

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/wordfix/pkg/config"
	"github.com/bastiangx/wordfix/pkg/model"
	"github.com/bastiangx/wordfix/pkg/spell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func testModel() *model.Model {
	return model.FromCounts(map[string]int{
		"spelling":  40,
		"spewing":   2,
		"spell":     12,
		"corrected": 12,
		"poetry":    9,
		"the":       200,
	})
}

// session encodes msgs as a request stream, serves it to completion and
// returns a decoder over everything the server wrote.
func session(t *testing.T, cfg *config.Config, msgs ...any) *msgpack.Decoder {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, m := range msgs {
		require.NoError(t, enc.Encode(m))
	}

	m := testModel()
	var out bytes.Buffer
	srv := NewServerWithIO(spell.New(m), m, cfg, &in, &out)
	require.NoError(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func TestCorrect(t *testing.T) {
	dec := session(t, nil,
		Request{ID: "1", Word: "speling"},
		Request{ID: "2", Action: ActionCorrect, Word: "Korrectud", Limit: 1},
		Request{ID: "3", Word: "quintessential"},
	)

	var r1 CorrectionResponse
	require.NoError(t, dec.Decode(&r1))
	assert.Equal(t, "1", r1.ID)
	assert.Equal(t, "speling", r1.Input)
	assert.Equal(t, "spelling", r1.Correction)
	assert.Equal(t, "edit1", r1.Tier)
	require.Len(t, r1.Suggestions, 2)
	assert.Equal(t, Suggestion{Word: "spelling", Count: 40, Probability: r1.Probability}, r1.Suggestions[0])
	assert.Equal(t, "spewing", r1.Suggestions[1].Word)
	assert.GreaterOrEqual(t, r1.TimeTaken, int64(0))

	var r2 CorrectionResponse
	require.NoError(t, dec.Decode(&r2))
	assert.Equal(t, "korrectud", r2.Input)
	assert.Equal(t, "corrected", r2.Correction)
	assert.Equal(t, "edit2", r2.Tier)
	assert.Len(t, r2.Suggestions, 1)

	var r3 CorrectionResponse
	require.NoError(t, dec.Decode(&r3))
	assert.Equal(t, "quintessential", r3.Correction)
	assert.Equal(t, "fallback", r3.Tier)
	assert.Zero(t, r3.Probability)
}

func TestBatch(t *testing.T) {
	dec := session(t, nil, Request{ID: "b", Action: ActionBatch, Words: []string{"peotry", "the", "speling"}})

	var resp BatchResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "b", resp.ID)
	require.Len(t, resp.Results, 3)

	got := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		got[i] = r.Correction
	}
	assert.Equal(t, []string{"poetry", "the", "spelling"}, got)
	assert.Equal(t, "exact", resp.Results[1].Tier)
}

func TestVocabAndStats(t *testing.T) {
	dec := session(t, nil,
		Request{ID: "v", Action: ActionVocab, Prefix: "SPE", Limit: 2},
		Request{ID: "s", Action: ActionStats, Limit: 1},
		Request{ID: "h", Action: ActionHealth},
	)

	var vocab VocabResponse
	require.NoError(t, dec.Decode(&vocab))
	assert.Equal(t, 2, vocab.Count)
	assert.Equal(t, []VocabEntry{{"spelling", 40}, {"spell", 12}}, vocab.Entries)

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 6, stats.Words)
	assert.Equal(t, 275, stats.Total)
	assert.Equal(t, []VocabEntry{{"the", 200}}, stats.Top)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "h", Status: "ok"}, health)
}

func TestErrorsDoNotStopServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxWordLen = 10
	cfg.Server.MaxBatch = 2

	dec := session(t, cfg,
		Request{ID: "e1"},
		Request{ID: "e2", Word: strings.Repeat("a", 11)},
		Request{ID: "e3", Word: "hello!"},
		Request{ID: "e4", Word: "12345"},
		Request{ID: "e5", Action: ActionBatch},
		Request{ID: "e6", Action: ActionBatch, Words: []string{"a", "b", "c"}},
		Request{ID: "e7", Action: ActionBatch, Words: []string{"ok", "no way"}},
		Request{ID: "e8", Action: "complete"},
		"not a map",
		Request{ID: "ok", Word: "speling"},
	)

	for _, id := range []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8", ""} {
		var e CorrectionError
		require.NoError(t, dec.Decode(&e), id)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, 400, e.Code, id)
		assert.NotEmpty(t, e.Error, id)
	}

	var last CorrectionResponse
	require.NoError(t, dec.Decode(&last))
	assert.Equal(t, "spelling", last.Correction)
}

func TestFilterDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.EnableFilter = false

	dec := session(t, cfg, Request{ID: "n", Word: "12345"})

	var resp CorrectionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "12345", resp.Correction)
	assert.Equal(t, "fallback", resp.Tier)
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	m := testModel()
	srv := NewServerWithIO(spell.New(m), m, nil, strings.NewReader(""), &out)
	assert.ErrorIs(t, srv.Start(ctx), context.Canceled)
}

func TestStartCancelUnblocksRead(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	m := testModel()
	srv := NewServerWithIO(spell.New(m), m, nil, pr, &out)
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	data, err := msgpack.Marshal(Request{ID: "1", Word: "speling"})
	require.NoError(t, err)
	_, err = pw.Write(data)
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server still blocked on input after cancel")
	}

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	var resp CorrectionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "spelling", resp.Correction)
}

func TestStartTruncatedInput(t *testing.T) {
	data, err := msgpack.Marshal(Request{ID: "x", Word: "speling"})
	require.NoError(t, err)

	var out bytes.Buffer
	m := testModel()
	srv := NewServerWithIO(spell.New(m), m, nil, bytes.NewReader(data[:len(data)-3]), &out)
	assert.Error(t, srv.Start(context.Background()))
}

func TestStatsIncludeCache(t *testing.T) {
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	require.NoError(t, enc.Encode(Request{ID: "1", Word: "speling"}))
	require.NoError(t, enc.Encode(Request{ID: "2", Word: "speling"}))
	require.NoError(t, enc.Encode(Request{ID: "3", Action: ActionStats}))

	m := testModel()
	var out bytes.Buffer
	srv := NewServerWithIO(spell.New(m, spell.WithCacheSize(8)), m, nil, &in, &out)
	require.NoError(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var skip map[string]any
	for i := 0; i < 3; i++ {
		require.NoError(t, dec.Decode(&skip))
	}
	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 1, stats.Cache["cacheHits"])
	assert.Equal(t, 1, stats.Cache["cacheEntries"])
}
