package dictionary

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/bastiangx/wordfix/pkg/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input       string
		expected    []string
		description string
	}{
		{"This is a TEST.", []string{"this", "is", "a", "test"}, "case folding and punctuation"},
		{"This is a test. 123; A TEST this is.", []string{"this", "is", "a", "test", "123", "a", "test", "this", "is"}, "digits are tokens"},
		{"snake_case--dash", []string{"snake_case", "dash"}, "underscore joins, dash splits"},
		{"Naïve café", []string{"naïve", "café"}, "unicode letters"},
		{"  \n\t ", nil, "only separators"},
		{"", nil, "empty"},
		{"end", []string{"end"}, "token at EOF"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Tokenize(tc.input), tc.description)
	}
}

func TestScanTokensOneByteAtATime(t *testing.T) {
	s := NewTokenScanner(iotest.OneByteReader(strings.NewReader("héllo, wörld!")))
	var got []string
	for s.Scan() {
		got = append(got, s.Text())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"héllo", "wörld"}, got)
}

func TestScanTokensInvalidUTF8(t *testing.T) {
	assert.Equal(t, []string{"ab", "cd"}, Tokenize("ab\xffcd"))
}

func TestScanTokensOverlongRun(t *testing.T) {
	for _, unit := range []string{"x", "é"} {
		run := strings.Repeat(unit, 2<<20)
		s := NewTokenScanner(strings.NewReader("hello " + run + " world"))
		var got []string
		for s.Scan() {
			got = append(got, s.Text())
		}
		require.NoError(t, s.Err(), unit)
		require.Greater(t, len(got), 3, unit)
		assert.Equal(t, "hello", got[0])
		assert.Equal(t, "world", got[len(got)-1])

		middle := got[1 : len(got)-1]
		for _, tok := range middle {
			assert.True(t, utf8.ValidString(tok), "split lands on a rune boundary")
			assert.LessOrEqual(t, len(tok), maxTokenSize)
		}
		assert.Equal(t, run, strings.Join(middle, ""), unit)
	}

	tokens := Tokenize("a " + strings.Repeat("z", maxTokenSize+10) + " b")
	assert.Equal(t, "b", tokens[len(tokens)-1])
}

func TestNormalizeWord(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"Hello", "hello", true},
		{"snake_case", "snake_case", true},
		{"Café", "café", true},
		{"42", "42", true},
		{"hello,", "", false},
		{"don't", "", false},
		{"new york", "", false},
		{"ab\xffcd", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		got, ok := NormalizeWord(tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
		assert.Equal(t, tc.expected, got, tc.input)
	}
}

func TestReadCorpus(t *testing.T) {
	b := model.NewBuilder()
	n, err := ReadCorpus(strings.NewReader("The cat and the hat."), b)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	m := b.Build()
	assert.Equal(t, 2, m.Count("the"))
	assert.Equal(t, 5, m.Total())
}

func TestReadFrequencies(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"the 80030",
		"Of\t40025",
		"",
		"broken",
		"half 2.7",
		"bad x",
		"zero 0",
		"Hello, 5",
		"don't 3",
		"e-mail 2",
	}, "\n")

	b := model.NewBuilder()
	n, err := ReadFrequencies(strings.NewReader(input), b)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	m := b.Build()
	assert.Equal(t, 80030, m.Count("the"))
	assert.Equal(t, 40025, m.Count("of"))
	assert.Equal(t, 2, m.Count("half"))
	assert.False(t, m.Contains("zero"))
	assert.False(t, m.Contains("broken"))
	for _, w := range []string{"hello,", "hello", "don't", "don", "e-mail"} {
		assert.False(t, m.Contains(w), w)
	}
}

func writeChunk(t *testing.T, entries map[string]uint32, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(len(order))))
	for _, w := range order {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(w))))
		buf.WriteString(w)
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, entries[w]))
	}
	return buf.Bytes()
}

func TestReadChunk(t *testing.T) {
	data := writeChunk(t, map[string]uint32{"spelling": 9, "spell": 4}, []string{"spelling", "spell"})

	b := model.NewBuilder()
	n, err := ReadChunk(bytes.NewReader(data), b)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	m := b.Build()
	assert.Equal(t, 9, m.Count("spelling"))
	assert.Equal(t, 13, m.Total())
}

func TestReadChunkSkipsNonTokens(t *testing.T) {
	data := writeChunk(t,
		map[string]uint32{"it's": 7, "Spell": 4, "two words": 2},
		[]string{"it's", "Spell", "two words"})

	b := model.NewBuilder()
	n, err := ReadChunk(bytes.NewReader(data), b)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	m := b.Build()
	assert.Equal(t, 4, m.Count("spell"))
	assert.Equal(t, 1, m.Len())
}

func TestReadChunkTruncated(t *testing.T) {
	data := writeChunk(t, map[string]uint32{"spelling": 9}, []string{"spelling"})

	_, err := ReadChunk(bytes.NewReader(data[:len(data)-2]), model.NewBuilder())
	assert.Error(t, err)

	var neg bytes.Buffer
	require.NoError(t, binary.Write(&neg, binary.LittleEndian, int32(-1)))
	_, err = ReadChunk(&neg, model.NewBuilder())
	assert.Error(t, err)
}

func TestLoadTextCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("Spelling spelling SPELLING spell\nother words"), 0644))

	m, err := Load(path, FormatUnknown)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Count("spelling"))
	assert.Equal(t, 6, m.Total())
}

func TestLoadEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	punct := filepath.Join(dir, "punct.txt")
	require.NoError(t, os.WriteFile(punct, []byte("... !!! ---"), 0644))

	_, err := Load(empty, FormatText)
	assert.True(t, errors.Is(err, ErrEmptyCorpus))

	_, err = Load(punct, FormatText)
	assert.True(t, errors.Is(err, ErrEmptyCorpus))

	_, err = Load(filepath.Join(dir, "missing.txt"), FormatText)
	assert.Error(t, err)
}

func TestLoadChunkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dict_0002.bin"),
		writeChunk(t, map[string]uint32{"beta": 2}, []string{"beta"}), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dict_0001.bin"),
		writeChunk(t, map[string]uint32{"alpha": 5, "beta": 1}, []string{"alpha", "beta"}), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dict_notes.bin"), []byte{0, 0, 0, 0}, 0644))

	chunks, err := ListChunks(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].ID)
	assert.Equal(t, 2, chunks[1].ID)

	m, err := Load(dir, FormatUnknown)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Count("alpha"))
	assert.Equal(t, 3, m.Count("beta"), "counts from several chunks add up")

	_, err = Load(t.TempDir(), FormatUnknown)
	assert.Error(t, err, "directory without chunks")
}

func TestDetectFileFormat(t *testing.T) {
	testCases := []struct {
		name     string
		expected FileFormat
		wantErr  bool
	}{
		{"big.txt", FormatText, false},
		{"words.freq", FormatFrequency, false},
		{"WORDS.TSV", FormatFrequency, false},
		{"data/dict_0001.bin", FormatChunk, false},
		{"other.bin", FormatUnknown, true},
		{"corpus.md", FormatUnknown, true},
	}

	for _, tc := range testCases {
		got, err := DetectFileFormat(tc.name)
		assert.Equal(t, tc.expected, got, tc.name)
		if tc.wantErr {
			assert.Error(t, err, tc.name)
		} else {
			assert.NoError(t, err, tc.name)
		}
	}
}

func TestValidateFileFormat(t *testing.T) {
	dir := t.TempDir()
	chunk := filepath.Join(dir, "dict_0001.bin")
	require.NoError(t, os.WriteFile(chunk, writeChunk(t, map[string]uint32{"a": 1}, []string{"a"}), 0644))
	assert.NoError(t, ValidateFileFormat(chunk, FormatChunk))
	assert.Error(t, ValidateFileFormat(chunk, FormatText), "wrong extension")

	tiny := filepath.Join(dir, "dict_0002.bin")
	require.NoError(t, os.WriteFile(tiny, []byte{1}, 0644))
	assert.Error(t, ValidateFileFormat(tiny, FormatChunk), "too small")
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]FileFormat{
		"":      FormatUnknown,
		"auto":  FormatUnknown,
		"TEXT":  FormatText,
		"freq":  FormatFrequency,
		"chunk": FormatChunk,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
	assert.Equal(t, "freq", FormatFrequency.String())

	info, ok := GetFormatInfo(FormatFrequency)
	require.True(t, ok)
	assert.Equal(t, []string{".freq", ".tsv"}, info.Extensions)
	_, ok = GetFormatInfo(FormatUnknown)
	assert.False(t, ok)
}

type fakeRedis struct {
	hash    map[string]string
	set     []string
	hashErr error
}

func (f *fakeRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return redis.NewMapStringStringResult(f.hash, f.hashErr)
}

func (f *fakeRedis) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(f.set, nil)
}

func TestRedisSource(t *testing.T) {
	client := &fakeRedis{
		hash: map[string]string{"wordfix": "12", "Redis": "3", "bad": "x", "neg": "-4", "hello,": "9", "don't": "2"},
		set:  []string{"custom", "wordfix", "", "new york"},
	}
	b := model.NewBuilder()
	b.Add("seed")

	n, err := NewRedisSource(client, "counts", "words").LoadInto(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	m := b.Build()
	assert.Equal(t, 13, m.Count("wordfix"))
	assert.Equal(t, 3, m.Count("redis"))
	assert.Equal(t, 1, m.Count("custom"))
	assert.Equal(t, 1, m.Count("seed"))
	assert.False(t, m.Contains("bad"))
	assert.False(t, m.Contains("neg"))
	assert.False(t, m.Contains("hello,"))
	assert.False(t, m.Contains("don't"))
	assert.False(t, m.Contains("new york"))
	assert.Equal(t, 4, m.Len())
}

func TestRedisSourceError(t *testing.T) {
	client := &fakeRedis{hashErr: errors.New("connection refused")}
	_, err := NewRedisSource(client, "counts", "").LoadInto(context.Background(), model.NewBuilder())
	assert.ErrorContains(t, err, "connection refused")

	n, err := NewRedisSource(client, "", "").LoadInto(context.Background(), model.NewBuilder())
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteChunkMatchesReader(t *testing.T) {
	entries := []model.Entry{{Word: "spelling", Count: 9}, {Word: "spell", Count: 4}}

	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, entries))
	assert.Equal(t, writeChunk(t, map[string]uint32{"spelling": 9, "spell": 4}, []string{"spelling", "spell"}), buf.Bytes())

	buf.Reset()
	require.NoError(t, WriteChunk(&buf, []model.Entry{{Word: "", Count: 3}, {Word: "ok", Count: 1}}))
	b := model.NewBuilder()
	n, err := ReadChunk(&buf, b)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "empty words are skipped")
}

func TestSaveChunksRoundTrip(t *testing.T) {
	src := model.FromCounts(map[string]int{
		"the": 50, "of": 30, "and": 20, "spelling": 9, "spell": 4,
	})
	dir := filepath.Join(t.TempDir(), "chunks")

	files, err := SaveChunks(dir, src, 2)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "dict_0001.bin", filepath.Base(files[0]))

	format, err := DetectFileFormat(files[2])
	require.NoError(t, err)
	assert.Equal(t, FormatChunk, format)

	m, err := Load(dir, FormatUnknown)
	require.NoError(t, err)
	assert.Equal(t, src.MostCommon(0), m.MostCommon(0))
	assert.Equal(t, src.Total(), m.Total())

	first := model.NewBuilder()
	_, err = LoadFile(files[0], FormatChunk, first)
	require.NoError(t, err)
	assert.Equal(t, []model.Entry{{Word: "the", Count: 50}, {Word: "of", Count: 30}}, first.Build().MostCommon(0))
}
