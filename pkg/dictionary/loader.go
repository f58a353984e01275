/*
Package dictionary turns corpora and precomputed frequency tables into a
model.Model.

Three on-disk formats are understood: plain corpus text (tokenized and
counted), "word count" frequency lists, and binary chunk files named
dict_NNNN.bin. A Redis hash can contribute counts as well. A built model
can be exported back to chunk files with SaveChunks, which makes later
startups skip tokenizing the corpus.
*/
package dictionary

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/wordfix/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
)

// ErrEmptyCorpus is returned when a source yields no words at all.
var ErrEmptyCorpus = errors.New("dictionary: no words found")

// maxChunkEntries is the sanity bound on a chunk header.
const maxChunkEntries = 1_000_000

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID       int
	Filename string
}

// ReadCorpus tokenizes r and counts every token into b. It returns the number of tokens read.
func ReadCorpus(r io.Reader, b *model.Builder) (int, error) {
	s := NewTokenScanner(r)
	n := 0
	for s.Scan() {
		b.Add(s.Text())
		n++
	}
	if err := s.Err(); err != nil {
		return n, fmt.Errorf("failed to tokenize corpus: %w", err)
	}
	return n, nil
}

// ReadFrequencies reads "word count" lines into b. Counts may be written as
// floats and are truncated. Blank lines, '#' comments and malformed lines are
// skipped, as are words that do not tokenize to themselves ("don't", "hello,").
// It returns the number of entries added.
func ReadFrequencies(r io.Reader, b *model.Builder) (int, error) {
	s := bufio.NewScanner(r)
	added, lineNo := 0, 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			log.Debugf("Skipping frequency line %d: %q", lineNo, line)
			continue
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			fv, ferr := strconv.ParseFloat(parts[1], 64)
			if ferr != nil {
				log.Debugf("Skipping frequency line %d: bad count %q", lineNo, parts[1])
				continue
			}
			count = int(fv)
		}
		if count <= 0 {
			continue
		}
		word, ok := NormalizeWord(parts[0])
		if !ok {
			log.Debugf("Skipping frequency line %d: %q is not a single token", lineNo, parts[0])
			continue
		}
		b.AddCount(word, count)
		added++
	}
	if err := s.Err(); err != nil {
		return added, fmt.Errorf("failed to read frequency list: %w", err)
	}
	return added, nil
}

// ReadChunk reads one binary chunk into b: a little-endian int32 entry
// count, then per entry a uint16 word length, the word bytes and a uint32 count.
// Entries whose word is not a single token are read past and skipped. It
// returns the number of entries added.
func ReadChunk(r io.Reader, b *model.Builder) (int, error) {
	reader := bufio.NewReader(r)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return 0, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 || totalEntries > maxChunkEntries {
		return 0, fmt.Errorf("invalid chunk entry count %d", totalEntries)
	}

	count, added := 0, 0
	for count < int(totalEntries) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				log.Warnf("Chunk ended after %d of %d entries", count, totalEntries)
				break
			}
			return added, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return added, fmt.Errorf("failed to read word: %w", err)
		}

		var freq uint32
		if err := binary.Read(reader, binary.LittleEndian, &freq); err != nil {
			return added, fmt.Errorf("failed to read count: %w", err)
		}

		count++
		word, ok := NormalizeWord(string(wordBytes))
		if !ok {
			log.Debugf("Skipping chunk entry %d: %q is not a single token", count, wordBytes)
			continue
		}
		b.AddCount(word, int(freq))
		added++
	}
	return added, nil
}

// ListChunks scans dir for dict_NNNN.bin files, sorted by ID.
func ListChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Debugf("Ignoring chunk with non-numeric id: %s", file)
			continue
		}
		chunks = append(chunks, ChunkInfo{ID: id, Filename: file})
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// LoadChunkDir reads every chunk in dir into b and returns the entries read.
func LoadChunkDir(dir string, b *model.Builder) (int, error) {
	chunks, err := ListChunks(dir)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunk files found in %s", dir)
	}

	total := 0
	for _, chunk := range chunks {
		n, err := LoadFile(chunk.Filename, FormatChunk, b)
		if err != nil {
			return total, err
		}
		log.Debugf("Chunk %d loaded: %d words", chunk.ID, n)
		total += n
	}
	return total, nil
}

// LoadFile reads one file of the given format into b. FormatUnknown detects
// the format from the file name. It returns tokens read for text corpora
// and entries read otherwise.
func LoadFile(path string, format FileFormat, b *model.Builder) (int, error) {
	if format == FormatUnknown {
		detected, err := DetectFileFormat(path)
		if err != nil {
			return 0, err
		}
		format = detected
	}
	if info, ok := GetFormatInfo(format); ok {
		log.Debugf("Loading %s as %s", path, info.Description)
	}

	if format == FormatText {
		return loadMapped(path, b)
	}

	if format == FormatChunk {
		if err := ValidateFileFormat(path, format); err != nil {
			return 0, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	switch format {
	case FormatFrequency:
		return ReadFrequencies(file, b)
	case FormatChunk:
		return ReadChunk(file, b)
	}
	return 0, fmt.Errorf("unsupported format %v for %s", format, path)
}

// loadMapped memory-maps a text corpus and tokenizes it in place. Empty
// files are not mapped.
func loadMapped(path string, b *model.Builder) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open corpus %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat corpus %s: %w", path, err)
	}
	if info.Size() == 0 {
		return 0, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		log.Warnf("Could not mmap %s, falling back to buffered read: %v", path, err)
		return ReadCorpus(file, b)
	}
	defer data.Unmap()

	log.Debugf("Mapped corpus %s (%d bytes)", path, len(data))
	return ReadCorpus(bytes.NewReader(data), b)
}

// Load builds a model from path. A directory is read as a set of chunk
// files; a file is read with format, or a detected one for FormatUnknown.
func Load(path string, format FileFormat) (*model.Model, error) {
	b := model.NewBuilder()
	if err := LoadInto(path, format, b); err != nil {
		return nil, err
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCorpus)
	}
	return b.Build(), nil
}

// LoadInto is Load without freezing the model, so more sources can follow.
func LoadInto(path string, format FileFormat, b *model.Builder) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		_, err = LoadChunkDir(path, b)
		return err
	}
	_, err = LoadFile(path, format, b)
	return err
}
