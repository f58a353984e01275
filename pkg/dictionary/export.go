package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordfix/pkg/model"
	"github.com/charmbracelet/log"
)

// DefaultChunkSize is the number of words per exported chunk.
const DefaultChunkSize = 10000

// WriteChunk writes entries in the layout ReadChunk reads. Words longer
// than a uint16 length are skipped and counts are clamped to uint32.
func WriteChunk(w io.Writer, entries []model.Entry) error {
	kept := entries[:0:0]
	for _, e := range entries {
		if len(e.Word) == 0 || len(e.Word) > math.MaxUint16 {
			log.Debugf("Skipping unexportable word of length %d", len(e.Word))
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > maxChunkEntries {
		return fmt.Errorf("chunk of %d entries exceeds limit %d", len(kept), maxChunkEntries)
	}

	writer := bufio.NewWriter(w)
	if err := binary.Write(writer, binary.LittleEndian, int32(len(kept))); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	for _, e := range kept {
		if err := binary.Write(writer, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return fmt.Errorf("error writing word length: %w", err)
		}
		if _, err := writer.WriteString(e.Word); err != nil {
			return fmt.Errorf("error writing word: %w", err)
		}
		count := uint32(math.MaxUint32)
		if int64(e.Count) < math.MaxUint32 {
			count = uint32(e.Count)
		}
		if err := binary.Write(writer, binary.LittleEndian, count); err != nil {
			return fmt.Errorf("error writing count: %w", err)
		}
	}
	return writer.Flush()
}

// SaveChunks exports m into dir as dict_0001.bin, dict_0002.bin, ... with
// chunkSize words each, most frequent words first. It returns the files written.
func SaveChunks(dir string, m *model.Model, chunkSize int) ([]string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export dir %s: %w", dir, err)
	}

	entries := m.MostCommon(0)
	var files []string
	for id, start := 1, 0; start < len(entries); id, start = id+1, start+chunkSize {
		end := min(start+chunkSize, len(entries))
		path := filepath.Join(dir, fmt.Sprintf("dict_%04d.bin", id))
		if err := saveChunk(path, entries[start:end]); err != nil {
			return files, err
		}
		log.Debugf("Wrote chunk %s: %d words", path, end-start)
		files = append(files, path)
	}
	return files, nil
}

func saveChunk(path string, entries []model.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chunk file: %w", err)
	}
	if err := WriteChunk(file, entries); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}
