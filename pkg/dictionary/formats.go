package dictionary

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown   FileFormat = iota
	FormatText                 // raw corpus text, tokenized and counted
	FormatFrequency            // "word count" per line
	FormatChunk                // binary dict_NNNN.bin chunk
)

func (f FileFormat) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatFrequency:
		return "freq"
	case FormatChunk:
		return "chunk"
	}
	return "unknown"
}

// ParseFormat maps a config or flag value to a FileFormat. "auto" and ""
// return FormatUnknown, meaning the format is detected from the file name.
func ParseFormat(name string) (FileFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatUnknown, nil
	case "text", "txt", "corpus":
		return FormatText, nil
	case "freq", "frequency", "tsv":
		return FormatFrequency, nil
	case "chunk", "bin":
		return FormatChunk, nil
	}
	return FormatUnknown, fmt.Errorf("unknown dictionary format %q", name)
}

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Corpus",
		Extensions:  []string{".txt"},
		MinSize:     1,
	},
	FormatFrequency: {
		Format:      FormatFrequency,
		Description: "Word Frequency List",
		Extensions:  []string{".freq", ".tsv"},
		MinSize:     3, // "a 1"
	},
	FormatChunk: {
		Format:      FormatChunk,
		Description: "Chunked Binary Dictionary",
		Extensions:  []string{".bin"},
		MinSize:     4, // entry count header
	},
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	if expectedFormat == FormatChunk {
		return validateChunkHeader(filename)
	}
	return nil
}

// validateChunkHeader checks the entry count header of a chunk file
func validateChunkHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var entries int32
	if err := binary.Read(file, binary.LittleEndian, &entries); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if entries < 0 {
		return fmt.Errorf("invalid entry count in %s: %d (negative)", filename, entries)
	}
	if entries > maxChunkEntries {
		return fmt.Errorf("suspicious entry count in %s: %d (too large)", filename, entries)
	}

	log.Debugf("Chunk file %s validated: %d entries", filename, entries)
	return nil
}

// DetectFileFormat guesses the format of a file from its name.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	basename := strings.ToLower(filepath.Base(filename))

	for _, format := range []FileFormat{FormatChunk, FormatFrequency, FormatText} {
		info := supportedFormats[format]
		for _, e := range info.Extensions {
			if ext != e {
				continue
			}
			if format == FormatChunk && !strings.HasPrefix(basename, "dict_") {
				continue
			}
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
