// ABOUTME: Registry for memory-image parsers
// ABOUTME: Manages parser plugins and selects appropriate parser for images

package image

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/corelens/corelens/memhost"
)

var (
	// ErrNoParser is returned when no parser can handle the image format
	ErrNoParser = errors.New("no parser found for image format")
)

// parserRegistry holds registered parsers
type parserRegistry struct {
	mu      sync.RWMutex
	parsers []Parser
}

// Global registry instance
var registry = &parserRegistry{
	parsers: make([]Parser, 0),
}

// Register adds a parser to the registry
func Register(p Parser) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.parsers = append(registry.parsers, p)
}

// Open reads a memory image and returns the in-memory process it describes.
// It tries each registered parser to find one that can handle the format
func Open(r io.Reader) (*memhost.Host, error) {
	// Read some bytes for format detection; parsers get a fresh reader
	// assembled from the detect buffer plus the remainder of the stream.
	detectBuf := make([]byte, 4096)
	n, err := io.ReadFull(r, detectBuf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, parser := range registry.parsers {
		checkReader := bytes.NewReader(detectBuf[:n])
		if parser.CanParse(checkReader) {
			parseReader := io.MultiReader(bytes.NewReader(detectBuf[:n]), r)
			return parser.Parse(parseReader)
		}
	}

	return nil, ErrNoParser
}
