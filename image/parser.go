// ABOUTME: Parser interface for memory-image formats
// ABOUTME: Defines the contract for pluggable image parsers

package image

import (
	"io"

	"github.com/corelens/corelens/memhost"
)

// Parser is the interface for memory-image parsers
type Parser interface {
	// CanParse checks if this parser can handle the given image format.
	// The reader should be treated as a preview - implementations should
	// read a small amount to detect format and not consume the entire stream
	CanParse(r io.Reader) bool

	// Parse reads the image and builds an in-memory process host.
	// The reader will be a fresh reader positioned at the start
	Parse(r io.Reader) (*memhost.Host, error)
}
