package gridio

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridsig/internal/errors"
	"gridsig/ports"
)

var _ ports.StreamReader = (*StreamReader)(nil)

// StreamReader loads the external byte stream a scan XORs against. Files
// ending in .hex hold a hex-encoded digest; anything else is read as raw
// bytes.
type StreamReader struct{}

// NewStreamReader creates a reader.
func NewStreamReader() *StreamReader {
	return &StreamReader{}
}

// ReadStream loads a byte stream from the given path.
func (r *StreamReader) ReadStream(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("failed to read stream file", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".hex" {
		return ParseHexStream(string(data))
	}
	if len(data) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("stream file %s is empty", path))
	}
	return data, nil
}

// ParseHexStream decodes a hex digest string (whitespace tolerated) into the
// byte stream it represents.
func ParseHexStream(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil, errors.InvalidInput("hex stream is empty")
	}
	out, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid hex stream: %v", err))
	}
	return out, nil
}
