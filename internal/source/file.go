package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/claimlens/internal/model"
)

// FileSource reads OCR text and hOCR files from the local filesystem.
type FileSource struct {
	maxBytes int64
}

// NewFileSource creates a FileSource. maxBytes <= 0 disables the limit.
func NewFileSource(maxBytes int64) *FileSource {
	return &FileSource{maxBytes: maxBytes}
}

// Read implements Source for a file path.
func (s *FileSource) Read(ctx context.Context, path string) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return s.read(path, f, contentTypeFor(path))
}

// FromReader reads a plain-text document from r under the given name.
func (s *FileSource) FromReader(ctx context.Context, name string, r io.Reader) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read(name, r, contentTypeFor(name))
}

func (s *FileSource) read(ref string, r io.Reader, contentType string) (*model.Document, error) {
	text, err := decode(r, contentType, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return NewDocument(ref, text, contentType), nil
}
