// Package source reads OCR output into documents from local files, stdin
// and S3-compatible buckets.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/claimlens/internal/model"
)

// ErrUnsupportedRef is returned for references no configured source can read.
var ErrUnsupportedRef = errors.New("unsupported document reference")

// ErrTooLarge is returned when a document exceeds the configured size limit.
var ErrTooLarge = errors.New("document too large")

// StdinRef is the reference that reads from standard input.
const StdinRef = "-"

// Source reads a document by reference.
type Source interface {
	Read(ctx context.Context, ref string) (*model.Document, error)
}

const (
	contentTypeText = "text/plain"
	contentTypeHTML = "text/html"
)

// NewDocument wraps text in a Document with a fresh ID.
func NewDocument(ref, text, contentType string) *model.Document {
	if contentType == "" {
		contentType = contentTypeText
	}
	return &model.Document{
		ID:          uuid.NewString(),
		Source:      ref,
		Text:        text,
		ContentType: contentType,
	}
}

// contentTypeFor maps a file name to the content type used to decode it.
func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".hocr", ".xhtml":
		return contentTypeHTML
	default:
		return contentTypeText
	}
}

// decode reads r, enforcing maxBytes, and recovers plain text from HTML or
// hOCR content.
func decode(r io.Reader, contentType string, maxBytes int64) (string, error) {
	data, err := readLimited(r, maxBytes)
	if err != nil {
		return "", err
	}
	if contentType == contentTypeHTML {
		return HTMLText(strings.NewReader(string(data)))
	}
	return string(data), nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

// Resolver dispatches references to the file, stdin or S3 source.
type Resolver struct {
	Files *FileSource
	S3    *S3Source // nil when no bucket is configured
	Stdin io.Reader
}

// Read implements Source.
func (r *Resolver) Read(ctx context.Context, ref string) (*model.Document, error) {
	switch {
	case ref == StdinRef:
		if r.Stdin == nil {
			return nil, fmt.Errorf("%w: stdin not available", ErrUnsupportedRef)
		}
		return r.Files.FromReader(ctx, StdinRef, r.Stdin)

	case strings.HasPrefix(ref, "s3://"):
		if r.S3 == nil {
			return nil, fmt.Errorf("%w: %s (no S3 source configured)", ErrUnsupportedRef, ref)
		}
		return r.S3.Read(ctx, ref)

	case strings.Contains(ref, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)

	default:
		return r.Files.Read(ctx, ref)
	}
}
