package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestFileSource_ReadText(t *testing.T) {
	p := writeFile(t, t.TempDir(), "claim.txt", "Policy No: PL-12345\nName: John Doe")

	doc, err := NewFileSource(0).Read(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Policy No: PL-12345\nName: John Doe", doc.Text)
	assert.Equal(t, p, doc.Source)
	assert.Equal(t, "text/plain", doc.ContentType)
	assert.NotEmpty(t, doc.ID)
}

func TestFileSource_ReadHOCR(t *testing.T) {
	hocr := `<html><head><title>scan</title></head><body>
<div class="ocr_page">
 <span class="ocr_line"><span class="ocrx_word">Policy</span> <span class="ocrx_word">No:</span> <span class="ocrx_word">PL-12345</span></span>
 <span class="ocr_line"><span class="ocrx_word">Name:</span>
   <span class="ocrx_word">John</span> <span class="ocrx_word">Doe</span></span>
</div></body></html>`
	p := writeFile(t, t.TempDir(), "claim.hocr", hocr)

	doc, err := NewFileSource(0).Read(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Policy No: PL-12345\nName: John Doe", doc.Text)
	assert.Equal(t, "text/html", doc.ContentType)
}

func TestFileSource_TooLarge(t *testing.T) {
	p := writeFile(t, t.TempDir(), "big.txt", strings.Repeat("x", 11))

	_, err := NewFileSource(10).Read(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, err = NewFileSource(11).Read(context.Background(), p)
	assert.NoError(t, err)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(0).Read(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestHTMLText_SkipsScriptsAndBreaksBlocks(t *testing.T) {
	text, err := HTMLText(strings.NewReader(`<p>Date of Loss: 2025-11-28</p><script>var x = 1;</script><div>Amount Claimed:<br>INR 45,000</div>`))
	require.NoError(t, err)
	assert.Equal(t, "Date of Loss: 2025-11-28\nAmount Claimed:\nINR 45,000", text)
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "hello")

	r := &Resolver{Files: NewFileSource(0), Stdin: strings.NewReader("from stdin")}
	ctx := context.Background()

	doc, err := r.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Text)

	doc, err = r.Read(ctx, StdinRef)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", doc.Text)
	assert.Equal(t, StdinRef, doc.Source)

	_, err = r.Read(ctx, "s3://bucket/key.txt")
	assert.True(t, errors.Is(err, ErrUnsupportedRef), "no S3 source: %v", err)

	_, err = r.Read(ctx, "https://example.com/claim.txt")
	assert.True(t, errors.Is(err, ErrUnsupportedRef), "http ref: %v", err)

	_, err = (&Resolver{Files: NewFileSource(0)}).Read(ctx, StdinRef)
	assert.True(t, errors.Is(err, ErrUnsupportedRef), "no stdin: %v", err)
}
