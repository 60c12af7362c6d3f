package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// jpegQuality for re-encoded embedded assets.
const jpegQuality = 90

// MediaStore fetches image bytes by object key. Satisfied by *storage.S3.
type MediaStore interface {
	GetObjectBytes(ctx context.Context, key string) ([]byte, error)
}

// Fetcher resolves image sources for embedding: http(s) URLs, local paths,
// or media-store object keys.
type Fetcher struct {
	media  MediaStore
	client *http.Client
}

// NewFetcher creates an image fetcher. media may be nil when S3 is disabled.
func NewFetcher(media MediaStore) *Fetcher {
	return &Fetcher{
		media:  media,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch returns the raw bytes of an image source, or nil for an empty source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, nil
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	if _, err := os.Stat(source); err == nil {
		return os.ReadFile(source)
	}
	if f.media != nil {
		return f.media.GetObjectBytes(ctx, source)
	}
	return nil, fmt.Errorf("image source %s not found", source)
}

// FlattenToJPEG decodes an image, composites it over an opaque white canvas
// and re-encodes it as JPEG. The PDF engine embeds JPEG (no alpha channel),
// so transparent signature pixels must be flattened rather than dropped to black.
func FlattenToJPEG(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	white := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat := imaging.Overlay(white, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
