package imageconv

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register decoder
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp" // register decoder
)

// Format is a target encoding
type Format string

const (
	// FormatJPEG encodes opaque JPEG files with the .jpg extension
	FormatJPEG Format = "jpeg"
	// FormatPNG encodes PNG files and keeps transparency
	FormatPNG Format = "png"
)

const (
	// DefaultQuality is the JPEG quality used when none is configured
	DefaultQuality = 85
	// DefaultMaxSize caps the number of bytes read from a download
	DefaultMaxSize = 20 << 20
	defaultTimeout = 30 * time.Second
)

// ParseFormat accepts jpeg, jpg and png, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// Converter downloads images and re-encodes them
type Converter struct {
	httpClient *http.Client
	quality    int
	maxSize    int64
	logger     zerolog.Logger
}

// Option configures a Converter
type Option func(*Converter)

// WithHTTPClient sets the client used for downloads
func WithHTTPClient(client *http.Client) Option {
	return func(c *Converter) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithQuality sets the JPEG quality (1-100)
func WithQuality(quality int) Option {
	return func(c *Converter) {
		if quality >= 1 && quality <= 100 {
			c.quality = quality
		}
	}
}

// WithMaxSize caps the download size in bytes
func WithMaxSize(n int64) Option {
	return func(c *Converter) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// NewConverter creates a converter
func NewConverter(logger zerolog.Logger, opts ...Option) *Converter {
	c := &Converter{
		httpClient: &http.Client{Timeout: defaultTimeout},
		quality:    DefaultQuality,
		maxSize:    DefaultMaxSize,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAndConvert downloads rawURL into dir, re-encodes it as format and
// returns the path of the converted file. The intermediate download is
// always removed; the converted file belongs to the caller.
func (c *Converter) FetchAndConvert(ctx context.Context, rawURL, dir string, format Format) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if format != FormatJPEG && format != FormatPNG {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	id := uuid.NewString()
	base := baseName(u)
	tempPath := filepath.Join(dir, fmt.Sprintf("temp_%s_%s", id, base))
	defer os.Remove(tempPath)

	if err := c.download(ctx, rawURL, tempPath); err != nil {
		return "", &ProcessingError{Op: OpDownload, URL: rawURL, Err: err}
	}

	img, err := decodeFile(tempPath)
	if err != nil {
		return "", &ProcessingError{Op: OpDecode, URL: rawURL, Err: err}
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outPath := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", stem, id, format.Extension()))
	if err := c.encodeFile(outPath, img, format); err != nil {
		os.Remove(outPath)
		return "", &ProcessingError{Op: OpEncode, URL: rawURL, Err: err}
	}

	c.logger.Debug().
		Str("url", rawURL).
		Str("path", outPath).
		Str("format", string(format)).
		Msg("Image converted")

	return outPath, nil
}

func (c *Converter) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, c.maxSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if n > c.maxSize {
		return fmt.Errorf("image exceeds %d bytes", c.maxSize)
	}
	return nil
}

func decodeFile(p string) (image.Image, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func (c *Converter) encodeFile(p string, img image.Image, format Format) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}

	switch format {
	case FormatJPEG:
		err = jpeg.Encode(f, flatten(img), &jpeg.Options{Quality: c.quality})
	default:
		err = png.Encode(f, img)
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// flatten composites img over an opaque white background
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}

// baseName returns the last path element of u, or "image" when there is none
func baseName(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "image"
	}
	return base
}
