// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the largest poster image accepted for upload.
const MaxImageSize = 20 << 20

// Upload errors.
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the upload limit")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// allowedImageTypes maps accepted MIME types to their canonical extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Bucket is the object store poster images are written to. *Client
// satisfies it.
type Bucket interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	KeyFromURL(rawURL string) (string, bool)
}

// Images stores poster images under posters/<unix millis>_<filename>.
type Images struct {
	bucket Bucket
	now    func() time.Time
}

// NewImages returns an image store writing to c. Returns nil if c is nil so
// callers can treat storage as optional.
func NewImages(c *Client) *Images {
	if c == nil {
		return nil
	}
	return NewImagesWithBucket(c)
}

// NewImagesWithBucket returns an image store writing to an arbitrary bucket.
func NewImagesWithBucket(b Bucket) *Images {
	return &Images{bucket: b, now: time.Now}
}

// Upload sniffs data, rejects anything that is not a supported image, and
// stores it. Returns the public URL.
func (im *Images) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if len(data) > MaxImageSize {
		return "", ErrFileTooLarge
	}
	contentType, err := DetectImageType(data)
	if err != nil {
		return "", err
	}

	key := PosterImageKey(filename, contentType, im.now())
	if err := im.bucket.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("store poster image: %w", err)
	}
	url := im.bucket.FileURL(key)
	slog.Info("poster image uploaded", "key", key, "content_type", contentType, "size", len(data))
	return url, nil
}

// Remove deletes the image behind a URL previously returned by Upload.
// URLs that point elsewhere are ignored.
func (im *Images) Remove(ctx context.Context, imageURL string) error {
	key, ok := im.bucket.KeyFromURL(imageURL)
	if !ok || !strings.HasPrefix(key, "posters/") {
		return nil
	}
	if err := im.bucket.Delete(ctx, key); err != nil {
		return fmt.Errorf("remove poster image: %w", err)
	}
	return nil
}

// DetectImageType returns the sniffed MIME type of data if it is one of
// the accepted image formats.
func DetectImageType(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for t := mt; t != nil; t = t.Parent() {
		if _, ok := allowedImageTypes[t.String()]; ok {
			return t.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

// PosterImageKey builds the object key for an uploaded image. The original
// name is sanitized; its extension is replaced by the one matching
// contentType.
func PosterImageKey(filename, contentType string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name := SanitizeFilename(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("posters/%d_%s%s", at.UnixMilli(), name, allowedImageTypes[contentType])
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore, mapping
// everything else to '_' and collapsing runs.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if len(out) > 100 {
		out = out[:100]
	}
	return out
}
