package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"net/http"
	"path/filepath"
	"strings"
)

// FileValidator checks uploaded photos before they reach the EXIF pipeline.
// Uploads are JPEG-only: the splice operation works on JPEG containers.
type FileValidator struct {
	MaxFileSize  int64
	MaxDimension int
}

func NewFileValidator(maxFileSize int64, maxDimension int) *FileValidator {
	if maxFileSize <= 0 {
		maxFileSize = 25 * 1024 * 1024
	}
	if maxDimension <= 0 {
		maxDimension = 8192
	}
	return &FileValidator{MaxFileSize: maxFileSize, MaxDimension: maxDimension}
}

// ValidateJPEG verifies extension, size, MIME sniffing, magic bytes, and
// decodable dimensions. The returned error is suitable for a 4xx response.
func (fv *FileValidator) ValidateJPEG(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" {
		return fmt.Errorf("unsupported file extension %q", ext)
	}

	if int64(len(data)) > fv.MaxFileSize {
		return fmt.Errorf("file size %d exceeds limit %d", len(data), fv.MaxFileSize)
	}

	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	if mime := http.DetectContentType(data[:sniffLen]); mime != "image/jpeg" {
		return fmt.Errorf("content type %s is not image/jpeg", mime)
	}

	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return fmt.Errorf("file signature does not match jpeg")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("undecodable jpeg: %w", err)
	}
	if cfg.Width > fv.MaxDimension || cfg.Height > fv.MaxDimension {
		return fmt.Errorf("dimensions %dx%d exceed limit %d", cfg.Width, cfg.Height, fv.MaxDimension)
	}

	return nil
}
