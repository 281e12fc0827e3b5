package attachment

import (
	"fmt"
	"path/filepath"
	"strings"

	"chatterm/internal/pkg/errs"
)

const (
	// MaxFileSizeMB is the maximum allowed attachment size in megabytes.
	MaxFileSizeMB = 10

	// MaxFileSize is the maximum allowed attachment size in bytes. A file of
	// exactly this size is accepted; one byte more is rejected.
	MaxFileSize = MaxFileSizeMB * 1024 * 1024
)

// AllowedMIMETypes defines the set of permitted MIME types for file attachments.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"video/mp4":  {},
}

// Pending represents the single file currently selected for sending,
// held client-side until it is sent, removed, or replaced.
type Pending struct {
	// Path is the local path the file was selected from.
	Path string

	// Name is the base filename presented to the server.
	Name string

	// MimeType is the sniffed content type.
	MimeType string

	// Size is the file size in bytes.
	Size int64
}

// Kind reports the coarse media kind ("image" or "video") by MIME prefix, or
// an empty string for anything else.
func (p *Pending) Kind() string {
	switch {
	case strings.HasPrefix(p.MimeType, "image/"):
		return "image"
	case strings.HasPrefix(p.MimeType, "video/"):
		return "video"
	default:
		return ""
	}
}

// HumanSize formats the file size for the preview (B, KB, or MB).
func (p *Pending) HumanSize() string {
	return FormatFileSize(p.Size)
}

// Preview returns the one-line preview shown while the attachment is pending.
func (p *Pending) Preview() string {
	kind := p.Kind()
	if kind == "" {
		kind = "file"
	}
	return p.Name + " (" + p.HumanSize() + ", " + kind + ")"
}

// FormatFileSize renders a byte count as a short human-readable string.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// ValidateFileSize checks if the provided file size is within acceptable limits.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrFileUnreadable)
	}

	if fileSize > MaxFileSize {
		return errs.NewError(errs.ErrFileTooLarge, MaxFileSizeMB)
	}

	return nil
}

// ValidateFileType checks if the provided MIME type is allowed.
func ValidateFileType(mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeNotAllowed)
	}

	return nil
}

// baseName extracts the filename component sent to the server.
func baseName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
