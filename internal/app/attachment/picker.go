/*
Package attachment models the pending file attachment: selection, validation,
preview, and removal.

This file defines the Picker, which validates a candidate file at selection
time, before any network activity. Type validation sniffs the file content
rather than trusting its extension, matching the server's own detection.
*/
package attachment

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"chatterm/internal/pkg/errs"
	"chatterm/internal/pkg/logx"
)

// Picker validates and stages local files for sending. Files are read through
// an afero filesystem so tests can select from an in-memory tree.
type Picker struct {
	fs afero.Fs
}

// NewPicker constructs a Picker over the given filesystem.
func NewPicker(fs afero.Fs) *Picker {
	return &Picker{fs: fs}
}

// Select validates the file at path and returns it as the pending attachment.
// Validation failures reject the selection immediately with no network call:
// size is checked first (≤ MaxFileSize, inclusive), then the sniffed MIME type
// against AllowedMIMETypes.
func (pk *Picker) Select(path string) (*Pending, *errs.CustomError) {
	info, err := pk.fs.Stat(path)
	if err != nil {
		logx.Warn("Attachment selection failed: file not readable", "path", path, "error", err)
		return nil, errs.NewError(errs.ErrFileUnreadable)
	}

	if customErr := ValidateFileSize(info.Size()); customErr != nil {
		return nil, customErr
	}

	mimeType, customErr := pk.sniffType(path)
	if customErr != nil {
		return nil, customErr
	}

	if customErr := ValidateFileType(mimeType); customErr != nil {
		return nil, customErr
	}

	return &Pending{
		Path:     path,
		Name:     baseName(path),
		MimeType: mimeType,
		Size:     info.Size(),
	}, nil
}

// Open returns a reader over the pending attachment's content for upload.
func (pk *Picker) Open(p *Pending) (afero.File, *errs.CustomError) {
	f, err := pk.fs.Open(p.Path)
	if err != nil {
		logx.Warn("Pending attachment no longer readable", "path", p.Path, "error", err)
		return nil, errs.NewError(errs.ErrFileUnreadable)
	}
	return f, nil
}

// sniffType detects the file's MIME type from its leading bytes.
func (pk *Picker) sniffType(path string) (string, *errs.CustomError) {
	f, err := pk.fs.Open(path)
	if err != nil {
		return "", errs.NewError(errs.ErrFileUnreadable)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", errs.NewError(errs.ErrFileUnreadable)
	}

	// mimetype may append parameters (e.g. charset); the allowed set is
	// parameter-free, so compare on the bare type.
	detected, _, _ := strings.Cut(mtype.String(), ";")

	return strings.TrimSpace(detected), nil
}
