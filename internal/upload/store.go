// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package upload

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/metrics"
)

// URLPrefix is where stored files are served.
const URLPrefix = "/uploads/"

// formOverhead is the allowance for non-file form fields in a request body.
const formOverhead = 1 << 20

// Upload errors.
var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrInvalidImage    = errors.New("invalid image type")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrTooManyFiles    = errors.New("too many files")
	ErrRequestTooLarge = errors.New("request body exceeds the upload size limit")
	ErrMalformedForm   = errors.New("malformed multipart form")
)

// Client-facing messages for rejected types.
const (
	InvalidFileTypeMessage = "Invalid file type. Only ZIP, APK, DMG, MSI, EXE, PNG and JPG files are allowed."
	InvalidImageMessage    = "Invalid file type. Only PNG and JPG images are allowed."
)

// Kind selects the MIME allow-list applied to a field.
type Kind int

const (
	// KindAny accepts build archives, installers and images.
	KindAny Kind = iota
	// KindImage accepts PNG and JPEG only.
	KindImage
)

var anyAllowed = map[string]bool{
	"application/zip":                         true,
	"application/x-zip-compressed":            true,
	"application/octet-stream":                true,
	"application/x-rar-compressed":            true,
	"application/vnd.android.package-archive": true,
	"application/x-apple-diskimage":           true,
	"application/x-msdownload":                true,
	"application/x-msi":                       true,
	"image/png":                               true,
	"image/jpeg":                              true,
	"image/jpg":                               true,
}

var imagesOnly = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// File describes one stored upload.
type File struct {
	Field       string
	Name        string
	URL         string
	Path        string
	Size        int64
	ContentType string
}

// Store writes uploads into a directory.
type Store struct {
	dir         string
	maxFileSize int64
	maxFiles    int

	now    func() time.Time
	random func() int
}

// New creates the upload directory if needed.
func New(cfg config.UploadConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", cfg.Dir, err)
	}
	maxFiles := cfg.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &Store{
		dir:         cfg.Dir,
		maxFileSize: cfg.MaxFileSize,
		maxFiles:    maxFiles,
		now:         time.Now,
		random:      func() int { return rand.IntN(1_000_000_000) },
	}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// MaxFiles returns the per-field file cap.
func (s *Store) MaxFiles() int {
	return s.maxFiles
}

// MaxRequestBytes bounds a multipart request body: every file at the size
// limit plus form overhead.
func (s *Store) MaxRequestBytes() int64 {
	return int64(s.maxFiles)*s.maxFileSize + formOverhead
}

// ParseForm caps the request body and parses it as multipart form data.
// A body over the cap yields ErrRequestTooLarge.
func (s *Store) ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestBytes())
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return ErrRequestTooLarge
		}
		return fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}
	return nil
}

// SaveAll stores every file of field. Nothing is kept when any file is
// rejected.
func (s *Store) SaveAll(field string, headers []*multipart.FileHeader, kind Kind) ([]File, error) {
	if len(headers) > s.maxFiles {
		metrics.RecordUpload(field, "rejected")
		return nil, fmt.Errorf("%w: at most %d %s", ErrTooManyFiles, s.maxFiles, field)
	}

	for _, fh := range headers {
		if err := s.check(fh, kind); err != nil {
			metrics.RecordUpload(field, "rejected")
			return nil, err
		}
	}

	saved := make([]File, 0, len(headers))
	for _, fh := range headers {
		f, err := s.save(field, fh)
		if err != nil {
			s.Remove(saved)
			metrics.RecordUpload(field, "error")
			return nil, err
		}
		saved = append(saved, f)
		metrics.RecordUpload(field, "stored")
	}
	return saved, nil
}

func (s *Store) check(fh *multipart.FileHeader, kind Kind) error {
	ct := contentType(fh)
	switch {
	case kind == KindImage && !imagesOnly[ct]:
		return ErrInvalidImage
	case !anyAllowed[ct]:
		return ErrInvalidFileType
	}
	if s.maxFileSize > 0 && fh.Size > s.maxFileSize {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, logging.SanitizeLogValue(fh.Filename))
	}
	return nil
}

func (s *Store) save(field string, fh *multipart.FileHeader) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := s.filename(field, fh.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return File{}, fmt.Errorf("create upload file: %w", err)
	}

	var reader io.Reader = src
	if s.maxFileSize > 0 {
		reader = io.LimitReader(src, s.maxFileSize+1)
	}
	n, err := io.Copy(dst, reader)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxFileSize > 0 && n > s.maxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return File{}, fmt.Errorf("write upload: %w", err)
	}

	return File{
		Field:       field,
		Name:        name,
		URL:         URLPrefix + name,
		Path:        path,
		Size:        n,
		ContentType: contentType(fh),
	}, nil
}

// Remove deletes stored files, logging failures.
func (s *Store) Remove(files []File) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("file", f.Name).Msg("Failed to remove upload")
		}
	}
}

// filename builds <field>-<unixMillis>-<random><ext>.
func (s *Store) filename(field, original string) string {
	return fmt.Sprintf("%s-%d-%d%s", field, s.now().UnixMilli(), s.random(), safeExt(original))
}

// safeExt returns the client filename's extension when it is purely
// alphanumeric, else "".
func safeExt(name string) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if len(ext) < 2 || len(ext) > 16 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}

func contentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
