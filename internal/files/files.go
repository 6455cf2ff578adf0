// Package files stores uploaded attachment bytes on local disk. Stored names
// are generated; the original file name lives only in the attachment record.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/config"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")

// ErrEmptyFile is returned when an upload contains no bytes.
var ErrEmptyFile = errors.New("file is empty")

// SavedFile describes a blob written to disk.
type SavedFile struct {
	// FileName is the generated on-disk name.
	FileName string
	// Path is the absolute path of the stored file.
	Path string
	// MimeType is detected from the file contents, not the client's claim.
	MimeType string
	Size     int64
}

// DiskStore writes attachment blobs under a single directory.
type DiskStore struct {
	dir      string
	maxBytes int64
}

// NewDiskStore creates the upload directory if needed and returns a store
// over it.
func NewDiskStore(cfg config.StorageConfig) (*DiskStore, error) {
	dir, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("resolving upload dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &DiskStore{dir: dir, maxBytes: cfg.MaxUploadBytes}, nil
}

// MaxBytes returns the configured upload size limit.
func (s *DiskStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save streams r to a new file under the store directory. The stored name is
// a fresh UUID plus the original extension. Returns ErrFileTooLarge when r
// yields more than the configured limit; the partial file is removed.
func (s *DiskStore) Save(originalName string, r io.Reader) (*SavedFile, error) {
	name := uuid.New().String() + sanitizeExt(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	// Read one byte past the limit so oversized uploads are detectable.
	size, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}
	if size > s.maxBytes {
		_ = os.Remove(path)
		return nil, ErrFileTooLarge
	}
	if size == 0 {
		_ = os.Remove(path)
		return nil, ErrEmptyFile
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("detecting mime type: %w", err)
	}

	return &SavedFile{
		FileName: name,
		Path:     path,
		MimeType: mtype.String(),
		Size:     size,
	}, nil
}

// Open opens a stored file for reading. The path must be inside the store
// directory; anything else is rejected.
func (s *DiskStore) Open(path string) (*os.File, error) {
	if !s.contains(path) {
		return nil, os.ErrNotExist
	}
	return os.Open(path)
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *DiskStore) Remove(path string) error {
	if !s.contains(path) {
		return os.ErrNotExist
	}
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *DiskStore) contains(path string) bool {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// sanitizeExt keeps a short, alphanumeric extension from the original name.
// Anything suspicious is dropped rather than escaped.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
