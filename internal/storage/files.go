// Package storage keeps uploaded documents on local disk and hands out
// stable references. The portal only ever passes references around; file
// bytes stay here.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/google/uuid"
)

// FileManager stores uploads under a base directory with generated names
// so client-supplied filenames never touch the filesystem.
type FileManager struct {
	baseDir        string
	maxUploadBytes int64
}

// NewFileManager creates the base directory if needed.
func NewFileManager(baseDir string, maxUploadBytes int64) (*FileManager, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", baseDir, err)
	}
	return &FileManager{baseDir: baseDir, maxUploadBytes: maxUploadBytes}, nil
}

// Save writes the upload to disk and returns its stored reference. The
// URL is the path the HTTP layer serves the file under.
func (fm *FileManager) Save(filename string, r io.Reader) (project.StoredFile, error) {
	name := sanitizeName(filename)
	if name == "" {
		return project.StoredFile{}, fmt.Errorf("invalid file name")
	}

	id := uuid.NewString()
	onDisk := id + normalizeExtension(name)
	path := filepath.Join(fm.baseDir, onDisk)

	out, err := os.Create(path)
	if err != nil {
		return project.StoredFile{}, fmt.Errorf("create file: %w", err)
	}

	reader := r
	if fm.maxUploadBytes > 0 {
		reader = io.LimitReader(r, fm.maxUploadBytes+1)
	}
	written, err := io.Copy(out, reader)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return project.StoredFile{}, fmt.Errorf("write file: %w", err)
	}
	if fm.maxUploadBytes > 0 && written > fm.maxUploadBytes {
		os.Remove(path)
		return project.StoredFile{}, fmt.Errorf("file exceeds maximum size")
	}

	return project.StoredFile{
		Name:       name,
		URL:        "/files/" + onDisk,
		UploadedAt: time.Now(),
	}, nil
}

// Open returns the file behind a stored name for serving. The name must
// be exactly one path element.
func (fm *FileManager) Open(storedName string) (*os.File, error) {
	if storedName == "" || storedName != filepath.Base(storedName) || strings.HasPrefix(storedName, ".") {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(fm.baseDir, storedName))
}

// sanitizeName reduces a client filename to its base element.
func sanitizeName(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func normalizeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." {
		return ""
	}
	return ext
}
