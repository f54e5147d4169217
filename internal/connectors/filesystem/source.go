// Package filesystem reads source documents from local disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// extMIMETypes covers extensions Go's mime package lacks or gets wrong.
var extMIMETypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".csv":      "text/csv",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Source reads documents from the local filesystem.
type Source struct{}

// New creates a filesystem document source.
func New() *Source {
	return &Source{}
}

// Fetch reads the file at path. Paths may be bare or file:// URIs.
func (s *Source) Fetch(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path = ResolvePath(path)
	if path == "" {
		return nil, fmt.Errorf("document path is empty: %w", domain.ErrInvalidInput)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	mimeType := detectMIMEType(path)
	logger.Debug("Read %s (%d bytes, %s)", path, len(content), mimeType)

	return &domain.RawDocument{
		Path:     path,
		MIMEType: mimeType,
		Content:  content,
	}, nil
}

// ResolvePath converts a file:// URI to a local path.
// Bare paths pass through unchanged.
func ResolvePath(uri string) string {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

// detectMIMEType returns the MIME type for a file based on its extension.
func detectMIMEType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "text/plain"
	}

	if t, ok := extMIMETypes[strings.ToLower(ext)]; ok {
		return t
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType != "" {
		// Strip charset and other parameters.
		if idx := strings.Index(mimeType, ";"); idx != -1 {
			mimeType = strings.TrimSpace(mimeType[:idx])
		}
		return mimeType
	}

	return "application/octet-stream"
}
