package importer

import (
	"fmt"
	"strings"
)

// DefaultMaxFileSize is the upload limit applied when none is configured.
const DefaultMaxFileSize = 10 * 1024 * 1024

// UploadGate validates files before any bytes travel to the service, so
// obviously bad selections fail fast with a local message.
type UploadGate struct {
	maxSize int64
}

// NewUploadGate constructs a gate. maxSize <= 0 selects DefaultMaxFileSize.
func NewUploadGate(maxSize int64) *UploadGate {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &UploadGate{maxSize: maxSize}
}

// Validate checks the filename extension and size. The extension check is
// case-insensitive; empty and oversized files are rejected.
func (g *UploadGate) Validate(filename string, size int64) error {
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx:]
	}
	if !strings.EqualFold(ext, ".docx") {
		return &ValidationError{Reason: "only .docx documents are accepted"}
	}
	if size <= 0 {
		return &ValidationError{Reason: "file is empty"}
	}
	if size > g.maxSize {
		return &ValidationError{Reason: fmt.Sprintf("file exceeds the %d MB limit", g.maxSize/(1024*1024))}
	}
	return nil
}

// MaxSize exposes the configured limit.
func (g *UploadGate) MaxSize() int64 {
	return g.maxSize
}
