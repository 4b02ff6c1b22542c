// Package storage is the export inbox: a directory that Roam exports are
// dropped into, either by hand or through an upload.
package storage

import "github.com/starford/roamdeck/internal/models"

// Provider is the interface for inbox file operations. Paths are relative
// to the inbox root.
type Provider interface {
	// List returns metadata for every export (.json or .zip) under dir.
	List(dir string) ([]models.ExportMetadata, error)
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Path resolves path to an absolute file name inside the inbox.
	Path(path string) (string, error)
}
