// Package storage defines the contacts-directory file abstraction.
//
// The provider is the vault-membership boundary: every path it resolves
// is inside the managed contacts root, so any document reachable through
// it satisfies the directory half of the contact-corpus rule.
package storage

import "github.com/halvard/gebo/internal/models"

// Provider is the interface for contact vault file operations.
type Provider interface {
	// List returns metadata for every .md document under dir (relative to the vault root).
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the document at path (relative to the vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the vault root).
	Write(path string, content []byte) error
	// Delete removes the document at path (relative to the vault root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the vault root).
	Move(oldPath, newPath string) error
}
