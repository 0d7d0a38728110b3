// Package storage defines the note-store file-system abstraction.
package storage

import "github.com/starford/munin/internal/models"

// Provider is the interface for note-store file operations. Paths are
// relative to the store root.
type Provider interface {
	// EnsureFile creates the file with a "# <title>" header if it does not
	// exist, creating parent directories as needed. Existing files are left
	// untouched, so the header is written at most once per file's lifetime.
	EnsureFile(path, title string) error
	// Append adds text to the end of the file, serialized per path within
	// the process.
	Append(path, text string) error
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// List walks dir and returns metadata for every .md file under it.
	List(dir string) ([]models.NoteMetadata, error)
	// Root returns the absolute store root.
	Root() string
}
