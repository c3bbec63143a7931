// Package storage gives read/write access to the directory holding a deck.
package storage

import "io/fs"

// Provider is the interface for deck directory operations. Every path is
// relative to the provider root and may not escape it.
type Provider interface {
	// Root returns the absolute directory the provider is bound to.
	Root() string
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// Abs resolves path to an absolute path under the root.
	Abs(path string) (string, error)
}
