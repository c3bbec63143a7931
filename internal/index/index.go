package index

// SlideIndex defines the interface for slide indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type SlideIndex interface {
	Replace(checksum string, rows []SlideRow) error
	Checksum() (string, error)
	Count() (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies SlideIndex at compile time.
var _ SlideIndex = (*DB)(nil)
