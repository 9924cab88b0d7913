package index

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(d DocRow, properties map[string]string) error
	DeleteDocument(path string) error
	GetDocument(path string) (*DocRow, error)
	ListDocuments(limit, offset int, tag string) ([]DocRow, int, error)
	FindByTag(tag string) ([]DocRow, error)
	FindByProperty(key string) ([]DocRow, error)
	GetChecksum(path string) (string, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
