package mirror

import "fmt"

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// New selects a mirror backend by name. Memory is the default; sqlite
// persists across process restarts.
func New(backend, dbPath string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite:
		store, err := NewSQLiteStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite mirror: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown mirror backend: %s", backend)
	}
}
