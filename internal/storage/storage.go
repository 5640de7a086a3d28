// Package storage provides the narrow key-value persistence interface the
// tracker depends on: get/set/remove by logical key with JSON values. Two
// backends exist, a JSON-file directory (the default) and SQLite.
package storage

// Logical keys for persisted state.
const (
	KeySources  = "cost-tracker:sources"
	KeyConfig   = "cost-tracker:config"
	KeyUsage    = "cost-tracker:usage"
	KeyLastSync = "cost-tracker:last-sync"
)

// Store is the persistence contract. Get reports whether the key existed;
// decoding happens into out, which must be a pointer.
type Store interface {
	Get(key string, out any) (bool, error)
	Set(key string, value any) error
	Remove(key string) error
	Close() error
}
