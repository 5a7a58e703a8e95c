package config

// ConfigBackend abstracts where persisted settings live. The CLI uses a
// JSON file; tests use an in-memory map.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	SetString(key, val string) error
	Delete(key string) error
}
