package connection

import "sync"

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, created with DefaultConfig on
// first use unless SetDefault ran earlier.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(DefaultConfig())
	})
	return defaultRegistry
}

// SetDefault installs r as the process-wide registry. Only the first call
// made before any Default has effect; it reports whether r was installed.
func SetDefault(r *Registry) bool {
	installed := false
	defaultOnce.Do(func() {
		defaultRegistry = r
		installed = true
	})
	return installed
}

// Get returns the process-wide connection handle. The first call binds the
// address; later calls return the same handle whatever address they pass.
func Get(address string) *Handle {
	return Default().Get(address)
}
