package cache

import "time"

// Cache is a key-addressed store for fetched API pages and other
// short-lived snapshots.
type Cache interface {
	// Get returns (value, true) on a hit and (nil, false) on a miss.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL. Admission may be asynchronous.
	Set(key string, value interface{}, ttl time.Duration) bool

	Delete(key string)

	// Clear drops every entry.
	Clear()

	Close()
}
