// Package kvstore provides the durable key-value blob storage behind the log
// collections.
//
// Each collection is persisted as a single JSON blob under a versioned key, so
// the backends only need whole-value Get/Put/Delete with atomic replacement.
// SQLite (default) and Badger back on-disk storage; Memory serves tests and
// ephemeral CLI runs. LockDir guards a data directory so exactly one process
// writes it at a time.
package kvstore
