// Package logbook owns the persisted meal, exercise, saved-template, and water
// collections.
//
// Each collection is held in memory, insertion-ordered with the newest entry at
// the head, and persisted as one JSON blob under a versioned key such as
// meals-v6. Opening a collection loads the current key or, when it is absent,
// walks back through older keys and applies step migrations until the data is
// current, then re-saves it and deletes the old key. Every mutation rewrites the
// whole blob with a single atomic Put and only swaps the in-memory slice once
// the write succeeds.
package logbook
