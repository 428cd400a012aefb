// Package media stores meal photos keyed by entry id.
//
// Photos are decoded, downsized so the longest side fits MaxDimension,
// re-encoded as JPEG and written as <dir>/<id>.jpg with an atomic rename.
// Prepare runs the same processing without touching disk; the pipeline uses it
// to build the payload sent to the analysis service. Orphaned files are
// tolerated and never collected.
package media
