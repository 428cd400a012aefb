// Package fileutil holds small filesystem helpers shared by the media store
// and config bootstrap: atomic replace-by-rename writes and tolerant removal.
package fileutil
