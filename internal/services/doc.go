// Package services defines shared utilities consumed by the analysis pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp log entry IDs, domains, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is regardless of which component produced them.
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
