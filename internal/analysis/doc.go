// Package analysis talks to the remote nutrient analysis service.
//
// Two backends implement Analyzer:
//   - Client posts to <base_url>/ai/analyze-meal and retries transient
//     failures (408, 429, 5xx, network timeouts) with exponential backoff,
//     honouring Retry-After.
//   - Gemini asks a Google Gemini model for the same JSON document directly.
//
// Both decode the response leniently: missing nutrient fields default to zero,
// numbers may arrive as strings, and code fences around the JSON are ignored.
// Callers treat every returned error as a reason to fall back to an estimate;
// the error markers from internal/services only tune how loudly it is logged.
package analysis
