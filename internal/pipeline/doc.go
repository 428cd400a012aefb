// Package pipeline turns meal and exercise submissions into log entries.
//
// A submission inserts a pending entry immediately, publishes EntryAdded, and
// runs the remote analysis in a goroutine while a ticker publishes simulated
// progress. Exactly one of three terminal transitions then applies:
//
//	Pending --succeed--> Resolved   (nutrients from the analysis result)
//	Pending --fallback-> Failed     (randomised estimate, IsAnalyzingError)
//	Pending --cancel---> Cancelled  (entry and photo removed)
//
// transition is the only place a task changes state. Every store mutation and
// event enqueue happens under the orchestrator mutex after that check, and
// events are flushed to the bus once the mutex is released, so a late result
// for a cancelled task is dropped and per-entry event order is always
// added, progress..., updated or added, removed.
//
// At most one analysis per domain is in flight; a second submission fails
// with ErrAnalysisInFlight.
package pipeline
