// Package events is the process-wide publish/subscribe bus that decouples the
// pipeline from whatever renders its results.
//
// Event is a sealed interface; its variants are the only values that can be
// published. Handler has one method per variant, so a listener that forgets
// one does not compile. Funcs adapts a partial listener.
//
// Dispatch is synchronous. The first publisher drains a FIFO queue inline;
// anything published while a drain is running (from a handler or another
// goroutine) is appended and delivered after the current event, giving a
// single global order. Enqueue and Flush split the two halves so callers can
// fix the order under their own lock and deliver after releasing it.
package events
