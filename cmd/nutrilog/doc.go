// Command nutrilog is the command-line front end of the meal and exercise
// log.
//
// Analysis commands submit a photo, a description or an exercise, render
// simulated progress while the background analysis runs, and print the
// reconciled entry. Record, day, totals, water and saved commands operate on
// the local log directly. Every invocation opens the data directory under an
// exclusive lock, so concurrent invocations fail fast instead of racing.
package main
