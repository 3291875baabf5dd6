// Package schedule turns a generation mode into an ordered list of commit
// events.
//
// A run first resolves its Mode: PatternMode draws text through the
// calendar mapper, RandomMode draws a uniform count per day. The resulting
// Plan holds per-day counts; Events then assigns each commit a timestamp
// using the mode's Policy and emits date groups in ascending order.
package schedule
