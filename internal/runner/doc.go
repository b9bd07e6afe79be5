// Package runner executes one copy plan at a time with cooperative pause,
// resume, and stop at file boundaries.
//
// The worker goroutine checks a pause gate and a stop flag between files
// only; mid-file interruption never happens and the goroutine is never
// killed. A checkpoint tracks the next unprocessed item so a stopped job
// can continue in a later process via ResumeFromCheckpoint. Observers read
// state changes and per-file outcomes from an unbounded event queue; the
// worker never blocks on a slow consumer.
package runner
