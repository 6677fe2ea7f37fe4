// Package agent implements the Runner, the Lifecycle state machine, and the
// signal-driven Terminator that together own the process lifetime: init,
// repeated fetch-dispatch-post cycles, signal trapping, bounded-iteration
// exit, and fatal-error handling.
package agent
