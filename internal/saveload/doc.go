// Package saveload owns multi-cycle save/load sessions over a two-channel host.
//
// Ownership boundary:
// - session state (queue, accumulator, baseline, chunk index)
// - checkpoint anchoring and rollback of cycle configuration
// - completion detection and one-shot result delivery
//
// Lifecycle order:
// - save: checkpoint -> one chunk per cycle -> checkpoint restore
//
// - load: checkpoint + chunk request -> one chunk per cycle until the end
// marker decodes -> checkpoint restore
//
// The host clocks everything through OnCycleStart. Between cycles the manager
// is passive: no timers, no background goroutines.
package saveload
