// Package state provides the in-memory building blocks used by the goal and
// rating stores: a generic snapshot container with synchronous listeners and
// a per-key request sequencer.
//
// Responsibilities:
//   - Store[S] owns exactly one snapshot value. Every transition replaces it
//     and then notifies listeners in registration order with the new value.
//   - Sequencer issues tokens per logical collection so a slow response can
//     detect that a newer fetch was started and drop itself.
//   - Neither type performs I/O.
//
// Data flow:
//
//	token := seq.Begin(key)
//	payload := remote call
//	store.Update(func(prev) (next, ok) { if !seq.Current(key, token) { return prev, false } ... })
//
// Running the token check inside Update makes check-and-write atomic with
// respect to every other transition on the same store.
//
// Delivery order:
//
//	Listeners observe snapshots in the order transitions were applied, even
//	when transitions come from several goroutines. A listener that triggers a
//	transition has it delivered after the current round completes.
package state
