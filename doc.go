// Package nthm organizes application-created worker goroutines into a
// dynamic, hierarchical, non-preemptively managed structure.
//
// A worker is started with an input value, runs a user-supplied function,
// and yields a single result. The package owns the coordination primitives
// (the tether tree, its per-scope blockers/finishers lists, the condition
// variables) and the delivery of results; the application owns the
// computation itself.
//
// Workers are organized as a forest of pipes. A pipe tethered to another
// (its drain) is read exactly once, by that drain, inside the scope in
// which it was tethered. Open and Send both tether the new pipe to the
// caller. Pipes with no drain are either workers that were untethered or
// killed, or the Runtime's root placeholder, which stands for unmanaged
// goroutines that have themselves spawned tethered work.
//
// See also [github.com/joeycumines/go-microbatch] and
// [github.com/joeycumines/go-longpoll], which solve adjacent but distinct
// problems (batching and single-producer fan-in), for a comparison of
// concurrency style.
package nthm
