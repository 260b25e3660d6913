// Package explore implements the interleaving search engine.
//
// The engine exhaustively explores the interleavings of a set of processes'
// atomic steps over shared tracked records. It maintains a frontier of
// unexpanded configurations and a visited set keyed by configuration hash,
// expands each configuration by running every enabled process's next step
// (forking once per member when a step consumes a nondeterministic choice),
// and halts on frontier exhaustion, step-bound exhaustion, or the first
// invariant violation.
//
// Exploration is breadth-first, so the first counterexample found is one of
// minimal interleaving length. The engine is single-threaded and
// cooperative: concurrency is purely logical, the only suspension points are
// step boundaries, and every successor owns an independent copy of the
// mutable snapshot (copy-on-fork), so exploring one branch can never observe
// mutations made while exploring a sibling.
package explore
