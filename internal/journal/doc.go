// Package journal provides durable storage for scenario run results.
//
// Each completed run is recorded with its outcome, search statistics, and,
// when the run found a violation, the counterexample schedule. The journal
// stores results only: explored state graphs stay in memory and are never
// persisted.
//
// Backed by SQLite with WAL mode for concurrent read access.
package journal
