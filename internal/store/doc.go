// Package store provides SQLite-backed durable storage for the synthesis log.
//
// The log has two tables:
//   - Netlists: canonical netlist encodings keyed by fingerprint
//   - Runs: one record per synthesis request, including rejected ones
//
// # Invariants
//
// Content addressing:
//   - A netlist's primary key is its fingerprint (internal/ir/hash.go)
//   - Writing the same netlist twice is a no-op (ON CONFLICT DO NOTHING)
//   - Reads recompute the fingerprint and refuse corrupted rows
//
// Logical ordering:
//   - Runs are ordered by seq INTEGER (logical clock), never by timestamps
//   - Queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Runs must reference a stored netlist
package store
