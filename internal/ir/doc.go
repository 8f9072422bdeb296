// Package ir provides the Structural IR produced by multiplier synthesis.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal. The
// reduction engine, the final adder and every emitter talk to each other
// exclusively through these types.
//
// Key design constraints:
//   - Cells live in flat, append-only slices; bit sources reference them by
//     integer index, never by pointer
//   - Cell order is observable: emitters bind to list positions
//   - Canonical JSON (RFC 8785) is the only encoding used for fingerprints
//   - All JSON tags use snake_case
package ir
