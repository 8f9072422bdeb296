// Package dadda implements Dadda column compression.
//
// Reduce takes a bit matrix (one ordered slice per column weight) and
// allocates half and full adders until every column holds at most two
// sources. The result is the two-row form consumed by a final
// carry-propagate adder.
//
// ALGORITHM:
//
// Heights are brought down through the target sequence 2, 3, 4, 6, 9, 13,
// 19, ... (d_{k+1} = d_k + floor(d_k/2)), largest target first. For each
// target t, left-to-right passes over columns 0..W-2 run until a pass
// allocates nothing:
//   - a column of height t+1 gets a half adder
//   - a column taller than t+1 gets a full adder
//
// Each cell consumes sources from the back of its column (original terms
// before earlier cell outputs) and inserts its sum at the front of the same
// column and its carry at the front of the next one, where the same pass
// sees it. The top column W-1 is never reduced; carries out of it are not
// modeled.
//
// DETERMINISM:
//
// The engine is pure and single-threaded. Cells are appended to their lists
// in allocation order, and bit sources refer to cells by list position, so
// the same matrix always yields identical lists, indices and inputs.
package dadda
