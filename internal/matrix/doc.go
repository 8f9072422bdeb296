// Package matrix builds the partial-product bit matrix of a multiplier block.
//
// A Request names the operand format (integer and fractional bits) and one of
// three modes:
//
//   - multiply: a*b, one partial product a[i]&b[j] per (i, j) in column i+j
//   - const_accumulate: a*constant + addend, where each set bit j of the
//     constant gates a[i] into column i+j and the addend's 2*frac_bits low
//     bits are injected as constant inputs, one per column
//   - accumulate: a*b + offset, with offset[k] added to column k
//
// Validation happens in Build before anything is allocated. Errors are
// *Error values carrying INVALID_WIDTH, INVALID_CONSTANT or INVALID_MODE.
package matrix
