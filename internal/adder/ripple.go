package adder

// CarryPropagate adds the two rows bit by bit, the way a ripple-carry adder
// does, and keeps the low width bits. A carry out of the top bit is
// dropped.
func CarryPropagate(top, bottom uint64, width int) uint64 {
	var out uint64
	carry := uint64(0)
	for k := 0; k < width && k < 64; k++ {
		a, b := top>>uint(k)&1, bottom>>uint(k)&1
		out |= (a ^ b ^ carry) << uint(k)
		carry = (a & b) | (a & carry) | (b & carry)
	}
	return out
}
