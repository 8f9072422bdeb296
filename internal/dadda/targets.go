package dadda

// Targets returns the Dadda height sequence below h in ascending order:
// 2, 3, 4, 6, 9, 13, ... keeping only heights strictly less than h.
// It is empty when h <= 2.
func Targets(h int) []int {
	var seq []int
	for d := 2; d < h; d += d / 2 {
		seq = append(seq, d)
	}
	return seq
}
