package game

import "math"

// Nearby returns the board cells among the integer corners around (x, y),
// floor before ceil on each axis. A rendering layer uses it to find the
// candidates for a pointer position.
func (b *Board) Nearby(x, y float64) []Coord {
	rows := rounded(x)
	cols := rounded(y)
	out := make([]Coord, 0, len(rows)*len(cols))
	for _, r := range rows {
		for _, c := range cols {
			if b.Valid(r, c) {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

func rounded(v float64) []int {
	lo, hi := int(math.Floor(v)), int(math.Ceil(v))
	if lo == hi {
		return []int{lo}
	}
	return []int{lo, hi}
}
