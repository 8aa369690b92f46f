package game

import (
	"errors"
	"fmt"
)

// MaxSize bounds the side of a board.
const MaxSize = 150

var (
	ErrInvalidSize = errors.New("board size must be between 1 and 150")
	ErrOutOfBounds = errors.New("coordinate outside the board")
	ErrTopology    = errors.New("lattice topology violated")
)

var offsets = [MaxNeighbors][2]int{{-1, -1}, {-1, 0}, {0, -1}, {0, 1}, {1, 0}, {1, 1}}

// Board is one immutable snapshot of a game. Move never changes its
// receiver; it returns a new Board with the move applied.
//
// The cells form a rhombus of two stacked triangles with side n: rows
// 0..2n-2, row r holds r+1 cells while r < n and 2n-r-1 cells after.
type Board struct {
	size    int
	cells   []Cell
	offset  []int
	active  string
	waiting string
	winner  string
}

func New(size int, first, second string) (*Board, error) {
	if size < 1 || size > MaxSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	rows := 2*size - 1
	b := &Board{
		size:    size,
		offset:  make([]int, rows),
		active:  first,
		waiting: second,
	}
	total := 0
	for r := 0; r < rows; r++ {
		b.offset[r] = total
		total += b.rowLen(r)
	}
	b.cells = make([]Cell, total)
	return b, nil
}

func (b *Board) rowLen(r int) int {
	if r < b.size {
		return r + 1
	}
	return 2*b.size - r - 1
}

func (b *Board) Size() int { return b.size }

// Active is the player who moves next.
func (b *Board) Active() string { return b.active }

func (b *Board) Waiting() string { return b.waiting }

func (b *Board) Winner() (string, bool) {
	return b.winner, b.winner != ""
}

// Valid reports whether (row, col) is a cell of the board.
func (b *Board) Valid(row, col int) bool {
	n := b.size
	if row < 0 || row >= 2*n || col < 0 {
		return false
	}
	if row < n {
		return col <= row
	}
	return col < 2*n-row-1
}

func (b *Board) index(row, col int) int {
	return b.offset[row] + col
}

func (b *Board) at(c Coord) *Cell {
	return &b.cells[b.index(c.Row, c.Col)]
}

// Cell returns a copy of the cell at (row, col).
func (b *Board) Cell(row, col int) (Cell, bool) {
	if !b.Valid(row, col) {
		return Cell{}, false
	}
	return b.cells[b.index(row, col)], true
}

// Coords enumerates every coordinate row by row.
func (b *Board) Coords() []Coord {
	out := make([]Coord, 0, len(b.cells))
	for r := range b.offset {
		for c := 0; c < b.rowLen(r); c++ {
			out = append(out, Coord{Row: r, Col: c})
		}
	}
	return out
}

// Free counts the unclaimed cells.
func (b *Board) Free() int {
	free := 0
	for i := range b.cells {
		if !b.cells[i].Owned() {
			free++
		}
	}
	return free
}

// Neighbors returns the lattice neighbours of (row, col) that exist on the
// board, independent of ownership.
func (b *Board) Neighbors(row, col int) []Coord {
	out := make([]Coord, 0, MaxNeighbors)
	for _, d := range offsets {
		r, c := row+d[0], col+d[1]
		if b.Valid(r, c) {
			out = append(out, Coord{Row: r, Col: c})
		}
	}
	return out
}

// Move claims (row, col) for the active player and returns the resulting
// snapshot. Claiming an occupied cell returns the receiver unchanged, so
// callers detect a rejected move by comparing pointers.
func (b *Board) Move(row, col int, stroke Stroke) (*Board, error) {
	if !b.Valid(row, col) {
		return nil, fmt.Errorf("%w: (%d,%d) on size %d", ErrOutOfBounds, row, col, b.size)
	}
	if stroke != StrokeForward && stroke != StrokeBack {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStroke, byte(stroke))
	}
	if b.cells[b.index(row, col)].Owned() {
		return b, nil
	}

	mover := b.active
	next := b.clone()
	next.active, next.waiting = b.waiting, b.active

	at := Coord{Row: row, Col: col}
	next.at(at).Owner = mover
	for _, e := range b.seeds(row, col, stroke) {
		next.markEdge(at, e)
	}

	for _, nb := range next.Neighbors(row, col) {
		if next.at(nb).Owner != mover {
			continue
		}
		if err := next.link(at, nb); err != nil {
			return nil, err
		}
		if err := next.link(nb, at); err != nil {
			return nil, err
		}
	}

	if next.at(at).Winning() && next.winner == "" {
		next.winner = mover
	}
	return next, nil
}

// seeds lists the edges a freshly claimed cell touches on its own.
func (b *Board) seeds(row, col int, stroke Stroke) []Edge {
	n := b.size
	var out []Edge
	switch stroke {
	case StrokeBack:
		if row < n && row == col {
			out = append(out, EdgeB)
		}
		if row >= n-1 && col == 0 {
			out = append(out, EdgeA)
		}
	case StrokeForward:
		if row < n && col == 0 {
			out = append(out, EdgeA)
		}
		if row >= n-1 && col == 2*n-2-row {
			out = append(out, EdgeB)
		}
	}
	return out
}

// markEdge floods e from start through linked cells. Each cell is entered
// at most once per edge.
func (b *Board) markEdge(start Coord, e Edge) {
	if !b.at(start).reach(e) {
		return
	}
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cell := b.at(cur)
		for _, nb := range cell.links[:cell.n] {
			if b.at(nb).reach(e) {
				queue = append(queue, nb)
			}
		}
	}
}

// link joins from to to and pushes from's edges into to's chain. Both
// directions have to be linked by the caller.
func (b *Board) link(from, to Coord) error {
	cell := b.at(from)
	if err := cell.attach(to); err != nil {
		return fmt.Errorf("link %s: %w", from, err)
	}
	for _, e := range cell.edges.Edges() {
		b.markEdge(to, e)
	}
	return nil
}

func (b *Board) clone() *Board {
	next := *b
	next.cells = make([]Cell, len(b.cells))
	copy(next.cells, b.cells)
	return &next
}
