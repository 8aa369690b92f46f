package game

import "fmt"

// MaxNeighbors bounds the links of a cell on the triangular lattice.
const MaxNeighbors = 6

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Cell is one board position. Links hold the coordinates of same-owner
// neighbours the cell has been joined with, so a cell is a plain value and
// copying a board never aliases another snapshot.
type Cell struct {
	Owner string

	edges EdgeSet
	links [MaxNeighbors]Coord
	n     int
}

func (c Cell) Owned() bool {
	return c.Owner != ""
}

func (c Cell) Edges() EdgeSet {
	return c.edges
}

// Winning reports whether the cell's chain touches both edges.
func (c Cell) Winning() bool {
	return c.edges.Complete()
}

func (c Cell) Links() []Coord {
	out := make([]Coord, c.n)
	copy(out, c.links[:c.n])
	return out
}

// reach adds e and reports whether it was new.
func (c *Cell) reach(e Edge) bool {
	if c.edges.Has(e) {
		return false
	}
	c.edges = c.edges.With(e)
	return true
}

func (c *Cell) linked(to Coord) bool {
	for _, l := range c.links[:c.n] {
		if l == to {
			return true
		}
	}
	return false
}

// attach records a link to another cell. A seventh link means the lattice
// is broken.
func (c *Cell) attach(to Coord) error {
	if c.linked(to) {
		return nil
	}
	if c.n == MaxNeighbors {
		return fmt.Errorf("%w: link to %s exceeds %d neighbours", ErrTopology, to, MaxNeighbors)
	}
	c.links[c.n] = to
	c.n++
	return nil
}
