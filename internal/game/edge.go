package game

import (
	"errors"
	"fmt"
)

// Edge names one of the two board sides a chain has to connect.
type Edge uint8

const (
	EdgeA Edge = 1 << iota
	EdgeB
)

func (e Edge) String() string {
	switch e {
	case EdgeA:
		return "0"
	case EdgeB:
		return "="
	}
	return fmt.Sprintf("Edge(%d)", uint8(e))
}

// EdgeSet is the set of edges reachable from a cell.
type EdgeSet uint8

const bothEdges = EdgeSet(EdgeA) | EdgeSet(EdgeB)

func (s EdgeSet) Has(e Edge) bool {
	return s&EdgeSet(e) != 0
}

func (s EdgeSet) With(e Edge) EdgeSet {
	return s | EdgeSet(e)
}

// Complete reports whether both edges are in the set.
func (s EdgeSet) Complete() bool {
	return s&bothEdges == bothEdges
}

// Edges lists the members in EdgeA, EdgeB order.
func (s EdgeSet) Edges() []Edge {
	out := make([]Edge, 0, 2)
	for _, e := range []Edge{EdgeA, EdgeB} {
		if s.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s EdgeSet) Strings() []string {
	edges := s.Edges()
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.String()
	}
	return out
}

// Stroke is the mark a player draws into a claimed cell. It decides which
// boundary the cell may seed.
type Stroke byte

const (
	StrokeForward Stroke = '/'
	StrokeBack    Stroke = '\\'
)

var ErrInvalidStroke = errors.New("invalid stroke")

func (s Stroke) String() string {
	return string(rune(s))
}

func ParseStroke(v string) (Stroke, error) {
	switch v {
	case "/":
		return StrokeForward, nil
	case "\\":
		return StrokeBack, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStroke, v)
}
