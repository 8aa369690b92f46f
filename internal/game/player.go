package game

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleHuman Role = "human"
	RoleBot   Role = "bot"
)

func ParseRole(v string) (Role, error) {
	switch Role(strings.ToLower(v)) {
	case RoleHuman:
		return RoleHuman, nil
	case RoleBot, "ai":
		return RoleBot, nil
	}
	return "", fmt.Errorf("unknown role %q", v)
}

const (
	HumanMovePenalty = 10
	BotMovePenalty   = 11
)

// StartingScore is the score each seat starts with on a board of the given
// size: five times size² rounded to tens, never below 100.
func StartingScore(size int) int {
	sq := size * size
	q, r := sq/10, sq%10
	if r > 5 || (r == 5 && q%2 == 1) {
		q++
	}
	return max(5*q*10, 100)
}

// Player is one seat of a game.
type Player struct {
	Name   string
	Role   Role
	Stroke Stroke
	Score  int
}

func NewPlayer(name string, role Role, stroke Stroke, size int) *Player {
	return &Player{Name: name, Role: role, Stroke: stroke, Score: StartingScore(size)}
}

func (p *Player) IsBot() bool {
	return p.Role == RoleBot
}

// MovePenalty is charged for every accepted move.
func (p *Player) MovePenalty() int {
	if p.IsBot() {
		return BotMovePenalty
	}
	return HumanMovePenalty
}

func (p *Player) TakePenalty(n int) {
	p.Score = max(0, p.Score-n)
}

// Human buffers the cell picked by the input layer until its turn is
// played.
type Human struct {
	step    Coord
	pending bool
}

func (h *Human) SetStep(c Coord) {
	h.step = c
	h.pending = true
}

// Play applies the pending step if the cell is still free. It returns the
// receiver unchanged and false when there is nothing to play.
func (h *Human) Play(b *Board, stroke Stroke) (*Board, bool, error) {
	if !h.pending {
		return b, false, nil
	}
	cell, ok := b.Cell(h.step.Row, h.step.Col)
	if !ok || cell.Owned() {
		return b, false, nil
	}
	next, err := b.Move(h.step.Row, h.step.Col, stroke)
	if err != nil {
		return b, false, err
	}
	h.pending = false
	return next, true, nil
}
