package game

import (
	"errors"
	"math/rand"
)

var ErrNoFreeCells = errors.New("no free cells left")

// Bot is the automated seat. It walks a shuffled list of every coordinate
// in a cycle and plays the first free cell it finds; no strategy.
type Bot struct {
	order []Coord
	next  int
}

func NewBot(b *Board, rng *rand.Rand) *Bot {
	order := b.Coords()
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return &Bot{order: order}
}

// ChooseMove returns the next free cell of the cycle.
func (bot *Bot) ChooseMove(b *Board) (Coord, error) {
	for i := 0; i < len(bot.order); i++ {
		c := bot.order[bot.next]
		bot.next = (bot.next + 1) % len(bot.order)
		if cell, ok := b.Cell(c.Row, c.Col); ok && !cell.Owned() {
			return c, nil
		}
	}
	return Coord{}, ErrNoFreeCells
}
