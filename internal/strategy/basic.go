package strategy

import (
	"github.com/lox/blackjack/internal/game"
)

// Basic plays the standard hit/stand/double chart for a dealer who stands
// on soft 17. Splits and surrender are not offered by the table.
type Basic struct {
	Bettor
}

type move int

const (
	hit move = iota
	stand
	doubleOrHit
	doubleOrStand
)

const (
	up2 = iota
	up3
	up4
	up5
	up6
	up7
	up8
	up9
	up10
	upA
)

// hardChart rows are player totals 8..17, columns dealer 2..A
var hardChart = [...][10]move{
	8:  {hit, hit, hit, hit, hit, hit, hit, hit, hit, hit},
	9:  {hit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, hit, hit, hit, hit, hit},
	10: {doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, hit, hit},
	11: {doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, hit},
	12: {hit, hit, stand, stand, stand, hit, hit, hit, hit, hit},
	13: {stand, stand, stand, stand, stand, hit, hit, hit, hit, hit},
	14: {stand, stand, stand, stand, stand, hit, hit, hit, hit, hit},
	15: {stand, stand, stand, stand, stand, hit, hit, hit, hit, hit},
	16: {stand, stand, stand, stand, stand, hit, hit, hit, hit, hit},
	17: {stand, stand, stand, stand, stand, stand, stand, stand, stand, stand},
}

// softChart rows are soft totals 13..19, columns dealer 2..A
var softChart = [...][10]move{
	13: {hit, hit, hit, doubleOrHit, doubleOrHit, hit, hit, hit, hit, hit},
	14: {hit, hit, hit, doubleOrHit, doubleOrHit, hit, hit, hit, hit, hit},
	15: {hit, hit, doubleOrHit, doubleOrHit, doubleOrHit, hit, hit, hit, hit, hit},
	16: {hit, hit, doubleOrHit, doubleOrHit, doubleOrHit, hit, hit, hit, hit, hit},
	17: {hit, doubleOrHit, doubleOrHit, doubleOrHit, doubleOrHit, hit, hit, hit, hit, hit},
	18: {stand, doubleOrStand, doubleOrStand, doubleOrStand, doubleOrStand, stand, stand, hit, hit, hit},
	19: {stand, stand, stand, stand, stand, stand, stand, stand, stand, stand},
}

func (b *Basic) Decide(s Situation) game.Action {
	total := game.Evaluate(s.Hand)
	col := dealerColumn(s.DealerUp.Value())

	var m move
	switch {
	case game.IsSoft(s.Hand):
		m = softChart[min(max(total, 13), 19)][col]
	default:
		m = hardChart[min(max(total, 8), 17)][col]
	}

	switch m {
	case doubleOrHit:
		if s.CanDouble() {
			return game.Double
		}
		return game.Hit
	case doubleOrStand:
		if s.CanDouble() {
			return game.Double
		}
		return game.Stand
	case stand:
		return game.Stand
	default:
		return game.Hit
	}
}

func dealerColumn(upValue int) int {
	if upValue >= 11 {
		return upA
	}
	return min(max(upValue, 2), 10) - 2
}
