package game

import rand "math/rand/v2"

// Parameters are the per-player-count deal constants. The deck is always
// BombCount bombs + SafeWireCount safes + NeutralCount neutrals.
type Parameters struct {
	EvilCount     int
	GoodCount     int
	BombCount     int
	SafeWireCount int
	NeutralCount  int
	TotalCards    int
}

// CalculateParameters maps a player count to game parameters. At the boundary
// counts (4 and 7) two team splits are valid and a fair coin decides between
// them, so the rng is part of the contract.
//
//	players  evil
//	  <=3     1
//	   4      1 or 2 (coin flip)
//	   5      2
//	   6      2
//	   7      2 or 3 (coin flip)
//	   8      3
func CalculateParameters(rng *rand.Rand, playerCount int) Parameters {
	var evil int
	switch {
	case playerCount <= 3:
		evil = 1
	case playerCount == 4:
		evil = 1 + rng.IntN(2)
	case playerCount == 7:
		evil = 2 + rng.IntN(2)
	case playerCount >= 8:
		evil = 3
	default: // 5 or 6
		evil = 2
	}

	total := playerCount * 5
	bombs := 1
	safes := playerCount

	return Parameters{
		EvilCount:     evil,
		GoodCount:     playerCount - evil,
		BombCount:     bombs,
		SafeWireCount: safes,
		NeutralCount:  total - bombs - safes,
		TotalCards:    total,
	}
}
