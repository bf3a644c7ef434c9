package game

import (
	rand "math/rand/v2"

	"github.com/nroche/timebomb/internal/randutil"
)

// AssignRoles deals hidden team roles to players in slice order. Roles are
// fixed for the remainder of the game; restarting a game reassigns them.
func AssignRoles(rng *rand.Rand, players []*Player) {
	p := CalculateParameters(rng, len(players))

	roles := make([]Role, 0, len(players))
	for i := 0; i < p.EvilCount; i++ {
		roles = append(roles, RoleEvil)
	}
	for i := 0; i < p.GoodCount; i++ {
		roles = append(roles, RoleGood)
	}
	randutil.Shuffle(rng, roles)

	for i, player := range players {
		player.Role = roles[i]
	}
}
