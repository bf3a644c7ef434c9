package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroche/timebomb/internal/randutil"
)

func TestAssignRolesTeamSizes(t *testing.T) {
	for _, tt := range []struct {
		players int
		evil    int
	}{
		{5, 2},
		{6, 2},
		{8, 3},
	} {
		players := makePlayers(tt.players)
		AssignRoles(randutil.New(21), players)

		evil := 0
		for _, p := range players {
			require.Contains(t, []Role{RoleGood, RoleEvil}, p.Role)
			if p.Role == RoleEvil {
				evil++
			}
		}
		assert.Equal(t, tt.evil, evil, "players=%d", tt.players)
	}
}

func TestAssignRolesVariesWithSeed(t *testing.T) {
	// The evil seats must not be fixed positions.
	assignments := map[string]bool{}
	for seed := int64(0); seed < 20; seed++ {
		players := makePlayers(6)
		AssignRoles(randutil.New(seed), players)
		key := ""
		for _, p := range players {
			key += string(p.Role[0])
		}
		assignments[key] = true
	}
	assert.Greater(t, len(assignments), 1)
}
