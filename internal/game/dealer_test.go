package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroche/timebomb/internal/randutil"
)

func makePlayers(n int) []*Player {
	players := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, &Player{
			ID:          fmt.Sprintf("p%d", i),
			DisplayName: fmt.Sprintf("player-%d", i),
		})
	}
	return players
}

func countTypes(cards []CardType) map[CardType]int {
	counts := map[CardType]int{}
	for _, c := range cards {
		counts[c]++
	}
	return counts
}

func TestBuildDeckComposition(t *testing.T) {
	for players := 4; players <= 8; players++ {
		deck := NewDealer(randutil.New(3)).BuildDeck(players)
		require.Len(t, deck, players*5)

		counts := countTypes(deck)
		assert.Equal(t, 1, counts[CardBomb], "players=%d", players)
		assert.Equal(t, players, counts[CardSafe], "players=%d", players)
		assert.Equal(t, players*5-1-players, counts[CardNeutral], "players=%d", players)
	}
}

func TestDealInitialHands(t *testing.T) {
	players := makePlayers(5)
	NewDealer(randutil.New(11)).DealInitialHands(players)

	seen := map[string]bool{}
	var all []CardType
	for _, p := range players {
		require.Len(t, p.Wires, 5)
		for i, w := range p.Wires {
			assert.Equal(t, i, w.Position)
			assert.False(t, w.Cut)
			assert.NotEmpty(t, w.ID)
			assert.False(t, seen[w.ID], "card ids must be unique")
			seen[w.ID] = true
			all = append(all, w.Type)
		}
	}

	// The full deck is dealt out, nothing lost.
	counts := countTypes(all)
	assert.Equal(t, 1, counts[CardBomb])
	assert.Equal(t, 5, counts[CardSafe])
	assert.Equal(t, 19, counts[CardNeutral])
}

func TestCollectUncutExcludesCutCards(t *testing.T) {
	players := makePlayers(4)
	d := NewDealer(randutil.New(5))
	d.DealInitialHands(players)

	players[0].Wires[0].Cut = true
	players[2].Wires[3].Cut = true

	pool := d.CollectUncut(players)
	assert.Len(t, pool, 4*5-2)
}

func TestCanRedistribute(t *testing.T) {
	players := makePlayers(4)
	d := NewDealer(randutil.New(5))
	d.DealInitialHands(players)

	// 20 uncut cards, next round needs 4*4=16.
	assert.True(t, d.CanRedistribute(players, 4))

	// Cut 5 cards: 15 left, below 16.
	for i := 0; i < 5; i++ {
		players[i%4].Wires[i%5].Cut = true
	}
	assert.False(t, d.CanRedistribute(players, 4))
	assert.True(t, d.CanRedistribute(players, 3))
}

func TestRedistributePreservesUncutPool(t *testing.T) {
	players := makePlayers(4)
	d := NewDealer(randutil.New(9))
	d.DealInitialHands(players)

	// Cut four neutrals so the pool shrinks but stays feasible.
	cut := 0
	for _, p := range players {
		for _, w := range p.Wires {
			if w.Type == CardNeutral && cut < 4 {
				w.Cut = true
				cut++
			}
		}
	}
	require.Equal(t, 4, cut)

	before := countTypes(d.CollectUncut(players))
	oldIDs := map[string]bool{}
	for _, p := range players {
		for _, w := range p.Wires {
			oldIDs[w.ID] = true
		}
	}

	d.Redistribute(players, 4)

	var after []CardType
	for _, p := range players {
		require.Len(t, p.Wires, 4)
		for i, w := range p.Wires {
			assert.Equal(t, i, w.Position)
			assert.False(t, w.Cut)
			assert.False(t, oldIDs[w.ID], "redistributed cards must have fresh identities")
			after = append(after, w.Type)
		}
	}

	// Exactly the 16 surviving cards go back out; the type multiset is intact.
	require.Len(t, after, 16)
	assert.Equal(t, before, countTypes(after))
}
