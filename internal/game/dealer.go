package game

import (
	rand "math/rand/v2"

	"github.com/google/uuid"

	"github.com/nroche/timebomb/internal/randutil"
)

// initialWiresPerPlayer is the hand size every game starts with.
const initialWiresPerPlayer = 5

// Dealer builds, deals and redistributes wire decks. All randomness comes
// from the injected generator.
type Dealer struct {
	rng *rand.Rand
}

// NewDealer creates a dealer around rng.
func NewDealer(rng *rand.Rand) *Dealer {
	return &Dealer{rng: rng}
}

// BuildDeck assembles and shuffles the initial deck for playerCount players.
func (d *Dealer) BuildDeck(playerCount int) []CardType {
	p := CalculateParameters(d.rng, playerCount)

	deck := make([]CardType, 0, p.TotalCards)
	for i := 0; i < p.BombCount; i++ {
		deck = append(deck, CardBomb)
	}
	for i := 0; i < p.SafeWireCount; i++ {
		deck = append(deck, CardSafe)
	}
	for i := 0; i < p.NeutralCount; i++ {
		deck = append(deck, CardNeutral)
	}
	randutil.Shuffle(d.rng, deck)
	return deck
}

// DealInitialHands replaces every player's hand with five fresh cards from a
// newly built deck.
func (d *Dealer) DealInitialHands(players []*Player) {
	deck := d.BuildDeck(len(players))
	for _, p := range players {
		p.Wires = make([]*WireCard, 0, initialWiresPerPlayer)
		for i := 0; i < initialWiresPerPlayer; i++ {
			var t CardType
			t, deck = deck[len(deck)-1], deck[:len(deck)-1]
			p.Wires = append(p.Wires, newWireCard(t, i))
		}
	}
}

// CollectUncut gathers the types of every uncut card across all hands. Cut
// cards are gone for good; the pool shrinks every round.
func (d *Dealer) CollectUncut(players []*Player) []CardType {
	var pool []CardType
	for _, p := range players {
		for _, w := range p.Wires {
			if !w.Cut {
				pool = append(pool, w.Type)
			}
		}
	}
	return pool
}

// CanRedistribute reports whether the uncut pool can still fill every hand
// for the next round. When it cannot, the game resolves as an evil win.
func (d *Dealer) CanRedistribute(players []*Player, wiresPerPlayer int) bool {
	return len(d.CollectUncut(players)) >= len(players)*wiresPerPlayer
}

// Redistribute shuffles the uncut pool and deals wiresPerPlayer fresh cards
// to every player. New identities, reset cut flags, new positions; leftover
// cards are discarded. Callers must check CanRedistribute first.
func (d *Dealer) Redistribute(players []*Player, wiresPerPlayer int) {
	pool := d.CollectUncut(players)
	randutil.Shuffle(d.rng, pool)

	for _, p := range players {
		p.Wires = make([]*WireCard, 0, wiresPerPlayer)
		for i := 0; i < wiresPerPlayer; i++ {
			var t CardType
			t, pool = pool[len(pool)-1], pool[:len(pool)-1]
			p.Wires = append(p.Wires, newWireCard(t, i))
		}
	}
}

func newWireCard(t CardType, position int) *WireCard {
	return &WireCard{
		ID:       uuid.NewString(),
		Type:     t,
		Position: position,
	}
}
