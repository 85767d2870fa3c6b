// internal/engine/cardduel_test.go
package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(el Element, power int) Card {
	return Card{ID: uuid.New(), Element: el, Power: power, Glyph: elementGlyphs[el]}
}

// plantHands overwrites the dealt hands so round outcomes are deterministic.
func plantHands(g *CardDuel, seat1, seat2 []Card) {
	g.hands[Seat1] = seat1
	g.hands[Seat2] = seat2
}

func fullHand(el Element) []Card {
	h := make([]Card, handSize)
	for i := range h {
		h[i] = card(el, 1+i%maxPower)
	}
	return h
}

func TestCardDuelDealsFiveCards(t *testing.T) {
	g := NewCardDuel(time.Now(), 1)
	assert.Len(t, g.hands[Seat1], handSize)
	assert.Len(t, g.hands[Seat2], handSize)
	assert.Equal(t, 1, g.round)
	assert.Equal(t, PhaseSelect, g.phase)
	for _, c := range g.hands[Seat1] {
		assert.GreaterOrEqual(t, c.Power, 1)
		assert.LessOrEqual(t, c.Power, maxPower)
		assert.NotEmpty(t, c.Glyph)
	}
}

func TestCardDuelElementCycle(t *testing.T) {
	cases := []struct {
		name   string
		c1, c2 Card
		winner string
	}{
		{"fire beats snow", card(ElementFire, 1), card(ElementSnow, 5), "participant1"},
		{"snow beats water", card(ElementSnow, 1), card(ElementWater, 5), "participant1"},
		{"water beats fire", card(ElementWater, 1), card(ElementFire, 5), "participant1"},
		{"cycle from seat2", card(ElementSnow, 5), card(ElementFire, 1), "participant2"},
		{"equal element power tiebreak", card(ElementFire, 4), card(ElementFire, 2), "participant1"},
		{"equal element power tiebreak seat2", card(ElementWater, 2), card(ElementWater, 3), "participant2"},
		{"full tie", card(ElementSnow, 3), card(ElementSnow, 3), "tie"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Now()
			g := NewCardDuel(now, 1)
			plantHands(g, []Card{tc.c1}, []Card{tc.c2})

			require.True(t, g.ApplyMove(Seat1, 0, now).Success)
			res := g.ApplyMove(Seat2, 0, now)
			require.True(t, res.Success)
			assert.True(t, res.BothSelected)

			require.NotNil(t, g.lastResult)
			assert.Equal(t, tc.winner, g.lastResult.Winner)
		})
	}
}

func TestCardDuelRoundTieChangesNoTally(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)
	plantHands(g, fullHand(ElementSnow), fullHand(ElementSnow))

	require.True(t, g.ApplyMove(Seat1, 2, now).Success)
	res := g.ApplyMove(Seat2, 2, now)
	require.True(t, res.Success)
	require.True(t, res.BothSelected)
	assert.False(t, res.GameComplete)

	assert.Equal(t, "tie", g.lastResult.Winner)
	assert.Empty(t, g.tallies[Seat1][ElementSnow])
	assert.Empty(t, g.tallies[Seat2][ElementSnow])
	assert.Equal(t, PhaseReveal, g.phase)

	g.AdvanceRound(now)
	assert.Equal(t, 2, g.round)
	assert.Equal(t, PhaseSelect, g.phase)
	assert.Nil(t, g.lastResult)
}

func TestCardDuelThreeOfOneElementWin(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)
	g.tallies[Seat1][ElementFire] = 2
	plantHands(g, fullHand(ElementFire), fullHand(ElementSnow))

	require.True(t, g.ApplyMove(Seat1, 0, now).Success)
	res := g.ApplyMove(Seat2, 0, now)
	require.True(t, res.Success)
	assert.True(t, res.GameComplete)
	assert.False(t, res.IsDraw)

	out := g.Outcome()
	assert.True(t, out.Done)
	assert.Equal(t, Seat1, out.Winner)
	assert.Equal(t, 3, g.tallies[Seat1][ElementFire])
}

func TestCardDuelOneOfEachWin(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)
	g.tallies[Seat2][ElementFire] = 1
	g.tallies[Seat2][ElementWater] = 1
	plantHands(g, fullHand(ElementWater), fullHand(ElementSnow))

	require.True(t, g.ApplyMove(Seat1, 0, now).Success)
	res := g.ApplyMove(Seat2, 0, now)
	require.True(t, res.Success)
	assert.True(t, res.GameComplete)
	assert.Equal(t, Seat2, g.Outcome().Winner)
}

func TestCardDuelSelectionRejections(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)

	assert.Equal(t, ErrInvalidCard, g.ApplyMove(Seat1, 5, now).Error)
	assert.Equal(t, ErrInvalidCard, g.ApplyMove(Seat1, -1, now).Error)

	require.True(t, g.ApplyMove(Seat1, 0, now).Success)
	assert.Equal(t, ErrAlreadySelected, g.ApplyMove(Seat1, 1, now).Error)
}

func TestCardDuelRevealPhaseRejectsMoves(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)
	plantHands(g, fullHand(ElementFire), fullHand(ElementFire))

	require.True(t, g.ApplyMove(Seat1, 0, now).Success)
	require.True(t, g.ApplyMove(Seat2, 1, now).Success)
	require.Equal(t, PhaseReveal, g.phase)

	assert.Equal(t, ErrNotSelectPhase, g.ApplyMove(Seat1, 2, now).Error)
	assert.Empty(t, g.ForcedMoves())
}

func TestCardDuelAdvanceRoundReplacesPlayedCards(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 7)
	plantHands(g, fullHand(ElementFire), fullHand(ElementFire))
	played1 := g.hands[Seat1][3].ID
	played2 := g.hands[Seat2][0].ID

	require.True(t, g.ApplyMove(Seat1, 3, now).Success)
	require.True(t, g.ApplyMove(Seat2, 0, now).Success)
	require.Equal(t, PhaseReveal, g.phase)

	later := now.Add(2 * time.Second)
	g.AdvanceRound(later)

	assert.Equal(t, 2, g.round)
	assert.Len(t, g.hands[Seat1], handSize)
	assert.Len(t, g.hands[Seat2], handSize)
	assert.NotEqual(t, played1, g.hands[Seat1][3].ID)
	assert.NotEqual(t, played2, g.hands[Seat2][0].ID)
	assert.Equal(t, [2]int{noSelection, noSelection}, g.selected)
	assert.Equal(t, later, g.turnStartedAt)
}

func TestCardDuelAdvanceRoundNoopOutsideReveal(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)

	g.AdvanceRound(now.Add(time.Second))
	assert.Equal(t, 1, g.round)
	assert.Equal(t, PhaseSelect, g.phase)
	assert.Equal(t, now, g.turnStartedAt)
}

func TestCardDuelForcedMovesDefaultToFirstCard(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)

	moves := g.ForcedMoves()
	require.Len(t, moves, 2)
	for _, m := range moves {
		assert.Equal(t, 0, m.Input)
	}

	require.True(t, g.ApplyMove(Seat1, 2, now).Success)
	moves = g.ForcedMoves()
	require.Len(t, moves, 1)
	assert.Equal(t, Seat2, moves[0].Seat)
	assert.Equal(t, 0, moves[0].Input)
}

func TestCardDuelParticipantViewConcealsOpponent(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)
	require.True(t, g.ApplyMove(Seat2, 4, now).Success)

	v := g.Project(ViewerSeat1).(CardDuelParticipantView)
	assert.Len(t, v.Hand, handSize)
	assert.Nil(t, v.SelectedIndex)
	assert.True(t, v.OpponentSelected)

	v2 := g.Project(ViewerSeat2).(CardDuelParticipantView)
	require.NotNil(t, v2.SelectedIndex)
	assert.Equal(t, 4, *v2.SelectedIndex)
	assert.False(t, v2.OpponentSelected)
}

func TestCardDuelSpectatorViewOmitsHandsAndPower(t *testing.T) {
	now := time.Now()
	g := NewCardDuel(now, 1)
	plantHands(g, fullHand(ElementFire), fullHand(ElementSnow))
	require.True(t, g.ApplyMove(Seat1, 0, now).Success)
	require.True(t, g.ApplyMove(Seat2, 0, now).Success)

	v := g.Project(ViewerSpectator).(CardDuelSpectatorView)
	assert.Equal(t, 1, v.Round)
	require.NotNil(t, v.LastRoundResult)
	assert.Equal(t, "participant1", v.LastRoundResult.Winner)
	assert.Equal(t, ElementFire, v.LastRoundResult.Cards[0].Element)
	assert.Equal(t, ElementSnow, v.LastRoundResult.Cards[1].Element)
	assert.NotEmpty(t, v.LastRoundResult.Cards[0].Glyph)
}
