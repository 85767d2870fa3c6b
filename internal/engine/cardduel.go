// internal/engine/cardduel.go
package engine

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Element is a card suit in the three-way advantage cycle:
// fire beats snow, snow beats water, water beats fire.
type Element string

const (
	ElementFire  Element = "fire"
	ElementWater Element = "water"
	ElementSnow  Element = "snow"
)

var elementGlyphs = map[Element]string{
	ElementFire:  "🔥",
	ElementWater: "💧",
	ElementSnow:  "❄️",
}

// beats reports whether e has the cycle advantage over other.
func (e Element) beats(other Element) bool {
	switch e {
	case ElementFire:
		return other == ElementSnow
	case ElementSnow:
		return other == ElementWater
	case ElementWater:
		return other == ElementFire
	}
	return false
}

const (
	handSize = 5
	maxPower = 5
)

// Card is one playable card. Power breaks ties between equal elements.
type Card struct {
	ID      uuid.UUID `json:"id"`
	Element Element   `json:"element"`
	Power   int       `json:"power"` // [1, maxPower]
	Glyph   string    `json:"glyph"`
}

// RoundResult records the two cards just revealed and who took the round.
type RoundResult struct {
	Cards  [2]Card `json:"cards"`  // indexed by seat
	Winner string  `json:"winner"` // "participant1", "participant2" or "tie"
}

const noSelection = -1

// CardDuel is the concealed-hand rule engine. Both seats select
// simultaneously each round; rounds resolve when the second selection lands.
type CardDuel struct {
	round         int
	phase         Phase
	hands         [2][]Card
	selected      [2]int // hand index, noSelection while pending
	tallies       [2]map[Element]int
	winner        Seat
	hasWinner     bool
	lastResult    *RoundResult
	turnStartedAt time.Time
	rng           *rand.Rand
}

// NewCardDuel deals both hands and opens round 1 in the select phase.
func NewCardDuel(now time.Time, seed uint64) *CardDuel {
	g := &CardDuel{
		round:         1,
		phase:         PhaseSelect,
		selected:      [2]int{noSelection, noSelection},
		turnStartedAt: now,
		rng:           rand.New(rand.NewPCG(seed, seed^0x2545f4914f6cdd1d)),
	}
	for seat := range g.hands {
		g.tallies[seat] = map[Element]int{}
		g.hands[seat] = make([]Card, handSize)
		for i := range g.hands[seat] {
			g.hands[seat][i] = g.dealCard()
		}
	}
	return g
}

func (g *CardDuel) dealCard() Card {
	elements := [3]Element{ElementFire, ElementWater, ElementSnow}
	el := elements[g.rng.IntN(len(elements))]
	return Card{
		ID:      uuid.New(),
		Element: el,
		Power:   1 + g.rng.IntN(maxPower),
		Glyph:   elementGlyphs[el],
	}
}

// ApplyMove records the acting seat's selection of hand index input. The
// second selection of a round resolves it synchronously.
func (g *CardDuel) ApplyMove(seat Seat, input int, now time.Time) MoveResult {
	if g.phase == PhaseComplete {
		return Failure(ErrGameOver)
	}
	if g.phase != PhaseSelect {
		return Failure(ErrNotSelectPhase)
	}
	if input < 0 || input >= len(g.hands[seat]) {
		return Failure(ErrInvalidCard)
	}
	if g.selected[seat] != noSelection {
		return Failure(ErrAlreadySelected)
	}

	g.selected[seat] = input
	if g.selected[seat.Other()] == noSelection {
		return MoveResult{Success: true}
	}

	g.resolveRound()
	res := MoveResult{Success: true, BothSelected: true}
	if g.phase == PhaseComplete {
		res.GameComplete = true
	}
	return res
}

// resolveRound compares the two selections, updates tallies, checks the win
// condition and moves to the reveal phase (or straight to complete).
func (g *CardDuel) resolveRound() {
	c1 := g.hands[Seat1][g.selected[Seat1]]
	c2 := g.hands[Seat2][g.selected[Seat2]]

	result := RoundResult{Cards: [2]Card{c1, c2}, Winner: "tie"}
	switch {
	case c1.Element.beats(c2.Element):
		result.Winner = Seat1.Label()
		g.tallies[Seat1][c1.Element]++
	case c2.Element.beats(c1.Element):
		result.Winner = Seat2.Label()
		g.tallies[Seat2][c2.Element]++
	case c1.Power > c2.Power:
		result.Winner = Seat1.Label()
		g.tallies[Seat1][c1.Element]++
	case c2.Power > c1.Power:
		result.Winner = Seat2.Label()
		g.tallies[Seat2][c2.Element]++
	}
	g.lastResult = &result

	for _, seat := range [2]Seat{Seat1, Seat2} {
		if g.talliesWin(seat) {
			g.phase = PhaseComplete
			g.winner = seat
			g.hasWinner = true
			return
		}
	}
	g.phase = PhaseReveal
}

// talliesWin checks both win shapes: three of any one element, or at least
// one of each of the three.
func (g *CardDuel) talliesWin(seat Seat) bool {
	t := g.tallies[seat]
	oneOfEach := true
	for _, el := range [3]Element{ElementFire, ElementWater, ElementSnow} {
		if t[el] >= 3 {
			return true
		}
		if t[el] == 0 {
			oneOfEach = false
		}
	}
	return oneOfEach
}

// AdvanceRound replaces each seat's played card with a fresh deal, tops the
// hands back up to size and opens the next round's select phase. Callers
// invoke it after the reveal pause; it is a no-op unless the game sits in
// the reveal phase.
func (g *CardDuel) AdvanceRound(now time.Time) {
	if g.phase != PhaseReveal {
		return
	}
	for seat := range g.hands {
		if idx := g.selected[seat]; idx != noSelection {
			g.hands[seat][idx] = g.dealCard()
		}
		for len(g.hands[seat]) < handSize {
			g.hands[seat] = append(g.hands[seat], g.dealCard())
		}
	}
	g.round++
	g.selected = [2]int{noSelection, noSelection}
	g.lastResult = nil
	g.phase = PhaseSelect
	g.turnStartedAt = now
}

// ForcedMoves defaults every seat still pending this round to hand index 0.
// Only the select phase waits on input; reveal never forces anything.
func (g *CardDuel) ForcedMoves() []ForcedMove {
	if g.phase != PhaseSelect {
		return nil
	}
	var moves []ForcedMove
	for _, seat := range [2]Seat{Seat1, Seat2} {
		if g.selected[seat] == noSelection {
			moves = append(moves, ForcedMove{Seat: seat, Input: 0})
		}
	}
	return moves
}

// TurnStartedAt reports when the current round's select clock started.
func (g *CardDuel) TurnStartedAt() time.Time { return g.turnStartedAt }

// Outcome reports the terminal result. A card duel cannot draw.
func (g *CardDuel) Outcome() Outcome {
	if !g.hasWinner {
		return Outcome{}
	}
	return Outcome{Done: true, Winner: g.winner}
}

// CardDuelParticipantView is rendered for one of the two seats. The viewer
// sees their own hand and selection; the opponent's concealed information is
// reduced to a presence flag.
type CardDuelParticipantView struct {
	Round            int             `json:"round"`
	Phase            Phase           `json:"phase"`
	Hand             []Card          `json:"hand"`
	SelectedIndex    *int            `json:"selectedIndex"`
	OpponentSelected bool            `json:"opponentSelected"`
	Tallies          map[Element]int `json:"tallies"`
	OpponentTallies  map[Element]int `json:"opponentTallies"`
	LastRoundResult  *RoundResult    `json:"lastRoundResult,omitempty"`
	Winner           string          `json:"winner,omitempty"`
}

// SpectatorRoundResult is the coarse form of a round result: element and
// glyph only, never power.
type SpectatorRoundResult struct {
	Cards  [2]SpectatorCard `json:"cards"`
	Winner string           `json:"winner"`
}

// SpectatorCard is the public face of a revealed card.
type SpectatorCard struct {
	Element Element `json:"element"`
	Glyph   string  `json:"glyph"`
}

// CardDuelSpectatorView is rendered for room broadcasts. It is strictly
// coarser than either participant view: no hands, no selections, no powers.
type CardDuelSpectatorView struct {
	Round           int                   `json:"round"`
	Phase           Phase                 `json:"phase"`
	Tallies         [2]map[Element]int    `json:"tallies"`
	LastRoundResult *SpectatorRoundResult `json:"lastRoundResult,omitempty"`
	Winner          string                `json:"winner,omitempty"`
}

// Project renders the duel for viewer. Participants get their own concealed
// state; spectators get tallies and the revealed round only.
func (g *CardDuel) Project(v Viewer) interface{} {
	winner := ""
	if g.hasWinner {
		winner = g.winner.Label()
	}

	if v == ViewerSpectator {
		sv := CardDuelSpectatorView{
			Round:   g.round,
			Phase:   g.phase,
			Tallies: [2]map[Element]int{copyTally(g.tallies[Seat1]), copyTally(g.tallies[Seat2])},
			Winner:  winner,
		}
		if g.lastResult != nil {
			sr := SpectatorRoundResult{Winner: g.lastResult.Winner}
			for i, c := range g.lastResult.Cards {
				sr.Cards[i] = SpectatorCard{Element: c.Element, Glyph: c.Glyph}
			}
			sv.LastRoundResult = &sr
		}
		return sv
	}

	seat := Seat(v)
	pv := CardDuelParticipantView{
		Round:            g.round,
		Phase:            g.phase,
		Hand:             append([]Card(nil), g.hands[seat]...),
		OpponentSelected: g.selected[seat.Other()] != noSelection,
		Tallies:          copyTally(g.tallies[seat]),
		OpponentTallies:  copyTally(g.tallies[seat.Other()]),
		LastRoundResult:  g.lastResult,
		Winner:           winner,
	}
	if idx := g.selected[seat]; idx != noSelection {
		i := idx
		pv.SelectedIndex = &i
	}
	return pv
}

func copyTally(t map[Element]int) map[Element]int {
	out := make(map[Element]int, len(t))
	for el, n := range t {
		out[el] = n
	}
	return out
}
