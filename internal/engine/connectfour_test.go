// internal/engine/connectfour_test.go
package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectFourVerticalWin(t *testing.T) {
	now := time.Now()
	g := NewConnectFour(now, 1)

	// Red stacks column 0, yellow stacks column 6.
	for i := 0; i < 3; i++ {
		require.True(t, g.ApplyMove(Seat1, 0, now).Success)
		require.True(t, g.ApplyMove(Seat2, 6, now).Success)
	}
	res := g.ApplyMove(Seat1, 0, now)
	require.True(t, res.Success)
	assert.True(t, res.GameComplete)
	assert.False(t, res.IsDraw)

	out := g.Outcome()
	assert.True(t, out.Done)
	assert.Equal(t, Seat1, out.Winner)

	view, ok := g.Project(ViewerSpectator).(ConnectFourView)
	require.True(t, ok)
	assert.Equal(t, "red", view.Winner)
	assert.Len(t, view.WinningCells, 4)
	require.NotNil(t, view.LastMove)
	assert.Equal(t, Cell{Row: 3, Col: 0}, *view.LastMove)
}

func TestConnectFourHorizontalWinSpansBothSenses(t *testing.T) {
	now := time.Now()
	g := NewConnectFour(now, 1)

	// Red lays 2, 4, 5 along the bottom, then fills the gap at 3 so the
	// winning run has cells on both sides of the placed token.
	for _, mv := range []struct {
		seat Seat
		col  int
	}{
		{Seat1, 2}, {Seat2, 2},
		{Seat1, 4}, {Seat2, 4},
		{Seat1, 5}, {Seat2, 5},
	} {
		require.True(t, g.ApplyMove(mv.seat, mv.col, now).Success)
	}
	res := g.ApplyMove(Seat1, 3, now)
	require.True(t, res.Success)
	assert.True(t, res.GameComplete)

	view := g.Project(ViewerSeat1).(ConnectFourView)
	assert.ElementsMatch(t, []Cell{
		{Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 0, Col: 4}, {Row: 0, Col: 5},
	}, view.WinningCells)
}

func TestConnectFourDiagonalWin(t *testing.T) {
	now := time.Now()
	g := NewConnectFour(now, 1)

	// Builds a rising red diagonal from (0,0) to (3,3).
	for _, mv := range []struct {
		seat Seat
		col  int
	}{
		{Seat1, 0},
		{Seat2, 1}, {Seat1, 1},
		{Seat2, 2}, {Seat1, 2},
		{Seat2, 3}, {Seat1, 2},
		{Seat2, 3}, {Seat1, 3},
		{Seat2, 6},
	} {
		res := g.ApplyMove(mv.seat, mv.col, now)
		require.True(t, res.Success, "drop in column %d", mv.col)
		require.False(t, res.GameComplete)
	}
	res := g.ApplyMove(Seat1, 3, now)
	require.True(t, res.Success)
	assert.True(t, res.GameComplete)
	assert.Equal(t, Seat1, g.Outcome().Winner)
}

func TestConnectFourColumnRejections(t *testing.T) {
	now := time.Now()
	g := NewConnectFour(now, 1)

	assert.Equal(t, ErrNotYourTurn, g.ApplyMove(Seat2, 0, now).Error)
	assert.Equal(t, ErrInvalidColumn, g.ApplyMove(Seat1, 7, now).Error)
	assert.Equal(t, ErrInvalidColumn, g.ApplyMove(Seat1, -1, now).Error)

	// Fill column 2 completely.
	for i := 0; i < 3; i++ {
		require.True(t, g.ApplyMove(Seat1, 2, now).Success)
		require.True(t, g.ApplyMove(Seat2, 2, now).Success)
	}
	assert.Equal(t, ErrColumnFull, g.ApplyMove(Seat1, 2, now).Error)
}

func TestConnectFourForcedMovePrefersCenter(t *testing.T) {
	now := time.Now()
	g := NewConnectFour(now, 1)

	moves := g.ForcedMoves()
	require.Len(t, moves, 1)
	assert.Equal(t, Seat1, moves[0].Seat)
	assert.Equal(t, 3, moves[0].Input)
}

func TestConnectFourForcedMoveAvoidsFullCenter(t *testing.T) {
	now := time.Now()
	g := NewConnectFour(now, 9)

	// Fill the center column without making four in a row anywhere.
	for _, mv := range []struct {
		seat Seat
		col  int
	}{
		{Seat1, 3}, {Seat2, 3},
		{Seat1, 3}, {Seat2, 3},
		{Seat1, 3}, {Seat2, 3},
	} {
		require.True(t, g.ApplyMove(mv.seat, mv.col, now).Success)
	}

	moves := g.ForcedMoves()
	require.Len(t, moves, 1)
	assert.NotEqual(t, 3, moves[0].Input)
	assert.True(t, g.ApplyMove(moves[0].Seat, moves[0].Input, now).Success)
}

func TestConnectFourTurnClockResetsOnMove(t *testing.T) {
	start := time.Now()
	g := NewConnectFour(start, 1)

	later := start.Add(12 * time.Second)
	require.True(t, g.ApplyMove(Seat1, 0, later).Success)
	assert.Equal(t, later, g.TurnStartedAt())
}
