package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextActingSeatAfter(t *testing.T) {
	table := newTestTable(t, 6)
	players := seatPlayers(t, table, 4)

	seat, ok := table.NextActingSeatAfter(0)
	require.True(t, ok)
	assert.Equal(t, 1, seat)

	// the scan wraps past the top seat
	seat, ok = table.NextActingSeatAfter(3)
	require.True(t, ok)
	assert.Equal(t, 0, seat)

	// folded and all-in players are skipped
	players[1].Status = StatusFolded
	players[2].Status = StatusAllIn
	seat, ok = table.NextActingSeatAfter(0)
	require.True(t, ok)
	assert.Equal(t, 3, seat)

	// a lone eligible player can still be found from their own seat
	players[3].Status = StatusFolded
	seat, ok = table.NextActingSeatAfter(0)
	require.True(t, ok)
	assert.Equal(t, 0, seat)

	players[0].Status = StatusFolded
	_, ok = table.NextActingSeatAfter(0)
	assert.False(t, ok)
}

func TestNextActingSeatStopsAtLastToAct(t *testing.T) {
	table := newTestTable(t, 6)
	players := seatPlayers(t, table, 3)

	require.NoError(t, table.SetLastToAct(players[2]))

	// scanning from the closing seat ends the round
	_, ok := table.NextActingSeatAfter(2)
	assert.False(t, ok)

	// other seats still scan normally
	seat, ok := table.NextActingSeatAfter(0)
	require.True(t, ok)
	assert.Equal(t, 1, seat)
}

func TestPrevActingSeatBefore(t *testing.T) {
	table := newTestTable(t, 6)
	players := seatPlayers(t, table, 4)

	seat, ok := table.PrevActingSeatBefore(0)
	require.True(t, ok)
	assert.Equal(t, 3, seat)

	players[3].Status = StatusFolded
	seat, ok = table.PrevActingSeatBefore(0)
	require.True(t, ok)
	assert.Equal(t, 2, seat)

	require.NoError(t, table.SetLastToAct(players[1]))
	_, ok = table.PrevActingSeatBefore(1)
	assert.False(t, ok)
}

func TestUnguardedScansIgnoreLastToAct(t *testing.T) {
	table := newTestTable(t, 6)
	players := seatPlayers(t, table, 3)
	require.NoError(t, table.SetLastToAct(players[1]))

	seat, ok := table.FirstActingSeatAfter(1)
	require.True(t, ok)
	assert.Equal(t, 2, seat)

	seat, ok = table.LastActingSeatBefore(1)
	require.True(t, ok)
	assert.Equal(t, 0, seat)
}

func TestNextOccupiedSeatAfter(t *testing.T) {
	table := newTestTable(t, 6)
	players := seatPlayers(t, table, 4)

	// sitting out and eliminated players never take the button, but an
	// all-in player can
	players[1].Status = StatusSittingOut
	players[2].Status = StatusEliminated
	players[3].Status = StatusAllIn

	seat, ok := table.NextOccupiedSeatAfter(0)
	require.True(t, ok)
	assert.Equal(t, 3, seat)

	seat, ok = table.NextOccupiedSeatAfter(3)
	require.True(t, ok)
	assert.Equal(t, 0, seat)
}
