package main

import (
	"testing"

	"github.com/milk9111/gridwalk/grid"
	"github.com/milk9111/gridwalk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	cases := []struct {
		in      string
		x, y    int
		wantErr bool
	}{
		{in: "3,4", x: 3, y: 4},
		{in: " 10 , 0 ", x: 10, y: 0},
		{in: "3", wantErr: true},
		{in: "a,1", wantErr: true},
	}
	for _, c := range cases {
		x, y, err := parseCell(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, [2]int{c.x, c.y}, [2]int{x, y}, c.in)
	}
}

func TestParseCells(t *testing.T) {
	cells, err := parseCells("1,0;2,2")
	require.NoError(t, err)
	assert.Equal(t, []grid.Cell{{X: 1, Y: 0}, {X: 2, Y: 2}}, cells)

	cells, err = parseCells("")
	require.NoError(t, err)
	assert.Nil(t, cells)
}

func TestRunRejectsBadInput(t *testing.T) {
	log := logger.Discard()
	require.Error(t, run("corridor", "0,0", "", "", log))
	require.ErrorIs(t, run("corridor", "0,0", "99,0", "", log), grid.ErrOutOfBounds)
	require.NoError(t, run("corridor", "0,0", "19,19", "", log))
}
