package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridCellOutOfRange(t *testing.T) {
	grid := Grid{{"a", " b "}, {"c"}}

	assert.Equal(t, "b", grid.Cell(0, 1))
	assert.Equal(t, "", grid.Cell(1, 1))
	assert.Equal(t, "", grid.Cell(5, 0))
	assert.Equal(t, "", grid.Cell(0, -1))
}

func TestGridIsBlankRow(t *testing.T) {
	grid := Grid{{"a"}, {"", "  "}, nil}

	assert.False(t, grid.IsBlankRow(0))
	assert.True(t, grid.IsBlankRow(1))
	assert.True(t, grid.IsBlankRow(2))
	assert.True(t, grid.IsBlankRow(99))
}

func TestHeaderIndexKeepsFirstOccurrence(t *testing.T) {
	idx := headerIndex([]string{"Fecha", " descripción ", "", "FECHA"})

	assert.Equal(t, 0, idx["FECHA"])
	assert.Equal(t, 1, idx["DESCRIPCIÓN"])
	assert.NotContains(t, idx, "")
}

func TestColumnOfFallsBackAcrossNames(t *testing.T) {
	cols := map[string]int{"DESCRIPCION": 2}

	assert.Equal(t, 2, columnOf(cols, "DESCRIPCIÓN", "DESCRIPCION"))
	assert.Equal(t, -1, columnOf(cols, "MONTO"))
}

func TestLatin1ToUTF8(t *testing.T) {
	// "Descripción" with the ó encoded as ISO 8859-1.
	raw := []byte{'D', 'e', 's', 'c', 'r', 'i', 'p', 'c', 'i', 0xF3, 'n'}
	assert.Equal(t, "Descripción", string(latin1ToUTF8(raw)))
}
