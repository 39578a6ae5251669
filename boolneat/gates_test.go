package boolneat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateFunctions_BinaryTruthTables(t *testing.T) {
	rows := []struct {
		a, b bool
		and  bool
		or   bool
		nand bool
		nor  bool
	}{
		{false, false, false, false, true, true},
		{false, true, false, true, true, false},
		{true, false, false, true, true, false},
		{true, true, true, true, false, false},
	}

	for _, row := range rows {
		in := []bool{row.a, row.b}
		assert.Equal(t, row.and, GateAnd(in), "AND(%t, %t)", row.a, row.b)
		assert.Equal(t, row.or, GateOr(in), "OR(%t, %t)", row.a, row.b)
		assert.Equal(t, row.nand, GateNand(in), "NAND(%t, %t)", row.a, row.b)
		assert.Equal(t, row.nor, GateNor(in), "NOR(%t, %t)", row.a, row.b)
	}
}

func TestGateFunctions_NAry(t *testing.T) {
	t.Run("three inputs", func(t *testing.T) {
		assert.True(t, GateAnd([]bool{true, true, true}))
		assert.False(t, GateAnd([]bool{true, true, false}))
		assert.True(t, GateOr([]bool{false, false, true}))
		assert.False(t, GateOr([]bool{false, false, false}))
		assert.True(t, GateNand([]bool{true, false, true}))
		assert.False(t, GateNand([]bool{true, true, true}))
		assert.True(t, GateNor([]bool{false, false, false}))
		assert.False(t, GateNor([]bool{false, true, false}))
	})
}

func TestGetGate(t *testing.T) {
	t.Run("gate kinds", func(t *testing.T) {
		for _, kind := range []NodeType{AND, OR, NAND, NOR} {
			fn, err := GetGate(kind)
			require.NoError(t, err)
			require.NotNil(t, fn)
		}
	})

	t.Run("terminal kinds", func(t *testing.T) {
		for _, kind := range []NodeType{INPUT, OUTPUT} {
			_, err := GetGate(kind)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		}
	})
}
