package expr

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/boolneat-go/boolneat"
)

func mustGenome(t *testing.T, jsonText string) *boolneat.Genome {
	t.Helper()
	g := new(boolneat.Genome)
	require.NoError(t, json.Unmarshal([]byte(jsonText), g))
	return g
}

// andGenome wires both inputs into a single AND gate feeding the output:
// out_2 = (in_0 AND in_1).
func andGenome(t *testing.T) *boolneat.Genome {
	t.Helper()
	return mustGenome(t, `{
		"schema_version": 1,
		"nodes": [
			{"id": 0, "kind": "INPUT", "layer": 0},
			{"id": 1, "kind": "INPUT", "layer": 0},
			{"id": 2, "kind": "OUTPUT", "layer": 1},
			{"id": 3, "kind": "AND", "layer": 0.5}
		],
		"connections": [
			{"id": 4, "from": 0, "to": 3, "enabled": true},
			{"id": 5, "from": 1, "to": 3, "enabled": true},
			{"id": 6, "from": 3, "to": 2, "enabled": true}
		],
		"next_innovation": 7
	}`)
}

func TestBuild(t *testing.T) {
	t.Run("single gate circuit", func(t *testing.T) {
		g := andGenome(t)

		e, err := Build(g, 2)
		require.NoError(t, err)
		assert.Equal(t, "out_2 = (in_0 AND in_1)", e.String())

		out, ok := e.(NamedOutput)
		require.True(t, ok)
		gate, ok := out.Inner.(Gate)
		require.True(t, ok)
		assert.Equal(t, boolneat.AND, gate.Kind)
		require.Len(t, gate.Children, 2)
		assert.Equal(t, Input{ID: 0}, gate.Children[0])
		assert.Equal(t, Input{ID: 1}, gate.Children[1])
	})

	t.Run("children follow wire creation order", func(t *testing.T) {
		g := mustGenome(t, `{
			"schema_version": 1,
			"nodes": [
				{"id": 0, "kind": "INPUT", "layer": 0},
				{"id": 1, "kind": "INPUT", "layer": 0},
				{"id": 2, "kind": "OUTPUT", "layer": 1},
				{"id": 3, "kind": "AND", "layer": 0.5}
			],
			"connections": [
				{"id": 4, "from": 1, "to": 3, "enabled": true},
				{"id": 5, "from": 0, "to": 3, "enabled": true},
				{"id": 6, "from": 3, "to": 2, "enabled": true}
			],
			"next_innovation": 7
		}`)

		e, err := Build(g, 2)
		require.NoError(t, err)
		assert.Equal(t, "out_2 = (in_1 AND in_0)", e.String())
	})

	t.Run("nested gates", func(t *testing.T) {
		g := mustGenome(t, `{
			"schema_version": 1,
			"nodes": [
				{"id": 0, "kind": "INPUT", "layer": 0},
				{"id": 1, "kind": "INPUT", "layer": 0},
				{"id": 2, "kind": "OUTPUT", "layer": 1},
				{"id": 3, "kind": "OR", "layer": 0.25},
				{"id": 4, "kind": "NAND", "layer": 0.5}
			],
			"connections": [
				{"id": 5, "from": 0, "to": 3, "enabled": true},
				{"id": 6, "from": 1, "to": 3, "enabled": true},
				{"id": 7, "from": 3, "to": 4, "enabled": true},
				{"id": 8, "from": 0, "to": 4, "enabled": true},
				{"id": 9, "from": 4, "to": 2, "enabled": true}
			],
			"next_innovation": 10
		}`)

		e, err := Build(g, 2)
		require.NoError(t, err)
		assert.Equal(t, "out_2 = ((in_0 OR in_1) NAND in_0)", e.String())
	})

	t.Run("disabled wires are invisible", func(t *testing.T) {
		g := mustGenome(t, `{
			"schema_version": 1,
			"nodes": [
				{"id": 0, "kind": "INPUT", "layer": 0},
				{"id": 1, "kind": "INPUT", "layer": 0},
				{"id": 2, "kind": "OUTPUT", "layer": 1},
				{"id": 3, "kind": "AND", "layer": 0.5}
			],
			"connections": [
				{"id": 4, "from": 0, "to": 3, "enabled": true},
				{"id": 5, "from": 1, "to": 3, "enabled": true},
				{"id": 6, "from": 3, "to": 2, "enabled": true},
				{"id": 7, "from": 0, "to": 2, "enabled": false}
			],
			"next_innovation": 8
		}`)

		e, err := Build(g, 2)
		require.NoError(t, err)
		assert.Equal(t, "out_2 = (in_0 AND in_1)", e.String())
	})

	t.Run("input leaf", func(t *testing.T) {
		g := andGenome(t)
		e, err := Build(g, 0)
		require.NoError(t, err)
		assert.Equal(t, Input{ID: 0}, e)
		assert.Equal(t, "in_0", e.String())
	})

	t.Run("unknown node", func(t *testing.T) {
		g := andGenome(t)
		_, err := Build(g, 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, boolneat.ErrInvalidArgument)
	})

	t.Run("isolated output", func(t *testing.T) {
		g, err := boolneat.NewGenome(1, 2, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		var isolated boolneat.Innovation = -1
		for _, id := range g.OutputIDs() {
			if len(g.EnabledInbound(id)) == 0 {
				isolated = id
			}
		}
		require.NotEqual(t, boolneat.Innovation(-1), isolated)

		_, err = Build(g, isolated)
		require.Error(t, err)
		assert.ErrorIs(t, err, boolneat.ErrMalformedGenome)
		assert.Contains(t, err.Error(), "want exactly 1")
	})

	t.Run("starved gate", func(t *testing.T) {
		g := mustGenome(t, `{
			"schema_version": 1,
			"nodes": [
				{"id": 0, "kind": "INPUT", "layer": 0},
				{"id": 2, "kind": "OUTPUT", "layer": 1},
				{"id": 3, "kind": "AND", "layer": 0.5}
			],
			"connections": [
				{"id": 4, "from": 0, "to": 3, "enabled": true},
				{"id": 6, "from": 3, "to": 2, "enabled": true}
			],
			"next_innovation": 7
		}`)

		_, err := Build(g, 2)
		require.Error(t, err)
		assert.ErrorIs(t, err, boolneat.ErrMalformedGenome)
		assert.Contains(t, err.Error(), "want at least 2")
	})
}

func TestBuildAll(t *testing.T) {
	t.Run("one expression per output", func(t *testing.T) {
		g := mustGenome(t, `{
			"schema_version": 1,
			"nodes": [
				{"id": 0, "kind": "INPUT", "layer": 0},
				{"id": 1, "kind": "OUTPUT", "layer": 1},
				{"id": 2, "kind": "OUTPUT", "layer": 1}
			],
			"connections": [
				{"id": 3, "from": 0, "to": 1, "enabled": true},
				{"id": 4, "from": 0, "to": 2, "enabled": true}
			],
			"next_innovation": 5
		}`)

		exprs, err := BuildAll(g)
		require.NoError(t, err)
		require.Len(t, exprs, 2)
		assert.Equal(t, "out_1 = in_0", exprs[0].String())
		assert.Equal(t, "out_2 = in_0", exprs[1].String())
	})

	t.Run("fails on the first broken output", func(t *testing.T) {
		g, err := boolneat.NewGenome(1, 2, rand.New(rand.NewSource(2)))
		require.NoError(t, err)

		_, err = BuildAll(g)
		require.Error(t, err)
		assert.ErrorIs(t, err, boolneat.ErrMalformedGenome)
	})

	t.Run("no outputs", func(t *testing.T) {
		g, err := boolneat.NewGenome(2, 0, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		exprs, err := BuildAll(g)
		require.NoError(t, err)
		assert.Empty(t, exprs)
	})
}

func TestExpression_Eval(t *testing.T) {
	g := andGenome(t)
	e, err := Build(g, 2)
	require.NoError(t, err)

	t.Run("truth table", func(t *testing.T) {
		cases := []struct {
			a, b bool
			want bool
		}{
			{false, false, false},
			{false, true, false},
			{true, false, false},
			{true, true, true},
		}
		for _, tc := range cases {
			got, err := e.Eval(map[boolneat.Innovation]bool{0: tc.a, 1: tc.b})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "a=%t b=%t", tc.a, tc.b)
		}
	})

	t.Run("missing assignment", func(t *testing.T) {
		_, err := e.Eval(map[boolneat.Innovation]bool{0: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no value assigned for input 1")
	})

	t.Run("gate over a terminal kind", func(t *testing.T) {
		bad := Gate{Kind: boolneat.INPUT, Children: []Expression{Input{ID: 0}, Input{ID: 1}}}
		_, err := bad.Eval(map[boolneat.Innovation]bool{0: true, 1: true})
		require.Error(t, err)
		assert.ErrorIs(t, err, boolneat.ErrInvalidArgument)
	})
}

func TestExpression_String(t *testing.T) {
	three := Gate{Kind: boolneat.NOR, Children: []Expression{Input{ID: 0}, Input{ID: 1}, Input{ID: 3}}}
	assert.Equal(t, "(in_0 NOR in_1 NOR in_3)", three.String())

	named := NamedOutput{ID: 7, Inner: three}
	assert.Equal(t, "out_7 = (in_0 NOR in_1 NOR in_3)", named.String())
}
