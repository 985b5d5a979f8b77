package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyGraph(t *testing.T) {
	table, err := NewTable(NewTableId(), "graph")
	require.NoError(t, err)
	table.SetCell(MustCoordinate("A1"), NewInteger(1))
	table.SetCell(MustCoordinate("A2"), NewInteger(2))
	table.SetCell(MustCoordinate("B1"), NewText("=A1+A2"))
	table.SetCell(MustCoordinate("B2"), NewFunctionValue(MustFunction("SUM(B1,A2)")))
	table.SetCell(MustCoordinate("C1"), NewText("=B2*2"))

	dg, err := table.DependencyGraph()
	require.NoError(t, err)
	assert.Equal(t, 5, dg.NodeCount())
	assert.False(t, dg.HasCycle())

	assert.Equal(t, []string{"B1", "B2"}, coordinateStrings(dg.GetDirectDependents(MustCoordinate("A2"))))
	assert.Equal(t, []string{"B1", "C1", "B2"}, coordinateStrings(dg.GetAllDependents(MustCoordinate("A1"))))
	assert.Equal(t, []string{"B1", "A2"}, coordinateStrings(dg.GetDirectPrecedents(MustCoordinate("B2"))))
	assert.Nil(t, dg.GetDirectDependents(MustCoordinate("Z9")))

	order, cycle := dg.GetCalculationOrder()
	require.False(t, cycle)
	position := make(map[Coordinate]int, len(order))
	for i, c := range order {
		position[c] = i
	}
	assert.Less(t, position[MustCoordinate("A1")], position[MustCoordinate("B1")])
	assert.Less(t, position[MustCoordinate("B1")], position[MustCoordinate("B2")])
	assert.Less(t, position[MustCoordinate("B2")], position[MustCoordinate("C1")])
}

func TestDependencyGraphCycle(t *testing.T) {
	table, err := NewTable(NewTableId(), "graph")
	require.NoError(t, err)
	table.SetCell(MustCoordinate("A1"), NewText("=B1"))
	table.SetCell(MustCoordinate("B1"), NewText("=A1"))

	dg, err := table.DependencyGraph()
	require.NoError(t, err)
	assert.True(t, dg.HasCycle())

	table.SetCell(MustCoordinate("C1"), NewText("=SUM(A1:B2)"))
	_, err = table.DependencyGraph()
	assert.ErrorIs(t, err, ErrUnsupportedComplexRange)
}
