package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	borsch  = Product{ID: "borsch", Name: "Борщ с говядиной", Price: 450, Weight: "350 г"}
	khachap = Product{ID: "khachapuri", Name: "Хачапури по-аджарски", Price: 390}
	morse   = Product{ID: "morse", Name: "Морс клюквенный", Price: 150}
)

func TestStore_AddAggregatesQuantity(t *testing.T) {
	s := NewStore()

	s.Add(borsch)
	s.Add(borsch)
	s.Add(khachap)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Count("borsch"))
	assert.Equal(t, 1, s.Count("khachapuri"))

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.TotalCount)
	assert.Equal(t, 2*450+390, snap.TotalPrice)
}

func TestStore_UnitPriceCapturedOnFirstAdd(t *testing.T) {
	s := NewStore()
	s.Add(borsch)

	repriced := borsch
	repriced.Price = 999
	s.Add(repriced)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 450, lines[0].UnitPrice)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestStore_RemoveLastUnitDeletesLine(t *testing.T) {
	s := NewStore()
	s.Add(borsch)
	s.Add(morse)
	s.Add(morse)

	s.Remove("morse")
	assert.Equal(t, 1, s.Count("morse"))

	s.Remove("morse")
	assert.Equal(t, 0, s.Count("morse"))
	require.Equal(t, 1, s.Len())

	for _, line := range s.Lines() {
		assert.NotEqual(t, "morse", line.ID)
	}
}

func TestStore_UnknownIDIsNoOp(t *testing.T) {
	s := NewStore()
	s.Add(borsch)
	before := s.Snapshot()

	s.Increase("pelmeni")
	s.Remove("pelmeni")

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 0, s.Count("pelmeni"))
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Add(borsch)
	s.Add(khachap)
	s.Increase("borsch")

	s.Clear()

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.TotalCount)
	assert.Equal(t, 0, snap.TotalPrice)
	assert.Empty(t, s.Lines())
}

func TestStore_TotalsNeverDrift(t *testing.T) {
	s := NewStore()

	// Arbitrary mutation sequence; totals must always equal a fresh
	// recomputation over the current lines.
	ops := []func(){
		func() { s.Add(borsch) },
		func() { s.Add(borsch) },
		func() { s.Add(khachap) },
		func() { s.Remove("borsch") },
		func() { s.Increase("khachapuri") },
		func() { s.Add(morse) },
		func() { s.Remove("morse") },
		func() { s.Remove("khachapuri") },
	}

	for _, op := range ops {
		op()

		wantCount, wantPrice := 0, 0
		for _, line := range s.Lines() {
			wantCount += line.Quantity
			wantPrice += line.Quantity * line.UnitPrice
		}

		snap := s.Snapshot()
		require.Equal(t, wantCount, snap.TotalCount)
		require.Equal(t, wantPrice, snap.TotalPrice)
	}
}

func TestStore_LinesPreserveInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Add(morse)
	s.Add(borsch)
	s.Add(khachap)
	s.Add(morse) // bump, must not reorder

	ids := []string{}
	for _, line := range s.Lines() {
		ids = append(ids, line.ID)
	}
	assert.Equal(t, []string{"morse", "borsch", "khachapuri"}, ids)
}

func TestStore_LinesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Add(borsch)

	lines := s.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, s.Count("borsch"))
}

func TestSummarize_EmptyLines(t *testing.T) {
	assert.Equal(t, Snapshot{}, Summarize(nil))
	assert.Equal(t, Snapshot{}, Summarize([]Line{}))
}
