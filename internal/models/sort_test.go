package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortForDisplay(t *testing.T) {
	at := t0
	es := []Entity{
		{ID: "done", EnergyValue: 1, Resolved: true, ResolvedAt: &at, CreatedAt: t0},
		{ID: "big", EnergyValue: 8, CreatedAt: t0},
		{ID: "small-late", EnergyValue: 2, CreatedAt: t0.Add(time.Hour)},
		{ID: "small-early", EnergyValue: 2, CreatedAt: t0},
	}
	SortForDisplay(es)

	ids := make([]string, len(es))
	for i, e := range es {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"small-early", "small-late", "big", "done"}, ids)

	assert.Equal(t, 2, IndexOf(es, "big"))
	assert.Equal(t, -1, IndexOf(es, "nope"))
}
