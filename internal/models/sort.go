package models

import (
	"cmp"
	"slices"
)

// SortForDisplay orders entities in place: pending before resolved, then by
// energy value, then by creation time.
func SortForDisplay(es []Entity) {
	slices.SortStableFunc(es, func(a, b Entity) int {
		if a.Resolved != b.Resolved {
			if a.Resolved {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(a.EnergyValue, b.EnergyValue); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// IndexOf returns the position of the entity with id, or -1.
func IndexOf(es []Entity, id string) int {
	return slices.IndexFunc(es, func(e Entity) bool { return e.ID == id })
}
