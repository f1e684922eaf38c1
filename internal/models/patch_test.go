package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntityPatch_Apply(t *testing.T) {
	e := mission()
	title := "Run far"
	energy := int64(7)

	EntityPatch{Title: &title, EnergyValue: &energy}.Apply(&e)
	assert.Equal(t, "Run far", e.Title)
	assert.EqualValues(t, 7, e.EnergyValue)
	assert.Equal(t, "5km", e.Description)

	ResolvePatch(t0).Apply(&e)
	assert.True(t, e.Resolved)
	assert.Equal(t, t0, *e.ResolvedAt)
	assert.NoError(t, e.Validate())

	UnresolvePatch().Apply(&e)
	assert.False(t, e.Resolved)
	assert.Nil(t, e.ResolvedAt)
	assert.NoError(t, e.Validate())
}

func TestEntityPatch_ResolvedAtIgnoredWhilePending(t *testing.T) {
	e := mission()
	at := t0.Add(time.Minute)
	EntityPatch{ResolvedAt: &at}.Apply(&e)
	assert.Nil(t, e.ResolvedAt)
}

func TestEntityPatch_IsEmpty(t *testing.T) {
	assert.True(t, EntityPatch{}.IsEmpty())
	assert.False(t, ResolvePatch(t0).IsEmpty())
}

func TestAccountPatch_DiffApply(t *testing.T) {
	from := NewAccount("u1", "Ann", t0)
	to := from.Clone()
	to.Energy = 5
	to.TotalEnergyEarned = 5
	to.CompletedMissions = 1

	p := Diff(from, to)
	assert.Nil(t, p.RedeemedRewards)
	assert.Nil(t, p.DisplayName)
	assert.False(t, p.IsEmpty())

	to.Energy = 99 // patch must not alias to
	got := from.Clone()
	p.Apply(got)
	assert.EqualValues(t, 5, got.Energy)
	assert.EqualValues(t, 5, got.TotalEnergyEarned)
	assert.EqualValues(t, 1, got.CompletedMissions)

	assert.True(t, Diff(from, from.Clone()).IsEmpty())
}

func TestAccount_Validate(t *testing.T) {
	a := NewAccount("u1", "", t0)
	assert.NoError(t, a.Validate())
	assert.Zero(t, a.Energy)

	a.Energy = -1
	assert.Error(t, a.Validate())

	var nilAcc *Account
	assert.Nil(t, nilAcc.Clone())
}
