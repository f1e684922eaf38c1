package models

import "time"

// EntityPatch is a partial update of an entity. Nil fields are left alone.
type EntityPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	EnergyValue *int64  `json:"energyValue,omitempty"`
	// Resolved=false clears ResolvedAt; it is only sent to undo a ledger
	// write whose account update failed.
	Resolved   *bool      `json:"resolved,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// Apply mutates e in place.
func (p EntityPatch) Apply(e *Entity) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.EnergyValue != nil {
		e.EnergyValue = *p.EnergyValue
	}
	if p.Resolved != nil {
		e.Resolved = *p.Resolved
		if !e.Resolved {
			e.ResolvedAt = nil
		}
	}
	if p.ResolvedAt != nil && e.Resolved {
		t := *p.ResolvedAt
		e.ResolvedAt = &t
	}
}

func (p EntityPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.EnergyValue == nil &&
		p.Resolved == nil && p.ResolvedAt == nil
}

// ResolvePatch marks an entity resolved at t.
func ResolvePatch(t time.Time) EntityPatch {
	resolved := true
	at := t.UTC()
	return EntityPatch{Resolved: &resolved, ResolvedAt: &at}
}

// UnresolvePatch reverts ResolvePatch.
func UnresolvePatch() EntityPatch {
	resolved := false
	return EntityPatch{Resolved: &resolved}
}

// AccountPatch is a partial update of an account. Counters carry absolute
// values, not deltas.
type AccountPatch struct {
	DisplayName       *string `json:"displayName,omitempty"`
	Energy            *int64  `json:"energy,omitempty"`
	TotalEnergyEarned *int64  `json:"totalEnergyEarned,omitempty"`
	CompletedMissions *int64  `json:"completedMissions,omitempty"`
	RedeemedRewards   *int64  `json:"redeemedRewards,omitempty"`
}

// Apply mutates a in place. Callers validate afterwards.
func (p AccountPatch) Apply(a *Account) {
	if p.DisplayName != nil {
		a.DisplayName = *p.DisplayName
	}
	if p.Energy != nil {
		a.Energy = *p.Energy
	}
	if p.TotalEnergyEarned != nil {
		a.TotalEnergyEarned = *p.TotalEnergyEarned
	}
	if p.CompletedMissions != nil {
		a.CompletedMissions = *p.CompletedMissions
	}
	if p.RedeemedRewards != nil {
		a.RedeemedRewards = *p.RedeemedRewards
	}
}

// Diff returns the patch that turns from into to.
func Diff(from, to *Account) AccountPatch {
	var p AccountPatch
	if from.DisplayName != to.DisplayName {
		p.DisplayName = ptr(to.DisplayName)
	}
	if from.Energy != to.Energy {
		p.Energy = ptr(to.Energy)
	}
	if from.TotalEnergyEarned != to.TotalEnergyEarned {
		p.TotalEnergyEarned = ptr(to.TotalEnergyEarned)
	}
	if from.CompletedMissions != to.CompletedMissions {
		p.CompletedMissions = ptr(to.CompletedMissions)
	}
	if from.RedeemedRewards != to.RedeemedRewards {
		p.RedeemedRewards = ptr(to.RedeemedRewards)
	}
	return p
}

func (p AccountPatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Energy == nil && p.TotalEnergyEarned == nil &&
		p.CompletedMissions == nil && p.RedeemedRewards == nil
}

func ptr[T any](v T) *T { return &v }
