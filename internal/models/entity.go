package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Entity is a mission or a reward. The two kinds share one shape; Kind tells
// them apart and decides the document field names used on the wire.
type Entity struct {
	ID          string
	Kind        Kind
	Title       string
	Description string
	// EnergyValue is the reward of a mission or the cost of a reward.
	EnergyValue int64
	// Resolved is "completed" for missions and "redeemed" for rewards.
	// It only ever goes from false to true.
	Resolved   bool
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

var (
	errEmptyTitle       = errors.New("title must not be empty")
	errEmptyDescription = errors.New("description must not be empty")
	errEnergyValue      = errors.New("energy value must be positive")
	errResolvedAt       = errors.New("resolvedAt must be set iff resolved")
)

// Validate checks the fields a user can set plus the resolved/resolvedAt pairing.
func (e *Entity) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	if strings.TrimSpace(e.Title) == "" {
		return errEmptyTitle
	}
	if strings.TrimSpace(e.Description) == "" {
		return errEmptyDescription
	}
	if e.EnergyValue <= 0 {
		return errEnergyValue
	}
	if e.Resolved != (e.ResolvedAt != nil) {
		return errResolvedAt
	}
	return nil
}

// Resolve marks the entity resolved at now. It reports false, and changes
// nothing, when the entity was already resolved.
func (e *Entity) Resolve(now time.Time) bool {
	if e.Resolved {
		return false
	}
	t := now.UTC()
	e.Resolved = true
	e.ResolvedAt = &t
	return true
}

// Clone returns a copy that shares no pointers with e.
func (e Entity) Clone() Entity {
	if e.ResolvedAt != nil {
		t := *e.ResolvedAt
		e.ResolvedAt = &t
	}
	return e
}

// CloneEntities copies a list; nil in gives an empty non-nil slice out.
func CloneEntities(in []Entity) []Entity {
	out := make([]Entity, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

type entityDocument struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	EnergyRwd   *int64     `json:"energyReward,omitempty"`
	EnergyCost  *int64     `json:"energyCost,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Redeemed    *bool      `json:"redeemed,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RedeemedAt  *time.Time `json:"redeemedAt,omitempty"`
}

// MarshalJSON writes the kind-specific document shape, e.g.
// {"kind":"mission","energyReward":3,"completed":false,...}.
func (e Entity) MarshalJSON() ([]byte, error) {
	doc := entityDocument{
		ID:          e.ID,
		Kind:        e.Kind,
		Title:       e.Title,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
	value, resolved := e.EnergyValue, e.Resolved

	switch e.Kind {
	case KindMission:
		doc.EnergyRwd, doc.Completed, doc.CompletedAt = &value, &resolved, e.ResolvedAt
	case KindReward:
		doc.EnergyCost, doc.Redeemed, doc.RedeemedAt = &value, &resolved, e.ResolvedAt
	default:
		return nil, fmt.Errorf("marshal entity: unknown kind %q", e.Kind)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads the document shape written by MarshalJSON. A missing
// "kind" is inferred from which energy field is present.
func (e *Entity) UnmarshalJSON(b []byte) error {
	var doc entityDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	kind := doc.Kind
	if kind == "" {
		switch {
		case doc.EnergyRwd != nil:
			kind = KindMission
		case doc.EnergyCost != nil:
			kind = KindReward
		}
	}

	*e = Entity{
		ID:          doc.ID,
		Kind:        kind,
		Title:       doc.Title,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
	}

	switch kind {
	case KindMission:
		e.EnergyValue = deref(doc.EnergyRwd)
		e.Resolved = deref(doc.Completed)
		e.ResolvedAt = doc.CompletedAt
	case KindReward:
		e.EnergyValue = deref(doc.EnergyCost)
		e.Resolved = deref(doc.Redeemed)
		e.ResolvedAt = doc.RedeemedAt
	default:
		return fmt.Errorf("unmarshal entity: unknown kind %q", kind)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
