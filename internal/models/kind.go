package models

import (
	"fmt"
	"strings"
)

// Kind discriminates the two entity collections a user owns.
type Kind string

const (
	KindMission Kind = "mission"
	KindReward  Kind = "reward"
)

// Kinds lists every known kind in a stable order.
func Kinds() []Kind { return []Kind{KindMission, KindReward} }

func (k Kind) Valid() bool {
	return k == KindMission || k == KindReward
}

func (k Kind) String() string { return string(k) }

// Collection is the plural name used for remote collections and buckets.
func (k Kind) Collection() string { return string(k) + "s" }

// ResolvedWord is the past participle shown for a resolved entity.
func (k Kind) ResolvedWord() string {
	if k == KindReward {
		return "redeemed"
	}
	return "completed"
}

// ParseKind accepts singular or plural, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mission", "missions":
		return KindMission, nil
	case "reward", "rewards":
		return KindReward, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}
