package models

import (
	"errors"
	"time"
)

// Account is a user's ledger: spendable energy plus monotonic counters.
type Account struct {
	ID                string    `json:"id"`
	DisplayName       string    `json:"displayName,omitempty"`
	Energy            int64     `json:"energy"`
	TotalEnergyEarned int64     `json:"totalEnergyEarned"`
	CompletedMissions int64     `json:"completedMissions"`
	RedeemedRewards   int64     `json:"redeemedRewards"`
	RegisteredAt      time.Time `json:"registeredAt"`
}

var errNegativeEnergy = errors.New("energy must not be negative")

// NewAccount returns the account created at registration: zero energy.
func NewAccount(userID, displayName string, now time.Time) *Account {
	return &Account{ID: userID, DisplayName: displayName, RegisteredAt: now.UTC()}
}

func (a *Account) Validate() error {
	if a.Energy < 0 {
		return errNegativeEnergy
	}
	return nil
}

// Clone returns a copy of a; nil stays nil.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
