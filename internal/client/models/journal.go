// Package models defines client-only records: private journal pages and
// their encrypted storage form.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mood is how the user felt when writing a journal page.
type Mood string

const (
	MoodGreat   Mood = "great"
	MoodGood    Mood = "good"
	MoodNeutral Mood = "neutral"
	MoodBad     Mood = "bad"
	MoodAwful   Mood = "awful"
)

// Moods lists the accepted moods from best to worst.
func Moods() []Mood {
	return []Mood{MoodGreat, MoodGood, MoodNeutral, MoodBad, MoodAwful}
}

func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return MoodNeutral, nil
	}
	for _, known := range Moods() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q", s)
}

var ErrEmptyJournalTitle = errors.New("journal title must not be empty")

// JournalOverview is the part of a page shown in listings.
type JournalOverview struct {
	Title string `json:"title"`
	Mood  Mood   `json:"mood"`
}

// JournalDetails is the body of a page, decrypted only on demand.
type JournalDetails struct {
	Content string `json:"content"`
}

// JournalEntry is a decrypted page.
type JournalEntry struct {
	ID        string
	CreatedAt time.Time
	JournalOverview
	JournalDetails
}

func (e *JournalEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyJournalTitle
	}
	_, err := ParseMood(string(e.Mood))
	return err
}

// JournalRecord is the stored form: overview and details sealed separately
// so listings never decrypt page bodies.
type JournalRecord struct {
	ID            string
	UserID        string
	Overview      []byte
	NonceOverview []byte
	Details       []byte
	NonceDetails  []byte
	CreatedAt     time.Time
	Deleted       bool
}
