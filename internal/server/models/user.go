package models

import "time"

type User struct {
	ID          string
	UserName    string
	DisplayName string
	Salt        []byte
	Verifier    []byte
	CreatedAt   time.Time
}
