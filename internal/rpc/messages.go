package rpc

import (
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Salt        []byte `json:"salt"`
	Verifier    []byte `json:"verifier"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifierCandidate"`
}

type LoginResponse struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ListCollectionRequest struct {
	UserID string      `json:"userId"`
	Kind   models.Kind `json:"kind"`
}

type ListCollectionResponse struct {
	Entities []models.Entity `json:"entities"`
}

type PutEntityRequest struct {
	UserID string        `json:"userId"`
	Kind   models.Kind   `json:"kind"`
	Entity models.Entity `json:"entity"`
}

type UpdateEntityRequest struct {
	UserID string             `json:"userId"`
	Kind   models.Kind        `json:"kind"`
	ID     string             `json:"id"`
	Patch  models.EntityPatch `json:"patch"`
}

type DeleteEntityRequest struct {
	UserID string      `json:"userId"`
	Kind   models.Kind `json:"kind"`
	ID     string      `json:"id"`
}

type GetAccountRequest struct {
	UserID string `json:"userId"`
}

type AccountResponse struct {
	Account models.Account `json:"account"`
}

type UpdateAccountRequest struct {
	UserID string              `json:"userId"`
	Patch  models.AccountPatch `json:"patch"`
}

type PresignBackupRequest struct {
	UserID string `json:"userId"`
}

type PresignBackupResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
