package model

import (
	"time"

	"github.com/google/uuid"
)

// Partner is a merchant integrated through an API key / secret key pair.
// SecretKey holds the encrypted secret; the plaintext is shown once at creation.
type Partner struct {
	ID           int64
	Name         string
	PasswordHash string
	APIKey       uuid.UUID
	SecretKey    string
	IsValid      bool
	IsFirstParty bool
	CreatedAt    time.Time
}

func (p *Partner) IsZero() bool { return p == nil || p.ID == 0 }
