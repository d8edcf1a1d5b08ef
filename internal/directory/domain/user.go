package domain

import "time"

// User is the authoritative identity record. Tokens embed a snapshot of
// username/email/roles at mint time; this record is what the snapshot is
// cross-checked against during verification.
type User struct {
	ID           string // UUID
	Username     string
	Email        string
	PasswordHash string // argon2id PHC encoded
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
