package core

import "time"

// Login method tags. Exactly one credential set on an Identity is
// authoritative depending on the tag; the others are cleared at creation
// time to keep lookups unambiguous.
const (
	LoginMethodPassword = "USERNAME_PASSWORD"
	LoginMethodWallet   = "WALLET"
	LoginMethodGoogle   = "GOOGLE"
)

// Role tags.
const (
	RoleUser       = "USER"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// Identity is a platform account. PasswordHash is a bcrypt hash; for wallet
// and federated accounts it holds a hashed random placeholder so the password
// path can never succeed for them.
type Identity struct {
	ID            string
	Username      string
	PasswordHash  string
	Email         string
	WalletAddress string
	LoginMethod   string
	Role          string
	CreatedAt     time.Time
}

// Nonce is a one-time challenge value bound to the wallet address that
// requested it. It carries no expiry; it lives until consumed by a
// successful wallet login.
type Nonce struct {
	ID      string
	Value   string
	Address string
}
