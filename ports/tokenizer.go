package ports

import (
	"time"

	"github.com/chaincampus/warden/core"
)

// Claims is the decoded content of a session credential.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
	Scope     string
}

// Tokenizer encodes identities into signed session credentials and decodes
// them back. Decode checks the signature and the effective validity window:
// the stated expiry normally, issuedAt plus the refreshable duration when
// refresh is true. It does not consult the denylist; that is the caller's
// job.
type Tokenizer interface {
	Encode(identity core.Identity) (string, error)
	Decode(token string, refresh bool) (Claims, error)
}
