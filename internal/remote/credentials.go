package remote

import (
	"encoding/json"
	"os"
	"time"
)

// Credential is a bearer credential for the authenticated sidecar
// transport. The engine trusts whatever it is handed; enforcement
// happens server-side.
type Credential struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at,omitempty"` // epoch seconds, 0 = no expiry
}

// Expired reports whether the credential is past its expiry.
func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != 0 && c.ExpiresAt < now.Unix()
}

// CredentialProvider supplies the current session credential, if any.
//
// Injecting the provider keeps the resolver free of ambient session
// scans and independently testable.
type CredentialProvider interface {
	// Credential returns the active credential. ok is false when no
	// usable (present, unexpired) credential exists.
	Credential() (Credential, bool)
}

// SessionFileProvider reads the credential from a JSON session file
// written by the hosting environment.
type SessionFileProvider struct {
	Path string
}

// Credential implements CredentialProvider. Any read or parse failure
// counts as "no credential"; the transport chain degrades instead of
// erroring.
func (p *SessionFileProvider) Credential() (Credential, bool) {
	if p.Path == "" {
		return Credential{}, false
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return Credential{}, false
	}
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, false
	}
	if cred.AccessToken == "" || cred.Expired(time.Now()) {
		return Credential{}, false
	}
	return cred, true
}

// StaticProvider returns a fixed credential, for tests and for
// deployments that inject the token directly.
type StaticProvider struct {
	Token string
}

// Credential implements CredentialProvider.
func (p *StaticProvider) Credential() (Credential, bool) {
	if p.Token == "" {
		return Credential{}, false
	}
	return Credential{AccessToken: p.Token}, true
}
