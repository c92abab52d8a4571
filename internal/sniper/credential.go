package sniper

import (
	"sync"
	"time"
)

// Credential is the short-lived ForeUP session token. It lives only in
// memory for the duration of one run.
type Credential struct {
	Token    string
	IssuedAt time.Time
}

// CredentialSlot is a single-assignment cell: the pre-release phase writes
// it once and the release phase reads it without blocking.
type CredentialSlot struct {
	once  sync.Once
	ready chan struct{}
	cred  Credential
}

func NewCredentialSlot() *CredentialSlot {
	return &CredentialSlot{ready: make(chan struct{})}
}

// Set fills the slot. Only the first call has any effect; it reports whether
// this call was the one that filled it.
func (s *CredentialSlot) Set(c Credential) bool {
	filled := false
	s.once.Do(func() {
		s.cred = c
		close(s.ready)
		filled = true
	})
	return filled
}

// Get returns the credential without blocking.
func (s *CredentialSlot) Get() (Credential, bool) {
	select {
	case <-s.ready:
		return s.cred, true
	default:
		return Credential{}, false
	}
}
