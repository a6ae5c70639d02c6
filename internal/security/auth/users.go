package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Credential is a local identity the dev issuer can authenticate.
type Credential struct {
	Email        string
	Name         string
	PasswordHash string
}

// CredentialStore backs the local token issuer used when IDP_MODE=local.
// Production deployments verify the external provider's tokens instead and
// never construct this store.
type CredentialStore struct {
	mu   sync.RWMutex
	byEM map[string]*Credential
}

// NewCredentialStore creates a store seeded with development identities.
func NewCredentialStore() *CredentialStore {
	store := &CredentialStore{byEM: make(map[string]*Credential)}

	store.Add("demo@example.com", "Demo Resident", "demo1234")
	store.Add("admin@example.com", "Building Admin", "admin1234")

	return store
}

// Add registers an identity with a bcrypt-hashed password.
func (cs *CredentialStore) Add(email, name, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.byEM[email] = &Credential{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
}

// Authenticate verifies credentials and returns the identity.
func (cs *CredentialStore) Authenticate(email, password string) (*Credential, error) {
	cs.mu.RLock()
	cred, exists := cs.byEM[email]
	cs.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("identity not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid password")
	}

	return cred, nil
}
