package crud

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore hashes and verifies user passwords. A predefined pepper is appended
// to every password before it is bcrypted; bcrypt embeds a random salt in each hash.
type CredentialStore struct {
	pepper string
	cost   int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewCredentialStore returns a CredentialStore. A cost of 0 means bcrypt.DefaultCost.
func NewCredentialStore(pepper string, cost int) *CredentialStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{
		pepper: pepper,
		cost:   cost,
	}
}

// Hash appends the pepper to the password and bcrypts it.
func (cs *CredentialStore) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password+cs.pepper), cs.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify reports whether password matches hash. bcrypt compares in constant time.
// A malformed hash never matches.
func (cs *CredentialStore) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+cs.pepper)) == nil
}

// VerifyDummy spends the same time as Verify against a real hash, so callers can
// reject unknown usernames as slowly as wrong passwords.
func (cs *CredentialStore) VerifyDummy(password string) {
	cs.dummyOnce.Do(func() {
		cs.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("warbler-dummy-password"), cs.cost)
	})
	_ = bcrypt.CompareHashAndPassword(cs.dummyHash, []byte(password+cs.pepper))
}

// maxPasswordBytes is the longest password (pepper included) bcrypt accepts.
func (cs *CredentialStore) maxPasswordBytes() int {
	return 72 - len(cs.pepper)
}
