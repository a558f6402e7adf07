package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a registered ledger owner. A user owns exactly one wallet for its lifetime.
type User struct {
	Login      string
	CreatedAt  time.Time
	secretHash string
	wallet     *Wallet
}

// Credential is the persisted identity of a user, without wallet data.
type Credential struct {
	Login      string
	SecretHash string
}

// NewUser creates a user with an empty wallet, hashing the secret.
func NewUser(login, secret string) (*User, error) {
	hash, err := hashSecret(secret)
	if err != nil {
		return nil, err
	}

	return RestoreUser(login, hash), nil
}

// RestoreUser rebuilds a user from a persisted secret hash. The wallet starts empty.
func RestoreUser(login, secretHash string) *User {
	return &User{
		Login:      login,
		CreatedAt:  time.Now().UTC(),
		secretHash: secretHash,
		wallet:     NewWallet(),
	}
}

// Wallet returns the user's wallet.
func (u *User) Wallet() *Wallet {
	return u.wallet
}

// SecretHash returns the stored bcrypt hash.
func (u *User) SecretHash() string {
	return u.secretHash
}

// Credential returns the persisted identity of u.
func (u *User) Credential() Credential {
	return Credential{Login: u.Login, SecretHash: u.secretHash}
}

// ValidateCredential reports whether secret matches the stored hash.
// The comparison runs in constant time.
func (u *User) ValidateCredential(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.secretHash), []byte(secret)) == nil
}

// Snapshot captures everything persisted for u.
func (u *User) Snapshot() *Snapshot {
	budgets := u.wallet.Budgets()

	s := &Snapshot{
		Login:      u.Login,
		SecretHash: u.secretHash,
		Operations: u.wallet.Operations(),
		Budgets:    make([]Budget, 0, len(budgets)),
	}
	for _, b := range budgets {
		s.Budgets = append(s.Budgets, b)
	}
	sortBudgets(s.Budgets)

	return s
}

// hashSecret hashes a secret using bcrypt
var hashSecret = func(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
