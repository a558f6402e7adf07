package usecase

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

// Directory is the registry of users. It resolves logins and mediates transfers
// between wallets. It performs no I/O.
type Directory struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		users: make(map[string]*domain.User),
	}
}

// Register creates a user with an empty wallet.
func (d *Directory) Register(login, secret string) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[login]; ok {
		return nil, domain.ErrDuplicateLogin
	}

	if err := domain.ValidateLogin(login); err != nil {
		return nil, err
	}

	if err := domain.ValidateSecret(secret); err != nil {
		return nil, err
	}

	user, err := domain.NewUser(login, secret)
	if err != nil {
		return nil, err
	}

	d.users[login] = user

	return user, nil
}

// Restore adds a previously persisted user.
func (d *Directory) Restore(credential domain.Credential) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[credential.Login]; ok {
		return nil, domain.ErrDuplicateLogin
	}

	user := domain.RestoreUser(credential.Login, credential.SecretHash)
	d.users[credential.Login] = user

	return user, nil
}

// Authenticate resolves login and checks the secret. Unknown logins and wrong secrets
// fail identically.
func (d *Directory) Authenticate(login, secret string) (*domain.User, error) {
	d.mu.Lock()
	user, ok := d.users[login]
	d.mu.Unlock()

	if !ok || !user.ValidateCredential(secret) {
		return nil, domain.ErrUnauthorized
	}

	return user, nil
}

// Lookup resolves login without a credential check.
func (d *Directory) Lookup(login string) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[login]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	return user, nil
}

// Logins returns every registered login, sorted.
func (d *Directory) Logins() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	logins := make([]string, 0, len(d.users))
	for login := range d.users {
		logins = append(logins, login)
	}
	sort.Strings(logins)

	return logins
}

// TransferResult holds the two linked operations of a transfer.
type TransferResult struct {
	Sender    *domain.User
	Recipient *domain.User
	Outgoing  domain.Operation
	Incoming  domain.Operation
}

// Transfer moves amount from sender to the user registered as toLogin.
// All preconditions are checked before either wallet is touched.
func (d *Directory) Transfer(sender *domain.User, toLogin string, amount decimal.Decimal) (*TransferResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// 0. Validate inputs before touching any wallet
	if toLogin == sender.Login {
		return nil, domain.ErrSelfTransfer
	}

	recipient, ok := d.users[toLogin]
	if !ok {
		return nil, domain.ErrRecipientNotFound
	}

	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if sender.Wallet().Balance().LessThan(amount) {
		return nil, domain.ErrInsufficientFunds
	}

	// 1. Build both operations so nothing can fail after the first append
	outgoing, err := domain.NewOperation(domain.TransferOutCategory(recipient.Login), amount)
	if err != nil {
		return nil, err
	}

	incoming, err := domain.NewOperation(domain.TransferInCategory(sender.Login), amount)
	if err != nil {
		return nil, err
	}

	// 2. Apply
	if err := sender.Wallet().AddOperation(outgoing); err != nil {
		return nil, err
	}

	if err := recipient.Wallet().AddOperation(incoming); err != nil {
		return nil, err
	}

	return &TransferResult{
		Sender:    sender,
		Recipient: recipient,
		Outgoing:  outgoing,
		Incoming:  incoming,
	}, nil
}
