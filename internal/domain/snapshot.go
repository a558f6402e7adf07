package domain

import "sort"

// Snapshot is the persistence unit of a user: identity, operation log in order and
// budgets. Stores must round-trip it without losing amount precision, category
// identity or operation order.
type Snapshot struct {
	Login      string
	SecretHash string
	Operations []Operation
	Budgets    []Budget
}

// Credential returns the identity part of the snapshot.
func (s *Snapshot) Credential() Credential {
	return Credential{Login: s.Login, SecretHash: s.SecretHash}
}

// Apply merges the snapshot's wallet data into u's wallet.
func (s *Snapshot) Apply(u *User) error {
	return u.Wallet().Merge(s.Operations, s.Budgets)
}

func sortBudgets(budgets []Budget) {
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].Category.Name < budgets[j].Category.Name
	})
}
