package domain

// OperationKind tells whether an operation adds to or takes from the balance.
type OperationKind string

const (
	KindIncome  OperationKind = "income"
	KindExpense OperationKind = "expense"
)

// Valid reports whether k is a known kind.
func (k OperationKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Category groups operations. It is comparable and used directly as a map key:
// two categories are equal iff name and kind match exactly.
type Category struct {
	Name string
	Kind OperationKind
}

// NewCategory validates the name and kind and returns the category.
func NewCategory(name string, kind OperationKind) (Category, error) {
	if err := ValidateCategoryName(name); err != nil {
		return Category{}, err
	}
	if !kind.Valid() {
		return Category{}, ErrInvalidKind
	}
	return Category{Name: name, Kind: kind}, nil
}

// Income is shorthand for an income category.
func Income(name string) Category {
	return Category{Name: name, Kind: KindIncome}
}

// Expense is shorthand for an expense category.
func Expense(name string) Category {
	return Category{Name: name, Kind: KindExpense}
}

func (c Category) String() string {
	return c.Name
}

// TransferOutCategory is the synthetic expense category recorded on the sender.
func TransferOutCategory(recipient string) Category {
	return Expense("transfer to " + recipient)
}

// TransferInCategory is the synthetic income category recorded on the recipient.
func TransferInCategory(sender string) Category {
	return Income("transfer from " + sender)
}
