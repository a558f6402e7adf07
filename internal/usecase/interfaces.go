package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

// SnapshotStore persists user snapshots.
type SnapshotStore interface {
	// Load returns the snapshot saved for login, or domain.ErrSnapshotNotFound.
	Load(ctx context.Context, login string) (*domain.Snapshot, error)
	// Save replaces whatever is stored for snapshot.Login.
	Save(ctx context.Context, snapshot *domain.Snapshot) error
	// ListCredentials returns the identity of every stored user.
	ListCredentials(ctx context.Context) ([]domain.Credential, error)
}

// Metrics records session-level events.
type Metrics interface {
	OperationRecorded(kind domain.OperationKind, amount decimal.Decimal)
	BudgetExceeded()
	TransferCompleted(amount decimal.Decimal)
	TransferFailed(reason string)
	AuthAttempt(success bool)
	PersistenceFailed(operation string)
}

type nopMetrics struct{}

func (nopMetrics) OperationRecorded(domain.OperationKind, decimal.Decimal) {}
func (nopMetrics) BudgetExceeded()                                      {}
func (nopMetrics) TransferCompleted(decimal.Decimal)                    {}
func (nopMetrics) TransferFailed(string)                                {}
func (nopMetrics) AuthAttempt(bool)                                     {}
func (nopMetrics) PersistenceFailed(string)                             {}
