package ports

import (
	"context"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// TrustUpdate is a conditional write of an account's trust fields. It applies
// only when the stored version still equals ExpectedVersion.
type TrustUpdate struct {
	AccountID       string
	ExpectedVersion int64
	Score           float64
	ReviewCount     int
	Entry           domain.TrustHistoryEntry
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
	// UpdateTrust returns domain.ErrPersistenceConflict when the version moved.
	UpdateTrust(ctx context.Context, update TrustUpdate) error
	SetStatus(ctx context.Context, id string, status domain.AccountStatus) error
	RecordLogin(ctx context.Context, id string) error
}
