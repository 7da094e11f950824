package persistence

import (
	"context"

	appbilling "github.com/utilitrack/backend/internal/application/billing"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/metering"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of the bill, payment and reading writes.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Bills returns the bill repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Bills() billing.BillRepository {
	return NewGormBillRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Readings returns the reading repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Readings() metering.ReadingRepository {
	return NewGormReadingRepository(r.tx)
}

// Sequence returns the bill number sequence scoped to the current transaction.
func (r *gormTransactionalRepositories) Sequence() billing.BillSequence {
	return NewGormBillSequence(r.tx)
}

var _ appbilling.TransactionScope = (*GormTransactionScope)(nil)

var _ appbilling.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
