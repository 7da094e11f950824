package billing

import (
	"context"

	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/metering"
)

// TransactionScope provides transactional access to the billing repositories.
// Every repository handed to fn shares one database transaction, committed when fn
// returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories that take part in bill generation
// and payment application.
//
// Readings is included because marking a reading processed is the guard that keeps a
// reading from being billed twice, and it must commit together with the bill insert.
type TransactionalRepositories interface {
	// Bills returns the bill repository scoped to the current transaction
	Bills() billing.BillRepository
	// Payments returns the payment repository scoped to the current transaction
	Payments() billing.PaymentRepository
	// Readings returns the reading repository scoped to the current transaction
	Readings() metering.ReadingRepository
	// Sequence returns the bill number sequence scoped to the current transaction
	Sequence() billing.BillSequence
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// It is meant for unit tests.
type NoOpTransactionScope struct {
	bills    billing.BillRepository
	payments billing.PaymentRepository
	readings metering.ReadingRepository
	sequence billing.BillSequence
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	bills billing.BillRepository,
	payments billing.PaymentRepository,
	readings metering.ReadingRepository,
	sequence billing.BillSequence,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		bills:    bills,
		payments: payments,
		readings: readings,
		sequence: sequence,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Bills returns the bill repository.
func (s *NoOpTransactionScope) Bills() billing.BillRepository {
	return s.bills
}

// Payments returns the payment repository.
func (s *NoOpTransactionScope) Payments() billing.PaymentRepository {
	return s.payments
}

// Readings returns the reading repository.
func (s *NoOpTransactionScope) Readings() metering.ReadingRepository {
	return s.readings
}

// Sequence returns the bill number sequence.
func (s *NoOpTransactionScope) Sequence() billing.BillSequence {
	return s.sequence
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
