package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func newPaymentService(f *billingFixture) *PaymentService {
	scope := NewNoOpTransactionScope(f.bills, f.payments, f.readings, f.sequence)
	svc := NewPaymentService(f.payments, f.bills, scope, "", nil)
	svc.SetEventPublisher(f.publisher)
	return svc
}

func TestPaymentService_Apply(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		method     string
		reference  string
		wantStatus string
		wantOwed   string
		wantErr    error
	}{
		{name: "partial cash payment", amount: "10.00", method: "Cash", wantStatus: "Partially Paid", wantOwed: "25.00"},
		{name: "full card payment", amount: "35.00", method: "Card", reference: "AUTH-991", wantStatus: "Paid", wantOwed: "0"},
		{name: "overpayment rejected", amount: "35.01", method: "Cash", wantErr: shared.ErrExceedsOutstanding},
		{name: "zero amount rejected", amount: "0", method: "Cash", wantErr: shared.ErrValidation},
		{name: "card without reference", amount: "5", method: "Card", wantErr: shared.ErrValidation},
		{name: "sub-cent amount rejected", amount: "1.005", method: "Cash", wantErr: shared.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture(t)
			svc := newPaymentService(f)
			bill := f.newBill(t, f.billDate.AddDate(0, 0, 15))

			f.bills.On("FindByID", f.ctx, bill.ID).Return(bill, nil)
			f.bills.On("SaveWithLock", f.ctx, bill).Return(nil)
			f.payments.On("Save", f.ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
			f.publisher.On("Publish", f.ctx, mock.Anything).Return(nil)

			result, err := svc.Apply(f.ctx, ApplyPaymentRequest{
				BillID:          bill.ID,
				Amount:          dec(tt.amount),
				Method:          tt.method,
				ReferenceNumber: tt.reference,
				RecordedBy:      "cashier1",
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.bills.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
				f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Bill.Status)
			assert.True(t, result.Bill.OutstandingAmount.Equal(dec(tt.wantOwed)), "outstanding %s", result.Bill.OutstandingAmount)
			assert.True(t, result.Payment.Amount.Equal(dec(tt.amount)))
			assert.Equal(t, "Completed", result.Payment.Status)
			assert.Equal(t, "cashier1", result.Payment.RecordedBy)
			assert.Equal(t, bill.CustomerID, result.Payment.CustomerID)
			f.publisher.AssertNumberOfCalls(t, "Publish", 1)
		})
	}
}

func TestPaymentService_Apply_RejectsClosedBills(t *testing.T) {
	t.Run("cancelled bill", func(t *testing.T) {
		f := newBillingFixture(t)
		svc := newPaymentService(f)
		bill := f.newBill(t, f.billDate.AddDate(0, 0, 15))
		require.NoError(t, bill.Cancel("meter misread"))
		f.bills.On("FindByID", f.ctx, bill.ID).Return(bill, nil)

		_, err := svc.Apply(f.ctx, ApplyPaymentRequest{BillID: bill.ID, Amount: dec("1"), Method: "Cash"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("paid bill", func(t *testing.T) {
		f := newBillingFixture(t)
		svc := newPaymentService(f)
		bill := f.newBill(t, f.billDate.AddDate(0, 0, 15))
		require.NoError(t, bill.ApplyPayment(bill.TotalAmount, f.billDate))
		f.bills.On("FindByID", f.ctx, bill.ID).Return(bill, nil)

		_, err := svc.Apply(f.ctx, ApplyPaymentRequest{BillID: bill.ID, Amount: dec("1"), Method: "Cash"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestPaymentService_Apply_VersionConflict(t *testing.T) {
	f := newBillingFixture(t)
	svc := newPaymentService(f)
	bill := f.newBill(t, f.billDate.AddDate(0, 0, 15))

	f.bills.On("FindByID", f.ctx, bill.ID).Return(bill, nil)
	f.bills.On("SaveWithLock", f.ctx, bill).Return(shared.ErrConcurrencyConflict)

	_, err := svc.Apply(f.ctx, ApplyPaymentRequest{BillID: bill.ID, Amount: dec("5"), Method: "Cash"})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPaymentService_Refund(t *testing.T) {
	f := newBillingFixture(t)
	svc := newPaymentService(f)
	bill := f.newBill(t, time.Now().UTC().AddDate(0, 1, 0))

	payment, err := billing.NewPayment(bill, dec("10"), billing.PaymentMethodCash, "", f.billDate, "cashier1", "")
	require.NoError(t, err)
	require.NoError(t, bill.ApplyPayment(dec("10"), f.billDate))
	require.Equal(t, billing.BillStatusPartiallyPaid, bill.Status)

	f.payments.On("FindByID", f.ctx, payment.ID).Return(payment, nil)
	f.bills.On("FindByID", f.ctx, bill.ID).Return(bill, nil)
	f.bills.On("SaveWithLock", f.ctx, bill).Return(nil)
	f.payments.On("SaveWithLock", f.ctx, payment).Return(nil)
	f.publisher.On("Publish", f.ctx, mock.Anything).Return(nil)

	result, err := svc.Refund(f.ctx, payment.ID, RefundPaymentRequest{Reason: "charged twice"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Refunded", result.Payment.Status)
	assert.Equal(t, "admin", result.Payment.RefundedBy)
	assert.Equal(t, "Unpaid", result.Bill.Status)
	assert.True(t, result.Bill.OutstandingAmount.Equal(dec("35.00")))
	assert.True(t, result.Bill.PaidAmount.IsZero())

	t.Run("second refund is rejected", func(t *testing.T) {
		_, err := svc.Refund(f.ctx, payment.ID, RefundPaymentRequest{Reason: "again"}, "admin")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestPaymentService_Verify(t *testing.T) {
	f := newBillingFixture(t)
	svc := newPaymentService(f)
	bill := f.newBill(t, f.billDate.AddDate(0, 0, 15))
	payment, err := billing.NewPayment(bill, dec("10"), billing.PaymentMethodOnline, "TX-1", f.billDate, "cashier1", "")
	require.NoError(t, err)

	f.payments.On("FindByID", f.ctx, payment.ID).Return(payment, nil)
	f.payments.On("SaveWithLock", f.ctx, payment).Return(nil)

	resp, err := svc.Verify(f.ctx, payment.ID, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, "Verified", resp.Status)
	assert.Equal(t, "supervisor", resp.VerifiedBy)

	_, err = svc.Verify(f.ctx, payment.ID, "supervisor")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	t.Run("payment changed underneath", func(t *testing.T) {
		raced, err := billing.NewPayment(bill, dec("5"), billing.PaymentMethodCash, "", f.billDate, "cashier1", "")
		require.NoError(t, err)
		f.payments.On("FindByID", f.ctx, raced.ID).Return(raced, nil)
		f.payments.On("SaveWithLock", f.ctx, raced).Return(shared.ErrConcurrencyConflict)

		_, err = svc.Verify(f.ctx, raced.ID, "supervisor")
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestPaymentService_ListByBill_UnknownBill(t *testing.T) {
	f := newBillingFixture(t)
	svc := newPaymentService(f)
	bill := f.newBill(t, f.billDate.AddDate(0, 0, 15))
	f.bills.On("FindByID", f.ctx, bill.ID).Return(nil, shared.ErrNotFound)

	_, err := svc.ListByBill(f.ctx, bill.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.payments.AssertNotCalled(t, "FindByBill", mock.Anything, mock.Anything)
}
