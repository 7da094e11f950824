package complaint_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appcomplaint "github.com/utilitrack/backend/internal/application/complaint"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"github.com/utilitrack/backend/internal/infrastructure/persistence"
)

func setupService(t *testing.T) (*appcomplaint.ComplaintService, uuid.UUID) {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: persistence.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate())

	customers := persistence.NewGormCustomerRepository(db.DB)
	c, err := customer.NewCustomer("Jane Doe", customer.CustomerTypeResidential, "jane@example.com", "", "", "")
	require.NoError(t, err)
	require.NoError(t, customers.Save(context.Background(), c))

	return appcomplaint.NewComplaintService(persistence.NewGormComplaintRepository(db.DB), customers), c.ID
}

func TestComplaintService_Create(t *testing.T) {
	svc, customerID := setupService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, appcomplaint.CreateComplaintRequest{
		CustomerID:    customerID,
		ComplaintType: "Billing",
		Subject:       "Bill too high",
		Description:   "March bill doubled",
	})
	require.NoError(t, err)
	assert.Equal(t, "Open", resp.Status)
	assert.Equal(t, "Medium", resp.Priority)
	assert.Regexp(t, `^CMP-\d{6}-[0-9A-F]{6}$`, resp.ComplaintNumber)

	_, err = svc.Create(ctx, appcomplaint.CreateComplaintRequest{
		CustomerID: uuid.New(), ComplaintType: "Billing", Subject: "Orphan",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Create(ctx, appcomplaint.CreateComplaintRequest{
		CustomerID: customerID, ComplaintType: "Billing", Subject: "   ",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestComplaintService_SearchAndFilter(t *testing.T) {
	svc, customerID := setupService(t)
	ctx := context.Background()

	for _, req := range []appcomplaint.CreateComplaintRequest{
		{CustomerID: customerID, ComplaintType: "Billing", Priority: "High", Subject: "Bill too high"},
		{CustomerID: customerID, ComplaintType: "Supply", Priority: "Urgent", Subject: "No water since Monday"},
		{CustomerID: customerID, ComplaintType: "Meter", Priority: "Low", Subject: "Meter display faded"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	found, total, err := svc.Search(ctx, "water", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Supply", found[0].ComplaintType)

	_, _, err = svc.Search(ctx, "", 1, 20)
	assert.ErrorIs(t, err, shared.ErrValidation)

	urgent, total, err := svc.List(ctx, appcomplaint.ComplaintListFilter{Priority: "Urgent"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "No water since Monday", urgent[0].Subject)

	meter, _, err := svc.List(ctx, appcomplaint.ComplaintListFilter{Type: "Meter"})
	require.NoError(t, err)
	assert.Len(t, meter, 1)

	_, total, err = svc.ListByCustomer(ctx, customerID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, _, err = svc.ListByCustomer(ctx, uuid.New(), 1, 20)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestComplaintService_Lifecycle(t *testing.T) {
	svc, customerID := setupService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, appcomplaint.CreateComplaintRequest{
		CustomerID: customerID, ComplaintType: "Service", Subject: "Rude call centre",
	})
	require.NoError(t, err)

	priority := "High"
	updated, err := svc.Update(ctx, c.ID, appcomplaint.UpdateComplaintRequest{Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, "High", updated.Priority)
	assert.Equal(t, "Rude call centre", updated.Subject)

	assigned, err := svc.Assign(ctx, c.ID, appcomplaint.AssignComplaintRequest{AssignedTo: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "In Progress", assigned.Status)
	assert.Equal(t, "alice", assigned.AssignedTo)
	assert.NotNil(t, assigned.AssignedAt)

	_, err = svc.Resolve(ctx, c.ID, appcomplaint.ResolveComplaintRequest{Resolution: ""})
	assert.ErrorIs(t, err, shared.ErrValidation)

	resolved, err := svc.Resolve(ctx, c.ID, appcomplaint.ResolveComplaintRequest{Resolution: "Apologised"})
	require.NoError(t, err)
	assert.Equal(t, "Resolved", resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	closed, err := svc.ChangeStatus(ctx, c.ID, appcomplaint.UpdateComplaintStatusRequest{Status: "Closed"})
	require.NoError(t, err)
	assert.Equal(t, "Closed", closed.Status)

	_, err = svc.ChangeStatus(ctx, c.ID, appcomplaint.UpdateComplaintStatusRequest{Status: "Open"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.Update(ctx, c.ID, appcomplaint.UpdateComplaintRequest{Priority: &priority})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), shared.ErrNotFound)
}
