package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/complaint"
	"github.com/utilitrack/backend/internal/domain/identity"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func TestGormComplaintRepository(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewGormComplaintRepository(db)

	billingIssue, err := complaint.NewComplaint(f.customer.ID, complaint.TypeBilling, complaint.PriorityHigh, "Wrong amount", "Bill for July looks doubled")
	require.NoError(t, err)
	require.NoError(t, repo.Save(f.ctx, billingIssue))
	outage, err := complaint.NewComplaint(f.customer.ID, complaint.TypeSupply, complaint.PriorityUrgent, "Outage", "No water since Monday")
	require.NoError(t, err)
	require.NoError(t, repo.Save(f.ctx, outage))

	t.Run("search covers subject and description", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "water"
		list, err := repo.FindAll(f.ctx, filter)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, outage.ID, list[0].ID)
	})

	t.Run("filter by type and priority", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["type"] = string(complaint.TypeBilling)
		filter.Filters["priority"] = string(complaint.PriorityHigh)
		count, err := repo.Count(f.ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("assignment persists", func(t *testing.T) {
		require.NoError(t, outage.Assign("field-team"))
		require.NoError(t, repo.Save(f.ctx, outage))
		reloaded, err := repo.FindByID(f.ctx, outage.ID)
		require.NoError(t, err)
		assert.Equal(t, complaint.StatusInProgress, reloaded.Status)
		assert.Equal(t, "field-team", reloaded.AssignedTo)
		assert.NotNil(t, reloaded.AssignedAt)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(f.ctx, billingIssue.ID))
		_, err := repo.FindByID(f.ctx, billingIssue.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	f := newFixtures(t, db)

	u, err := identity.NewUser("Cashier.One", "s3cret-pass", "Cashier One", identity.RoleCashier)
	require.NoError(t, err)
	require.NoError(t, repo.Save(f.ctx, u))

	found, err := repo.FindByUsername(f.ctx, "CASHIER.ONE")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.VerifyPassword("s3cret-pass"))

	exists, err := repo.ExistsByUsername(f.ctx, "cashier.one")
	require.NoError(t, err)
	assert.True(t, exists)

	dup, err := identity.NewUser("cashier.one", "another-pass1", "", identity.RoleStaff)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(f.ctx, dup), shared.ErrAlreadyExists)
}
