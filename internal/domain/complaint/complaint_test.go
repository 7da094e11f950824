package complaint

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func newComplaint(t *testing.T) *Complaint {
	t.Helper()
	c, err := NewComplaint(uuid.New(), TypeBilling, "", "Bill too high", "September bill doubled")
	require.NoError(t, err)
	return c
}

func TestNewComplaint(t *testing.T) {
	c := newComplaint(t)
	assert.Equal(t, StatusOpen, c.Status)
	assert.Equal(t, PriorityMedium, c.Priority)
	assert.Regexp(t, `^CMP-\d{6}-[0-9A-F]{6}$`, c.ComplaintNumber)

	_, err := NewComplaint(uuid.New(), Type("Noise"), PriorityLow, "x", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = NewComplaint(uuid.New(), TypeMeter, PriorityLow, "  ", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = NewComplaint(uuid.Nil, TypeMeter, PriorityLow, "x", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestComplaint_Workflow(t *testing.T) {
	c := newComplaint(t)

	require.NoError(t, c.Assign("tech.ahmed"))
	assert.Equal(t, StatusInProgress, c.Status)
	assert.Equal(t, "tech.ahmed", c.AssignedTo)

	assert.ErrorIs(t, c.Resolve(""), shared.ErrValidation)
	require.NoError(t, c.Resolve("Meter re-read; bill reissued"))
	assert.Equal(t, StatusResolved, c.Status)
	assert.NotNil(t, c.ResolvedAt)

	assert.ErrorIs(t, c.Assign("someone"), shared.ErrInvalidState)

	require.NoError(t, c.ChangeStatus(StatusClosed))
	assert.ErrorIs(t, c.ChangeStatus(StatusOpen), shared.ErrInvalidState)
	assert.ErrorIs(t, c.Update(TypeBilling, PriorityHigh, "edit", ""), shared.ErrInvalidState)
}

func TestComplaint_Transitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusRejected, true},
		{StatusOpen, StatusClosed, false},
		{StatusInProgress, StatusResolved, true},
		{StatusResolved, StatusInProgress, true},
		{StatusResolved, StatusClosed, true},
		{StatusRejected, StatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}
