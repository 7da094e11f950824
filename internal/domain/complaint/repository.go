package complaint

import (
	"context"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// ComplaintRepository defines the interface for complaint persistence
type ComplaintRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)

	// FindAll finds complaints matching the filter.
	// Search matches number, subject and description.
	// Supported filter keys: "status", "priority", "type", "customer_id".
	FindAll(ctx context.Context, filter shared.Filter) ([]Complaint, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, complaint *Complaint) error
	Delete(ctx context.Context, id uuid.UUID) error
}
