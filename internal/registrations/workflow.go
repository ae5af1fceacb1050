package registrations

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recepoint/backend/internal/models"
)

// MarathonGetter loads the marathon a submission references.
type MarathonGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Marathon, error)
}

// SubmitStore persists a registration together with the counter increment.
// It returns ErrDuplicate when the (marathon, email) pair already exists.
type SubmitStore interface {
	Submit(ctx context.Context, reg *models.Registration) error
}

// SubmitInput is the data for one registration submission.
type SubmitInput struct {
	MarathonID     uuid.UUID
	Email          string
	FirstName      string
	LastName       string
	ContactNo      string
	AdditionalInfo string
}

// Workflow is the registration-submission workflow: it resolves the target
// marathon, denormalizes its title and start date onto the record, and hands
// the insert plus counter increment to the store as one atomic step.
type Workflow struct {
	store     SubmitStore
	marathons MarathonGetter
	logger    *zap.Logger
}

// NewWorkflow creates a registration workflow.
func NewWorkflow(store SubmitStore, marathons MarathonGetter, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{store: store, marathons: marathons, logger: logger}
}

// Submit registers in.Email for the referenced marathon. It returns
// ErrDuplicate if a registration for the (email, marathon) pair already
// exists, or the marathon store's not-found error when the marathon is gone.
func (w *Workflow) Submit(ctx context.Context, in SubmitInput) (*models.Registration, error) {
	m, err := w.marathons.GetByID(ctx, in.MarathonID)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		MarathonID:     m.ID,
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		ContactNo:      in.ContactNo,
		AdditionalInfo: in.AdditionalInfo,
		MarathonTitle:  m.Title,
		MarathonStart:  m.MarathonStart,
	}
	if err := w.store.Submit(ctx, reg); err != nil {
		return nil, err
	}
	w.logger.Info("registration submitted",
		zap.String("marathon_id", m.ID.String()),
		zap.String("email", in.Email),
	)
	return reg, nil
}
