package registrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recepoint/backend/internal/models"
)

var (
	// ErrDuplicate is returned when a registration already exists for the
	// (marathon, email) pair.
	ErrDuplicate = errors.New("duplicate registration")
	// ErrNotFound is returned when no registration exists for the requested id.
	ErrNotFound = errors.New("registration not found")
)

const registrationColumns = `id, marathon_id, email, first_name, last_name,
	contact_no, additional_info, marathon_title, marathon_start, created_at, updated_at`

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Submit inserts a registration and increments the marathon's registration
// counter in one transaction. The unique index on (marathon_id, email) makes
// the duplicate check atomic: exactly one of any set of concurrent
// submissions with the same key wins, the rest get ErrDuplicate with no side
// effects.
func (r *Repository) Submit(ctx context.Context, reg *models.Registration) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertQ = `INSERT INTO registrations (marathon_id, email, first_name, last_name,
			contact_no, additional_info, marathon_title, marathon_start)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (marathon_id, email) DO NOTHING
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, insertQ, reg.MarathonID, reg.Email, reg.FirstName, reg.LastName,
		reg.ContactNo, reg.AdditionalInfo, reg.MarathonTitle, reg.MarathonStart).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	const countQ = `UPDATE marathons
		SET total_registration_count = total_registration_count + 1, updated_at = NOW()
		WHERE id = $1`
	if _, err := tx.Exec(ctx, countQ, reg.MarathonID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID returns a registration by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	err := scanRegistration(r.pool.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id), &reg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListByRegistrant returns registrations for an email, newest first. When
// search is non-empty, only rows whose marathon title contains it
// (case-insensitive) are returned.
func (r *Repository) ListByRegistrant(ctx context.Context, email, search string) ([]models.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE email = $1`
	args := []interface{}{email}
	if search != "" {
		q += ` AND marathon_title ILIKE '%' || $2 || '%'`
		args = append(args, search)
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// Update replaces the editable fields of a registration and returns the
// updated record. The (marathon_id, email) uniqueness key is immutable.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, u models.RegistrationUpdate) (*models.Registration, error) {
	const q = `UPDATE registrations SET first_name = $1, last_name = $2, contact_no = $3,
			additional_info = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + registrationColumns
	var reg models.Registration
	err := scanRegistration(r.pool.QueryRow(ctx, q, u.FirstName, u.LastName, u.ContactNo, u.AdditionalInfo, id), &reg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Delete removes a registration by ID. The marathon counter is not
// decremented.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	return err
}

func scanRegistration(row pgx.Row, reg *models.Registration) error {
	return row.Scan(&reg.ID, &reg.MarathonID, &reg.Email, &reg.FirstName, &reg.LastName,
		&reg.ContactNo, &reg.AdditionalInfo, &reg.MarathonTitle, &reg.MarathonStart,
		&reg.CreatedAt, &reg.UpdatedAt)
}
