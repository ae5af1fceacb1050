package marathons

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recepoint/backend/internal/models"
)

// ErrNotFound is returned when no marathon exists for the requested id.
var ErrNotFound = errors.New("marathon not found")

const marathonColumns = `id, title, image, location, distance, description,
	registration_start, registration_end, marathon_start,
	creator_email, creator_name, total_registration_count, created_at, updated_at`

// Repository handles marathon persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a marathon repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanMarathon(row pgx.Row, m *models.Marathon) error {
	return row.Scan(&m.ID, &m.Title, &m.Image, &m.Location, &m.Distance, &m.Description,
		&m.RegistrationStart, &m.RegistrationEnd, &m.MarathonStart,
		&m.CreatorEmail, &m.CreatorName, &m.TotalRegistrationCount, &m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a new marathon with a zero registration count.
func (r *Repository) Create(ctx context.Context, m *models.Marathon) error {
	const q = `INSERT INTO marathons (title, image, location, distance, description,
			registration_start, registration_end, marathon_start, creator_email, creator_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, total_registration_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.Title, m.Image, m.Location, m.Distance, m.Description,
		m.RegistrationStart, m.RegistrationEnd, m.MarathonStart, m.CreatorEmail, m.CreatorName).
		Scan(&m.ID, &m.TotalRegistrationCount, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a marathon by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Marathon, error) {
	var m models.Marathon
	err := scanMarathon(r.pool.QueryRow(ctx, `SELECT `+marathonColumns+` FROM marathons WHERE id = $1`, id), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByCreator returns marathons created by the given email, ordered by
// creation timestamp (ascending when ascending is true, else newest first).
func (r *Repository) ListByCreator(ctx context.Context, email string, ascending bool) ([]models.Marathon, error) {
	order := " ORDER BY created_at DESC"
	if ascending {
		order = " ORDER BY created_at ASC"
	}
	rows, err := r.pool.Query(ctx, `SELECT `+marathonColumns+` FROM marathons WHERE creator_email = $1`+order, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMarathons(rows)
}

// ListRecent returns the N most recently created marathons.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.Marathon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+marathonColumns+` FROM marathons ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMarathons(rows)
}

func collectMarathons(rows pgx.Rows) ([]models.Marathon, error) {
	var list []models.Marathon
	for rows.Next() {
		var m models.Marathon
		if err := scanMarathon(rows, &m); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update replaces the editable field set of a marathon and returns the
// updated record. The counter and creator identity are untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, u models.MarathonUpdate) (*models.Marathon, error) {
	const q = `UPDATE marathons SET title = $1, image = $2, location = $3, distance = $4, description = $5,
			registration_start = $6, registration_end = $7, marathon_start = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + marathonColumns
	var m models.Marathon
	err := scanMarathon(r.pool.QueryRow(ctx, q, u.Title, u.Image, u.Location, u.Distance, u.Description,
		u.RegistrationStart, u.RegistrationEnd, u.MarathonStart, id), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a marathon by ID. Registrations referencing it are left in
// place and the counter is not reconciled.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM marathons WHERE id = $1`, id)
	return err
}
