package registrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quarters/internal/housing/models"
	pg "quarters/internal/platform/postgres"
)

// PostgresStore reads the registrants table owned by the registration
// subsystem. The only write path is the verification flip.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const registrantColumns = `id, name, gender, birth_date, verified, registered_at, unverified_at, unverified_by`

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Registrant, error) {
	row := pg.QueryRow(ctx, s.pool,
		`SELECT `+registrantColumns+` FROM registrants WHERE id = $1`, id)
	r, err := scanRegistrant(row)
	if err != nil {
		if pg.IsInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return models.Registrant{}, models.ErrRegistrantNotFound
		}
		return models.Registrant{}, fmt.Errorf("get registrant: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, gender models.Gender, verifiedOnly bool) ([]models.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants WHERE 1=1`
	args := []any{}
	if gender != "" {
		args = append(args, string(gender))
		query += fmt.Sprintf(" AND gender = $%d", len(args))
	}
	if verifiedOnly {
		query += " AND verified"
	}
	query += " ORDER BY registered_at, id"

	rows, err := pg.Query(ctx, s.pool, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var out []models.Registrant
	for rows.Next() {
		r, err := scanRegistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetVerified(ctx context.Context, id string, verified bool, at time.Time, by string) error {
	var tag = `UPDATE registrants
SET verified = $2, unverified_at = $3, unverified_by = $4
WHERE id = $1`
	var unverifiedAt any
	unverifiedBy := ""
	if !verified {
		unverifiedAt = at
		unverifiedBy = by
	}
	res, err := pg.Exec(ctx, s.pool, tag, id, verified, unverifiedAt, unverifiedBy)
	if err != nil {
		if pg.IsInvalidUUID(err) {
			return models.ErrRegistrantNotFound
		}
		return fmt.Errorf("set verified: %w", err)
	}
	if res.RowsAffected() == 0 {
		return models.ErrRegistrantNotFound
	}
	return nil
}

func scanRegistrant(row pgx.Row) (models.Registrant, error) {
	var r models.Registrant
	err := row.Scan(&r.ID, &r.Name, &r.Gender, &r.BirthDate, &r.Verified,
		&r.RegisteredAt, &r.UnverifiedAt, &r.UnverifiedBy)
	return r, err
}
