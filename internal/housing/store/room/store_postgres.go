package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quarters/internal/housing/models"
	pg "quarters/internal/platform/postgres"
)

// PostgresStore is a read-only view over the rooms table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Room, error) {
	var r models.Room
	err := pg.QueryRow(ctx, s.pool, `
SELECT id, name, gender, capacity, min_age, max_age
FROM rooms WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.Gender, &r.Capacity, &r.MinAge, &r.MaxAge)
	if err != nil {
		if pg.IsInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return models.Room{}, models.ErrRoomNotFound
		}
		return models.Room{}, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, gender models.Gender) ([]models.Room, error) {
	query := `SELECT id, name, gender, capacity, min_age, max_age FROM rooms`
	args := []any{}
	if gender != "" {
		query += ` WHERE gender = $1`
		args = append(args, string(gender))
	}
	query += ` ORDER BY id`

	rows, err := pg.Query(ctx, s.pool, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Gender, &r.Capacity, &r.MinAge, &r.MaxAge); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
