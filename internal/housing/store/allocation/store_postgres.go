package allocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quarters/internal/housing/models"
	pg "quarters/internal/platform/postgres"
)

// PostgresStore is the SQL-backed allocation ledger. Commit locks the room
// row so the capacity re-check and the insert form one atomic unit.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pg.WithTx(ctx, s.pool, fn)
}

func (s *PostgresStore) Commit(ctx context.Context, alloc models.Allocation) error {
	return pg.WithTx(ctx, s.pool, func(ctx context.Context) error {
		var capacity int
		err := pg.QueryRow(ctx, s.pool,
			`SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`,
			alloc.RoomID,
		).Scan(&capacity)
		if err != nil {
			if pg.IsInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
				return models.ErrRoomNotFound
			}
			return fmt.Errorf("lock room: %w", err)
		}

		var exists bool
		err = pg.QueryRow(ctx, s.pool,
			`SELECT EXISTS (SELECT 1 FROM allocations WHERE registrant_id = $1)`,
			alloc.RegistrantID,
		).Scan(&exists)
		if err != nil {
			if pg.IsInvalidUUID(err) {
				return models.ErrRegistrantNotFound
			}
			return fmt.Errorf("check existing allocation: %w", err)
		}
		if exists {
			return models.ErrAlreadyAllocated
		}

		var occupancy int
		err = pg.QueryRow(ctx, s.pool,
			`SELECT COUNT(*) FROM allocations WHERE room_id = $1`,
			alloc.RoomID,
		).Scan(&occupancy)
		if err != nil {
			return fmt.Errorf("count occupancy: %w", err)
		}
		if occupancy >= capacity {
			return models.ErrRoomFull
		}

		_, err = pg.Exec(ctx, s.pool, `
INSERT INTO allocations (registrant_id, room_id, allocated_at, allocated_by)
VALUES ($1, $2, $3, $4)`,
			alloc.RegistrantID, alloc.RoomID, alloc.AllocatedAt, alloc.AllocatedBy,
		)
		if err != nil {
			// The registrant uniqueness check rides on the primary key:
			// whoever loses the race sees 23505 here.
			if pg.IsUniqueViolation(err) {
				return models.ErrConcurrentUpdate
			}
			if pg.IsInvalidUUID(err) {
				return models.ErrRegistrantNotFound
			}
			return fmt.Errorf("insert allocation: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Remove(ctx context.Context, registrantID string) (bool, error) {
	tag, err := pg.Exec(ctx, s.pool,
		`DELETE FROM allocations WHERE registrant_id = $1`,
		registrantID,
	)
	if err != nil {
		if pg.IsInvalidUUID(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete allocation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Get(ctx context.Context, registrantID string) (*models.Allocation, error) {
	var a models.Allocation
	err := pg.QueryRow(ctx, s.pool, `
SELECT registrant_id, room_id, allocated_at, allocated_by
FROM allocations WHERE registrant_id = $1`,
		registrantID,
	).Scan(&a.RegistrantID, &a.RoomID, &a.AllocatedAt, &a.AllocatedBy)
	if err != nil {
		if pg.IsInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Allocation, error) {
	return s.scanAll(ctx, `
SELECT registrant_id, room_id, allocated_at, allocated_by
FROM allocations ORDER BY registrant_id`)
}

func (s *PostgresStore) ListByRoom(ctx context.Context, roomID string) ([]models.Allocation, error) {
	return s.scanAll(ctx, `
SELECT registrant_id, room_id, allocated_at, allocated_by
FROM allocations WHERE room_id = $1 ORDER BY registrant_id`, roomID)
}

func (s *PostgresStore) OccupancyByRoom(ctx context.Context) (map[string]int, error) {
	rows, err := pg.Query(ctx, s.pool,
		`SELECT room_id, COUNT(*) FROM allocations GROUP BY room_id`)
	if err != nil {
		return nil, fmt.Errorf("occupancy query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var roomID string
		var count int
		if err := rows.Scan(&roomID, &count); err != nil {
			return nil, fmt.Errorf("scan occupancy: %w", err)
		}
		out[roomID] = count
	}
	return out, rows.Err()
}

func (s *PostgresStore) scanAll(ctx context.Context, sql string, args ...any) ([]models.Allocation, error) {
	rows, err := pg.Query(ctx, s.pool, sql, args...)
	if err != nil {
		if pg.IsInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var out []models.Allocation
	for rows.Next() {
		var a models.Allocation
		if err := rows.Scan(&a.RegistrantID, &a.RoomID, &a.AllocatedAt, &a.AllocatedBy); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
