package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	pg "quarters/internal/platform/postgres"
)

// PostgresRecorder appends events to the audit_events table. Inserts join an
// ambient transaction when one is carried by the context, so cascades audit
// atomically with the mutation they describe.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

func (r *PostgresRecorder) Record(ctx context.Context, event Event) error {
	_, err := pg.Exec(ctx, r.pool, `
INSERT INTO audit_events (occurred_at, action, actor, registrant_id, room_id, request_id, detail)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.OccurredAt, string(event.Action), event.Actor,
		event.RegistrantID, event.RoomID, event.RequestID, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}
