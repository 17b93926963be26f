package audit

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder writes audit rows for user-initiated mutations. It is best
// effort: a failed write is logged, never propagated, so auditing can't
// break the request that triggered it.
type Recorder struct {
	Pool *pgxpool.Pool
}

func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{Pool: pool}
}

func (r *Recorder) Record(ctx context.Context, userID, action, entityID string) {
	if r == nil || r.Pool == nil {
		return
	}
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO audit_logs (user_id, action, entity_id)
		VALUES ($1::uuid, $2, $3::uuid)`,
		userID, action, entityID,
	)
	if err != nil {
		log.Printf("audit: %s %s: %v", action, entityID, err)
	}
}
