package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudclutches/storefront/internal/postgres"
)

type HistoryEntry struct {
	Status    Status    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	EventID   string    `json:"eventId"`
}

// HistoryRepo is the status audit trail fed by the notifier.
type HistoryRepo struct{ DB postgres.DB }

// Append records one status change; false means the event was already recorded.
func (r *HistoryRepo) Append(ctx context.Context, orderID int64, s Status, at time.Time, eventID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO order_status_history(order_id, status, changed_at, event_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`,
		orderID, string(s), at, eventID,
	)
	if err != nil {
		return false, fmt.Errorf("append history for order %d: %w", orderID, err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *HistoryRepo) ForOrder(ctx context.Context, orderID int64) ([]HistoryEntry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT status, changed_at, event_id FROM order_status_history
		WHERE order_id=$1 ORDER BY changed_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("history for order %d: %w", orderID, err)
	}
	defer rows.Close()

	out := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.Status, &h.ChangedAt, &h.EventID); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
