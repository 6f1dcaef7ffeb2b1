package postgres

import (
	"context"
	"fmt"

	"github.com/MrEthical07/authcore"
)

func (s *Store) RecordActivity(ctx context.Context, activity authcore.Activity) error {
	query := `
		INSERT INTO activity_log (table_name, operation, record_id, ip_origin, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		activity.Table, activity.Operation, activity.RecordID, activity.IP, activity.At)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
