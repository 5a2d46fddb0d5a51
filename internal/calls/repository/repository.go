package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/platform/apperr"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

const callLogColumns = `id, organization_id, external_call_id, location_id, direction, started_at,
	duration_seconds, provider_result, status, from_number, to_number, recording_id, recording_key,
	matched_customer_id, match_confidence, linked_job_id, synced_at`

func (r *PostgresRepository) Upsert(ctx context.Context, log CallLog) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO call_logs (
			organization_id, external_call_id, location_id, direction, started_at,
			duration_seconds, provider_result, status, from_number, to_number,
			recording_id, recording_key, matched_customer_id, match_confidence, linked_job_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (organization_id, external_call_id) DO UPDATE SET
			location_id = EXCLUDED.location_id,
			direction = EXCLUDED.direction,
			started_at = EXCLUDED.started_at,
			duration_seconds = EXCLUDED.duration_seconds,
			provider_result = EXCLUDED.provider_result,
			status = EXCLUDED.status,
			from_number = EXCLUDED.from_number,
			to_number = EXCLUDED.to_number,
			recording_id = EXCLUDED.recording_id,
			recording_key = COALESCE(EXCLUDED.recording_key, call_logs.recording_key),
			matched_customer_id = EXCLUDED.matched_customer_id,
			match_confidence = EXCLUDED.match_confidence,
			linked_job_id = EXCLUDED.linked_job_id,
			synced_at = now()
		RETURNING id
	`,
		log.OrganizationID, log.ExternalCallID, log.LocationID, log.Direction, log.StartedAt,
		log.DurationSeconds, log.ProviderResult, log.Status, log.FromNumber, log.ToNumber,
		log.RecordingID, log.RecordingKey, log.MatchedCustomerID, log.MatchConfidence, log.LinkedJobID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert call log: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, organizationID uuid.UUID) (*CallLog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+callLogColumns+`
		FROM call_logs
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)

	log, err := scanCallLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("call log not found")
		}
		return nil, fmt.Errorf("get call log: %w", err)
	}
	return log, nil
}

func (r *PostgresRepository) List(ctx context.Context, organizationID uuid.UUID, filters ListFilters) ([]CallLog, int, error) {
	conditions := []string{"organization_id = $1"}
	args := []any{organizationID}

	addArg := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filters.Direction != "" {
		addArg("direction = $%d", filters.Direction)
	}
	if filters.Status != "" {
		addArg("status = $%d", filters.Status)
	}
	if filters.CustomerID != nil {
		addArg("matched_customer_id = $%d", *filters.CustomerID)
	}
	if filters.From != nil {
		addArg("started_at >= $%d", *filters.From)
	}
	if filters.To != nil {
		addArg("started_at <= $%d", *filters.To)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM call_logs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count call logs: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filters.Offset)
	query := fmt.Sprintf(`
		SELECT `+callLogColumns+`
		FROM call_logs
		WHERE %s
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list call logs: %w", err)
	}
	defer rows.Close()

	logs := make([]CallLog, 0)
	for rows.Next() {
		log, err := scanCallLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan call log: %w", err)
		}
		logs = append(logs, *log)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return logs, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCallLog(row rowScanner) (*CallLog, error) {
	var log CallLog
	err := row.Scan(
		&log.ID, &log.OrganizationID, &log.ExternalCallID, &log.LocationID, &log.Direction, &log.StartedAt,
		&log.DurationSeconds, &log.ProviderResult, &log.Status, &log.FromNumber, &log.ToNumber,
		&log.RecordingID, &log.RecordingKey, &log.MatchedCustomerID, &log.MatchConfidence, &log.LinkedJobID,
		&log.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &log, nil
}
