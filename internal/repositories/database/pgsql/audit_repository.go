package pgsql

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	"github.com/stoktakip/erp_backend/internal/models"
	"github.com/stoktakip/erp_backend/internal/utils/mapping"
	"github.com/stoktakip/erp_backend/internal/utils/pagination"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for audit log rows.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

const auditLogColumns = `
	log_id, user_id, action, entity, entity_id, description, created_at
`

const insertAuditLogSQL = `
	INSERT INTO audit_logs (` + auditLogColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

func scanAuditLog(row pgx.Row) (models.AuditLog, error) {
	var m models.AuditLog
	err := row.Scan(
		&m.LogID,
		&m.UserID,
		&m.Action,
		&m.Entity,
		&m.EntityID,
		&m.Description,
		&m.CreatedAt,
	)
	return m, err
}

// SaveAuditLog persists a new audit log row.
func (r *PgxAuditRepository) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	m := mapping.ToModelAuditLog(log)
	_, err := r.Pool.Exec(ctx, insertAuditLogSQL,
		m.LogID, m.UserID, m.Action, m.Entity, m.EntityID, m.Description, m.CreatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit log "+m.LogID, err)
	}
	return nil
}

// SaveAuditLogInTx persists a new audit log row within a transaction.
func (r *PgxAuditRepository) SaveAuditLogInTx(ctx context.Context, tx pgx.Tx, log domain.AuditLog) error {
	m := mapping.ToModelAuditLog(log)
	_, err := tx.Exec(ctx, insertAuditLogSQL,
		m.LogID, m.UserID, m.Action, m.Entity, m.EntityID, m.Description, m.CreatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit log "+m.LogID, err)
	}
	return nil
}

// ListAuditLogs retrieves a paginated list of audit log rows, newest first.
func (r *PgxAuditRepository) ListAuditLogs(ctx context.Context, limit int, nextToken *string, entity string, userID string) ([]domain.AuditLog, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + auditLogColumns + ` FROM audit_logs WHERE 1=1`
	args := []interface{}{}

	if entity != "" {
		args = append(args, entity)
		baseQuery += ` AND entity = $` + strconv.Itoa(len(args))
	}
	if userID != "" {
		args = append(args, userID)
		baseQuery += ` AND user_id = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastCreatedAt, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		args = append(args, lastCreatedAt, fields[1])
		baseQuery += ` AND (created_at, log_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY created_at DESC, log_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query audit logs", err)
	}
	defer rows.Close()

	modelLogs := make([]models.AuditLog, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanAuditLog(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan audit log row", scanErr)
		}
		modelLogs = append(modelLogs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating audit log rows", err)
	}

	var nextTokenVal *string
	results := modelLogs
	if len(modelLogs) > limit {
		last := modelLogs[limit-1]
		newToken := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.LogID)
		nextTokenVal = &newToken
		results = modelLogs[:limit]
	}

	domainLogs := make([]domain.AuditLog, len(results))
	for i, m := range results {
		domainLogs[i] = mapping.ToDomainAuditLog(m)
	}
	return domainLogs, nextTokenVal, nil
}
