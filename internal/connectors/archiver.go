package connectors

import (
	"context"
	"database/sql"
	"fmt"

	"wa-assist/internal/config"
	"wa-assist/internal/features/action"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresArchiver mirrors delivery logs into an external warehouse table so
// longer-horizon reporting survives the Mongo retention purge.
type PostgresArchiver struct {
	db *sql.DB
}

const createArchiveTable = `
CREATE TABLE IF NOT EXISTS delivery_archive (
	id            BIGSERIAL PRIMARY KEY,
	tenant_id     TEXT NOT NULL,
	action_id     TEXT NOT NULL,
	action_name   TEXT NOT NULL,
	action_type   TEXT NOT NULL,
	event         TEXT NOT NULL,
	target        TEXT NOT NULL,
	delivery_id   TEXT NOT NULL,
	success       BOOLEAN NOT NULL,
	status_code   INTEGER,
	message       TEXT,
	duration_ms   BIGINT,
	created_at    TIMESTAMPTZ NOT NULL
)`

// NewArchiver returns the warehouse-backed archiver when ARCHIVE_DSN is
// configured and a no-op otherwise, so dispatch bookkeeping never has to
// care.
func NewArchiver(cfg *config.Config, logger *zap.Logger) (action.DeliveryArchiver, error) {
	if cfg.ArchiveDSN == "" {
		return &noopArchiver{}, nil
	}

	db, err := sql.Open("postgres", cfg.ArchiveDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(createArchiveTable); err != nil {
		return nil, fmt.Errorf("failed to ensure archive table: %w", err)
	}

	logger.Info("delivery archival enabled")
	return &PostgresArchiver{db: db}, nil
}

func (a *PostgresArchiver) Archive(ctx context.Context, log action.DeliveryLog) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO delivery_archive
			(tenant_id, action_id, action_name, action_type, event, target,
			 delivery_id, success, status_code, message, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		log.TenantID.Hex(),
		log.ActionID.Hex(),
		log.ActionName,
		string(log.ActionType),
		string(log.Event),
		log.Target,
		log.DeliveryID,
		log.Success,
		log.StatusCode,
		log.Message,
		log.Duration,
		log.CreatedAt,
	)
	return err
}

type noopArchiver struct{}

func (*noopArchiver) Archive(context.Context, action.DeliveryLog) error { return nil }
