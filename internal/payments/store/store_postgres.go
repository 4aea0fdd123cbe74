package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tably/internal/payments/models"
	"tably/internal/platform/postgres"
	id "tably/pkg/domain"
)

// PostgresStore persists payment intents, the payment event log and the
// per-tenant provider configuration.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIntent inserts a new payment intent.
func (s *PostgresStore) CreateIntent(ctx context.Context, intent *models.Intent) error {
	const q = `
INSERT INTO payment_intents
  (id, tenant_id, cart_id, order_id, provider, amount, currency, status, client_secret, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NOW(), NOW())
RETURNING created_at, updated_at
`
	err := s.db.QueryRowContext(ctx, q,
		intent.ID, intent.TenantID, intent.CartID, intent.OrderID,
		intent.Provider, intent.Amount, intent.Currency, intent.Status, intent.ClientSecret).
		Scan(&intent.CreatedAt, &intent.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment intent: %w", postgres.Classify(err))
	}
	return nil
}

const intentColumns = `
id, tenant_id, cart_id, order_id, provider, amount, currency, status,
COALESCE(client_secret, ''), created_at, updated_at`

// GetIntent loads a tenant's intent. Cross-tenant ids read as not found.
func (s *PostgresStore) GetIntent(ctx context.Context, tenantID id.TenantID, intentID id.IntentID) (*models.Intent, error) {
	q := `SELECT` + intentColumns + `
FROM payment_intents
WHERE id = $1 AND tenant_id = $2
`
	intent, err := scanIntent(s.db.QueryRowContext(ctx, q, intentID, tenantID))
	if err != nil {
		return nil, fmt.Errorf("find payment intent: %w", postgres.Classify(err))
	}
	return intent, nil
}

// UpdateIntentStatus sets the intent status unconditionally. Zero affected
// rows is not an error: checkout cancellation is deliberately unguarded.
func (s *PostgresStore) UpdateIntentStatus(ctx context.Context, tenantID id.TenantID, intentID id.IntentID, status models.IntentStatus) error {
	const q = `
UPDATE payment_intents
SET status = $3, updated_at = NOW()
WHERE id = $1 AND tenant_id = $2
`
	if _, err := s.db.ExecContext(ctx, q, intentID, tenantID, status); err != nil {
		return fmt.Errorf("update intent status: %w", postgres.Classify(err))
	}
	return nil
}

// AppendEvent writes the inferred status to the intent and appends the
// payment event in one transaction. A missing payment_events table
// surfaces as sentinel.ErrMissingTable; nothing is persisted in that case.
func (s *PostgresStore) AppendEvent(ctx context.Context, ev *models.PaymentEvent, newStatus models.IntentStatus, statusChanged bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append payment event: %w", postgres.Classify(err))
	}
	defer tx.Rollback()

	if statusChanged {
		const updateSQL = `
UPDATE payment_intents
SET status = $3, updated_at = NOW()
WHERE id = $1 AND tenant_id = $2
`
		if _, err := tx.ExecContext(ctx, updateSQL, ev.IntentID, ev.TenantID, newStatus); err != nil {
			return fmt.Errorf("update intent status: %w", postgres.Classify(err))
		}
	}

	const eventSQL = `
INSERT INTO payment_events (id, tenant_id, payment_intent_id, provider, event_type, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING created_at
`
	err = tx.QueryRowContext(ctx, eventSQL,
		ev.ID, ev.TenantID, ev.IntentID, ev.Provider, ev.EventType, nullJSON(ev.Payload)).
		Scan(&ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment event: %w", postgres.Classify(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append payment event: %w", postgres.Classify(err))
	}
	return nil
}

// DefaultConfig returns the tenant's default provider configuration.
func (s *PostgresStore) DefaultConfig(ctx context.Context, tenantID id.TenantID) (*models.ProviderConfig, error) {
	const q = `
SELECT provider, live_mode, currency, enabled_methods,
       COALESCE(publishable_key, ''), COALESCE(secret_key, '')
FROM payment_providers
WHERE tenant_id = $1 AND is_default = true
`
	var cfg models.ProviderConfig
	err := s.db.QueryRowContext(ctx, q, tenantID).Scan(
		&cfg.Provider, &cfg.LiveMode, &cfg.Currency, pq.Array(&cfg.EnabledMethods),
		&cfg.PublishableKey, &cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("find provider config: %w", postgres.Classify(err))
	}
	return &cfg, nil
}

// UpsertConfig writes the tenant's default provider row, creating it if
// absent.
func (s *PostgresStore) UpsertConfig(ctx context.Context, tenantID id.TenantID, cfg *models.ProviderConfig) error {
	const q = `
INSERT INTO payment_providers
  (id, tenant_id, provider, live_mode, currency, enabled_methods, publishable_key, secret_key, is_default, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), true, NOW(), NOW())
ON CONFLICT (tenant_id, provider) DO UPDATE SET
  live_mode = EXCLUDED.live_mode,
  currency = EXCLUDED.currency,
  enabled_methods = EXCLUDED.enabled_methods,
  publishable_key = EXCLUDED.publishable_key,
  secret_key = COALESCE(EXCLUDED.secret_key, payment_providers.secret_key),
  is_default = true,
  updated_at = NOW()
`
	_, err := s.db.ExecContext(ctx, q,
		uuid.New(), tenantID, cfg.Provider, cfg.LiveMode, cfg.Currency,
		pq.Array(cfg.EnabledMethods), cfg.PublishableKey, cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("upsert provider config: %w", postgres.Classify(err))
	}
	return nil
}

const providerColumns = `
id, tenant_id, provider, live_mode, currency, enabled_methods,
COALESCE(publishable_key, ''), COALESCE(secret_key, ''), is_default, created_at, updated_at`

// ListProviders returns all provider rows for a tenant.
func (s *PostgresStore) ListProviders(ctx context.Context, tenantID id.TenantID) ([]models.ProviderRecord, error) {
	q := `SELECT` + providerColumns + `
FROM payment_providers
WHERE tenant_id = $1
ORDER BY created_at ASC
`
	rows, err := s.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", postgres.Classify(err))
	}
	defer rows.Close()

	records := []models.ProviderRecord{}
	for rows.Next() {
		rec, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", postgres.Classify(err))
	}
	return records, nil
}

// CreateProvider inserts a provider row. If it is flagged default, all
// other defaults for the tenant are unset in the same transaction.
func (s *PostgresStore) CreateProvider(ctx context.Context, rec *models.ProviderRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create provider: %w", postgres.Classify(err))
	}
	defer tx.Rollback()

	if rec.IsDefault {
		if err := unsetDefaults(ctx, tx, rec.TenantID); err != nil {
			return err
		}
	}
	const q = `
INSERT INTO payment_providers
  (id, tenant_id, provider, live_mode, currency, enabled_methods, publishable_key, secret_key, is_default, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, NOW(), NOW())
RETURNING created_at, updated_at
`
	err = tx.QueryRowContext(ctx, q,
		rec.ID, rec.TenantID, rec.Provider, rec.LiveMode, rec.Currency,
		pq.Array(rec.EnabledMethods), rec.PublishableKey, rec.SecretKey, rec.IsDefault).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert provider: %w", postgres.Classify(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create provider: %w", postgres.Classify(err))
	}
	return nil
}

// PatchProvider applies a partial update and returns the updated row.
func (s *PostgresStore) PatchProvider(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID, patch models.ProviderPatch) (*models.ProviderRecord, error) {
	q := `
UPDATE payment_providers SET
  live_mode = COALESCE($3, live_mode),
  currency = COALESCE($4, currency),
  enabled_methods = COALESCE($5, enabled_methods),
  publishable_key = COALESCE($6, publishable_key),
  secret_key = COALESCE($7, secret_key),
  updated_at = NOW()
WHERE id = $1 AND tenant_id = $2
RETURNING` + providerColumns + `
`
	var methods any
	if patch.EnabledMethods != nil {
		methods = pq.Array(*patch.EnabledMethods)
	}
	rec, err := scanProvider(s.db.QueryRowContext(ctx, q,
		providerID, tenantID, patch.LiveMode, patch.Currency, methods,
		patch.PublishableKey, patch.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("patch provider: %w", postgres.Classify(err))
	}
	return rec, nil
}

// MakeDefault marks one provider row as the tenant default, unsetting all
// others first in the same transaction so at most one default survives.
func (s *PostgresStore) MakeDefault(ctx context.Context, tenantID id.TenantID, providerID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin make default: %w", postgres.Classify(err))
	}
	defer tx.Rollback()

	if err := unsetDefaults(ctx, tx, tenantID); err != nil {
		return err
	}
	const q = `
UPDATE payment_providers
SET is_default = true, updated_at = NOW()
WHERE id = $1 AND tenant_id = $2
`
	res, err := tx.ExecContext(ctx, q, providerID, tenantID)
	if err != nil {
		return fmt.Errorf("set default provider: %w", postgres.Classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set default provider: %w", postgres.Classify(sql.ErrNoRows))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit make default: %w", postgres.Classify(err))
	}
	return nil
}

func unsetDefaults(ctx context.Context, tx *sql.Tx, tenantID id.TenantID) error {
	const q = `
UPDATE payment_providers
SET is_default = false, updated_at = NOW()
WHERE tenant_id = $1 AND is_default = true
`
	if _, err := tx.ExecContext(ctx, q, tenantID); err != nil {
		return fmt.Errorf("unset default providers: %w", postgres.Classify(err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntent(row rowScanner) (*models.Intent, error) {
	var intent models.Intent
	err := row.Scan(
		&intent.ID, &intent.TenantID, &intent.CartID, &intent.OrderID,
		&intent.Provider, &intent.Amount, &intent.Currency, &intent.Status,
		&intent.ClientSecret, &intent.CreatedAt, &intent.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func scanProvider(row rowScanner) (*models.ProviderRecord, error) {
	var rec models.ProviderRecord
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.Provider, &rec.LiveMode, &rec.Currency,
		pq.Array(&rec.EnabledMethods), &rec.PublishableKey, &rec.SecretKey,
		&rec.IsDefault, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan provider: %w", err)
	}
	return &rec, nil
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
