package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
)

// Postgres is the pgx-backed Gateway. The aggregate is read and written
// inside a single transaction so callers never observe a partially updated
// tenant.
type Postgres struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

// NewPostgres connects a pool and verifies it with a ping.
func NewPostgres(ctx context.Context, connString string, log *zap.Logger) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{db: pool, log: log}, nil
}

func (p *Postgres) Close() {
	p.db.Close()
}

// Load reads the tenant aggregate. The account row is validated and
// defaulted here, once, so the billing core downstream can assume a
// well-formed account.
func (p *Postgres) Load(ctx context.Context, tenantID uuid.UUID) (*domain.TenantAggregate, error) {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("%w: tx begin failed: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	account, err := p.loadAccount(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}

	ledger, err := p.loadLedger(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}

	requests, err := p.loadRequests(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: tx commit failed: %v", domain.ErrPersistence, err)
	}

	return &domain.TenantAggregate{Account: *account, Ledger: ledger, Requests: requests}, nil
}

func (p *Postgres) loadAccount(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) (*domain.TenantAccount, error) {
	var (
		a              domain.TenantAccount
		method         *string
		autopayEnabled bool
	)
	err := tx.QueryRow(ctx,
		`SELECT id, monthly_rent, due_day, lease_start, lease_end, autopay_enabled, autopay_method, created_at
		   FROM tenant_accounts WHERE id = $1`,
		tenantID,
	).Scan(&a.ID, &a.MonthlyRent, &a.DueDay, &a.LeaseStart, &a.LeaseEnd, &autopayEnabled, &method, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("%w: account query failed: %v", domain.ErrPersistence, err)
	}

	a.AutoPay.Enabled = autopayEnabled
	if method != nil {
		a.AutoPay.Method = domain.PaymentMethod(*method)
	}
	// Disabled auto-pay never carries a stale method out of the store.
	if !a.AutoPay.Enabled {
		a.AutoPay.Method = ""
	}

	if err := a.Validate(); err != nil {
		p.log.Error("rejecting malformed tenant row",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("due_day", a.DueDay))
		return nil, err
	}
	return &a, nil
}

func (p *Postgres) loadLedger(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) ([]domain.PaymentRecord, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, tenant_id, amount, method, reference, paid_at
		   FROM payment_records WHERE tenant_id = $1 ORDER BY paid_at DESC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger query failed: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var ledger []domain.PaymentRecord
	for rows.Next() {
		var rec domain.PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Amount, &rec.Method, &rec.Reference, &rec.PaidAt); err != nil {
			return nil, fmt.Errorf("%w: ledger scan failed: %v", domain.ErrPersistence, err)
		}
		ledger = append(ledger, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ledger rows failed: %v", domain.ErrPersistence, err)
	}
	return ledger, nil
}

func (p *Postgres) loadRequests(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) ([]domain.MaintenanceRequest, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, tenant_id, title, details, priority, status, created_at
		   FROM maintenance_requests WHERE tenant_id = $1 ORDER BY created_at DESC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: maintenance query failed: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var requests []domain.MaintenanceRequest
	for rows.Next() {
		var r domain.MaintenanceRequest
		if err := rows.Scan(&r.ID, &r.TenantID, &r.Title, &r.Details, &r.Priority, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: maintenance scan failed: %v", domain.ErrPersistence, err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: maintenance rows failed: %v", domain.ErrPersistence, err)
	}
	return requests, nil
}

// Save writes the aggregate in one transaction. The account row is updated
// in place; ledger records are insert-only (existing rows are left
// untouched, the ledger is append-only); maintenance requests upsert so
// status transitions land.
func (p *Postgres) Save(ctx context.Context, tenantID uuid.UUID, agg *domain.TenantAggregate) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("%w: tx begin failed: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	a := agg.Account
	var method *string
	if a.AutoPay.Method != "" {
		m := string(a.AutoPay.Method)
		method = &m
	}
	tag, err := tx.Exec(ctx,
		`UPDATE tenant_accounts
		    SET monthly_rent = $2, due_day = $3, lease_start = $4, lease_end = $5,
		        autopay_enabled = $6, autopay_method = $7
		  WHERE id = $1`,
		tenantID, a.MonthlyRent, a.DueDay, a.LeaseStart, a.LeaseEnd, a.AutoPay.Enabled, method)
	if err != nil {
		return fmt.Errorf("%w: account update failed: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}

	for _, rec := range agg.Ledger {
		_, err := tx.Exec(ctx,
			`INSERT INTO payment_records (id, tenant_id, amount, method, reference, paid_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO NOTHING`,
			rec.ID, tenantID, rec.Amount, rec.Method, rec.Reference, rec.PaidAt)
		if err != nil {
			return fmt.Errorf("%w: payment insert failed: %v", domain.ErrPersistence, err)
		}
	}

	for _, r := range agg.Requests {
		_, err := tx.Exec(ctx,
			`INSERT INTO maintenance_requests (id, tenant_id, title, details, priority, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`,
			r.ID, tenantID, r.Title, r.Details, r.Priority, r.Status, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: maintenance upsert failed: %v", domain.ErrPersistence, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: tx commit failed: %v", domain.ErrPersistence, err)
	}
	return nil
}

// CreateTenant inserts a fresh account row; used by onboarding and the
// seeder, not by the reconciliation core.
func (p *Postgres) CreateTenant(ctx context.Context, a domain.TenantAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	var method *string
	if a.AutoPay.Method != "" {
		m := string(a.AutoPay.Method)
		method = &m
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := p.db.Exec(ctx,
		`INSERT INTO tenant_accounts (id, monthly_rent, due_day, lease_start, lease_end, autopay_enabled, autopay_method, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.MonthlyRent, a.DueDay, a.LeaseStart, a.LeaseEnd, a.AutoPay.Enabled, method, createdAt)
	if err != nil {
		return fmt.Errorf("%w: tenant insert failed: %v", domain.ErrPersistence, err)
	}
	return nil
}
